package usecase

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/avalon-backend/internal/entity"
)

// GameUseCase is the narrow surface the transport talks to. Every
// command returns the resulting game so the caller can broadcast the new
// snapshot; rule violations come back as apperror values.
type GameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, playerID, name string) (*entity.Player, error)

	CreateGame(ctx context.Context, playerID string, config entity.GameConfig) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	StartGame(ctx context.Context, playerID string) (*entity.Game, error)

	AcknowledgeRole(ctx context.Context, playerID string) (*entity.Game, error)
	ProposeTeam(ctx context.Context, playerID string, team []string) (*entity.Game, error)
	CastTeamVote(ctx context.Context, playerID string, approve bool) (*entity.Game, error)
	CastMissionVote(ctx context.Context, playerID string, success bool) (*entity.Game, error)
	ExamineLoyalty(ctx context.Context, playerID, targetID string) (entity.Alignment, *entity.Game, error)
	Assassinate(ctx context.Context, playerID, targetID string) (*entity.Game, error)
	Continue(ctx context.Context, playerID string) (*entity.Game, error)

	GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error)
}

type playerService interface {
	CreatePlayer(ctx context.Context, name string) (*entity.Player, error)
	GetPlayerByID(ctx context.Context, id string) (*entity.Player, error)
}

type gamePlayService interface {
	CreateGame(ctx context.Context, playerID string, config entity.GameConfig) (*entity.Game, error)
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	StartGame(ctx context.Context, playerID string) (*entity.Game, error)

	AcknowledgeRole(ctx context.Context, playerID string) (*entity.Game, error)
	ProposeTeam(ctx context.Context, playerID string, team []string) (*entity.Game, error)
	CastTeamVote(ctx context.Context, playerID string, approve bool) (*entity.Game, error)
	CastMissionVote(ctx context.Context, playerID string, success bool) (*entity.Game, error)
	ExamineLoyalty(ctx context.Context, playerID, targetID string) (entity.Alignment, *entity.Game, error)
	Assassinate(ctx context.Context, playerID, targetID string) (*entity.Game, error)
	Continue(ctx context.Context, playerID string) (*entity.Game, error)

	GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error)
}

type gameUseCase struct {
	playerService   playerService
	gamePlayService gamePlayService
}

func NewGameUseCase(playerService playerService, gamePlayService gamePlayService) GameUseCase {
	return &gameUseCase{
		playerService:   playerService,
		gamePlayService: gamePlayService,
	}
}

func (that *gameUseCase) GetOrCreatePlayer(ctx context.Context, playerID, name string) (*entity.Player, error) {
	if playerID == "" {
		player, err := that.playerService.CreatePlayer(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("could not create player: %w", err)
		}

		return player, nil
	}

	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

func (that *gameUseCase) CreateGame(ctx context.Context, playerID string, config entity.GameConfig) (*entity.Game, error) {
	game, err := that.gamePlayService.CreateGame(ctx, playerID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	game, err := that.gamePlayService.JoinGameByID(ctx, gameID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to join game: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) StartGame(ctx context.Context, playerID string) (*entity.Game, error) {
	return that.gamePlayService.StartGame(ctx, playerID)
}

func (that *gameUseCase) AcknowledgeRole(ctx context.Context, playerID string) (*entity.Game, error) {
	return that.gamePlayService.AcknowledgeRole(ctx, playerID)
}

func (that *gameUseCase) ProposeTeam(ctx context.Context, playerID string, team []string) (*entity.Game, error) {
	return that.gamePlayService.ProposeTeam(ctx, playerID, team)
}

func (that *gameUseCase) CastTeamVote(ctx context.Context, playerID string, approve bool) (*entity.Game, error) {
	return that.gamePlayService.CastTeamVote(ctx, playerID, approve)
}

func (that *gameUseCase) CastMissionVote(ctx context.Context, playerID string, success bool) (*entity.Game, error) {
	return that.gamePlayService.CastMissionVote(ctx, playerID, success)
}

func (that *gameUseCase) ExamineLoyalty(ctx context.Context, playerID, targetID string) (entity.Alignment, *entity.Game, error) {
	return that.gamePlayService.ExamineLoyalty(ctx, playerID, targetID)
}

func (that *gameUseCase) Assassinate(ctx context.Context, playerID, targetID string) (*entity.Game, error) {
	return that.gamePlayService.Assassinate(ctx, playerID, targetID)
}

func (that *gameUseCase) Continue(ctx context.Context, playerID string) (*entity.Game, error) {
	return that.gamePlayService.Continue(ctx, playerID)
}

func (that *gameUseCase) GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error) {
	return that.gamePlayService.GetGameByPlayerID(ctx, playerID)
}
