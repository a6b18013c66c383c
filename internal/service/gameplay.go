package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/avalon-backend/internal/apperror"
	"github.com/rocketscienceinc/avalon-backend/internal/avalon"
	"github.com/rocketscienceinc/avalon-backend/internal/entity"
	"github.com/rocketscienceinc/avalon-backend/internal/pkg"
)

const maxBotActions = 256

type GamePlayService interface {
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

type archiveRepo interface {
	Save(ctx context.Context, game *entity.Game) error
}

type gamePlayService struct {
	logger *slog.Logger

	playerService PlayerService
	gameService   GameService
	botService    BotService
	archiveRepo   archiveRepo

	// one mutex per loaded game serializes command application
	locks sync.Map
}

func NewGamePlayService(logger *slog.Logger, playerService PlayerService, gameService GameService, botService BotService, archiveRepo archiveRepo) GamePlayService {
	return &gamePlayService{
		logger:        logger,
		playerService: playerService,
		gameService:   gameService,
		botService:    botService,
		archiveRepo:   archiveRepo,
	}
}

func (that *gamePlayService) CreateGame(ctx context.Context, playerID string, config entity.GameConfig) (*entity.Game, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID != "" {
		game, err := that.gameService.GetGameByID(ctx, player.GameID)
		if err != nil {
			return nil, fmt.Errorf("failed to get game: %w", err)
		}

		return game, nil
	}

	game, err := that.gameService.CreateGame(ctx, player, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err = that.playerService.UpdatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	return game, nil
}

func (that *gamePlayService) JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	unlock := that.lockGame(gameID)
	defer unlock()

	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == game.ID {
		return game, nil
	}

	if !game.IsLobby() {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameFull, gameID)
	}

	if game.IsFull() {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameFull, gameID)
	}

	player.GameID = game.ID
	if err = that.playerService.UpdatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	game.Players = append(game.Players, player)

	// a full roster starts the game without a separate host action
	if game.IsFull() {
		if err = that.startLockedGame(ctx, game); err != nil {
			return nil, err
		}
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

// StartGame lets the host start early; the remaining seats are filled
// with automated stand-ins.
func (that *gamePlayService) StartGame(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	unlock := that.lockGame(player.GameID)
	defer unlock()

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if !game.IsLobby() {
		return game, fmt.Errorf("%w: %s", apperror.ErrWrongPhase, game.Phase)
	}

	if len(game.Players) == 0 || game.Players[0].ID != playerID {
		return game, fmt.Errorf("%w: only the host starts the game", apperror.ErrNotAuthorized)
	}

	for seat := len(game.Players); seat < game.Config.PlayerCount; seat++ {
		bot := entity.NewBotPlayer(pkg.GenerateNewSessionID(), game.ID, fmt.Sprintf("Servant #%d", seat+1))
		game.Players = append(game.Players, bot)
	}

	if err = that.startLockedGame(ctx, game); err != nil {
		return game, err
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

// startLockedGame runs role assignment and the first round of bot
// acknowledgements; the caller holds the game lock and persists.
func (that *gamePlayService) startLockedGame(ctx context.Context, game *entity.Game) error {
	if err := avalon.Start(game); err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}

	if err := that.driveBots(ctx, game); err != nil {
		return err
	}

	return nil
}

func (that *gamePlayService) AcknowledgeRole(ctx context.Context, playerID string) (*entity.Game, error) {
	return that.apply(ctx, playerID, func(game *entity.Game) error {
		return avalon.AcknowledgeRole(game, playerID)
	})
}

func (that *gamePlayService) ProposeTeam(ctx context.Context, playerID string, team []string) (*entity.Game, error) {
	return that.apply(ctx, playerID, func(game *entity.Game) error {
		return avalon.ProposeTeam(game, playerID, team)
	})
}

func (that *gamePlayService) CastTeamVote(ctx context.Context, playerID string, approve bool) (*entity.Game, error) {
	return that.apply(ctx, playerID, func(game *entity.Game) error {
		return avalon.CastTeamVote(game, playerID, approve)
	})
}

func (that *gamePlayService) CastMissionVote(ctx context.Context, playerID string, success bool) (*entity.Game, error) {
	return that.apply(ctx, playerID, func(game *entity.Game) error {
		return avalon.CastMissionVote(game, playerID, success)
	})
}

func (that *gamePlayService) ExamineLoyalty(ctx context.Context, playerID, targetID string) (entity.Alignment, *entity.Game, error) {
	var alignment entity.Alignment

	game, err := that.apply(ctx, playerID, func(game *entity.Game) error {
		revealed, err := avalon.ExamineLoyalty(game, playerID, targetID)
		if err != nil {
			return err
		}

		alignment = revealed

		return nil
	})
	if err != nil {
		return "", game, err
	}

	return alignment, game, nil
}

func (that *gamePlayService) Assassinate(ctx context.Context, playerID, targetID string) (*entity.Game, error) {
	return that.apply(ctx, playerID, func(game *entity.Game) error {
		_, err := avalon.Assassinate(game, playerID, targetID)
		return err
	})
}

func (that *gamePlayService) Continue(ctx context.Context, playerID string) (*entity.Game, error) {
	return that.apply(ctx, playerID, func(game *entity.Game) error {
		return avalon.Continue(game, playerID)
	})
}

func (that *gamePlayService) GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == "" {
		return nil, apperror.ErrGameNotStarted
	}

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// apply loads the acting player's game, runs one command against it and
// persists the result. A rejected command never reaches storage, so the
// stored state stays exactly as it was before the call.
func (that *gamePlayService) apply(ctx context.Context, playerID string, command func(*entity.Game) error) (*entity.Game, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == "" {
		return nil, apperror.ErrGameNotStarted
	}

	unlock := that.lockGame(player.GameID)
	defer unlock()

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if err = command(game); err != nil {
		return game, err
	}

	if err = that.driveBots(ctx, game); err != nil {
		return nil, err
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if game.IsFinished() {
		that.finalizeGame(ctx, game)
	}

	return game, nil
}

// driveBots lets every automated stand-in with a pending action act, one
// action at a time, until the game waits on a human again.
func (that *gamePlayService) driveBots(ctx context.Context, game *entity.Game) error {
	for i := 0; i < maxBotActions; i++ {
		acted, err := that.botService.Act(game)
		if err != nil {
			return fmt.Errorf("bot action failed: %w", err)
		}

		if !acted {
			return nil
		}
	}

	return fmt.Errorf("bot action limit reached for game %s", game.ID)
}

// finalizeGame archives the summary row and releases the live state; the
// final snapshot has already been handed to the caller.
func (that *gamePlayService) finalizeGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "finalizeGame", "gameID", game.ID)

	if err := that.archiveRepo.Save(ctx, game); err != nil {
		log.Error("failed to archive game", "error", err)
	}

	if err := that.gameService.DeleteGame(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "error", err)
	}

	for _, player := range game.Players {
		if player.IsBot {
			continue
		}

		player.GameID = ""
		if err := that.playerService.UpdatePlayer(ctx, player); err != nil {
			log.Error("failed to update player", "player", player.ID, "error", err)
		}
	}

	log.Info("game archived", "winner", game.Outcome.Winner, "reason", game.Outcome.Reason)
}

func (that *gamePlayService) lockGame(gameID string) func() {
	lock, _ := that.locks.LoadOrStore(gameID, &sync.Mutex{})
	mutex, _ := lock.(*sync.Mutex)
	mutex.Lock()

	return mutex.Unlock
}
