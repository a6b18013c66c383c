package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/avalon-backend/internal/apperror"
	"github.com/rocketscienceinc/avalon-backend/internal/entity"
	"github.com/rocketscienceinc/avalon-backend/internal/usecase"
)

// rejectionErrors are expected rule violations; their text is safe to
// surface to the client as-is.
var rejectionErrors = []error{
	apperror.ErrWrongPhase,
	apperror.ErrNotAuthorized,
	apperror.ErrInvalidTeamSize,
	apperror.ErrDuplicateVote,
	apperror.ErrInvalidTarget,
	apperror.ErrConfigurationInvalid,
	apperror.ErrGameFinished,
	apperror.ErrGameNotStarted,
	apperror.ErrGameFull,
	apperror.ErrUnknownPlayer,
}

func isRejection(err error) bool {
	for _, rejection := range rejectionErrors {
		if errors.Is(err, rejection) {
			return true
		}
	}

	return false
}

func (that *Server) handleConnect(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	var playerID, playerName string
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
		playerName = payloadReq.Player.Name
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, playerID, playerName)
	if err != nil {
		log.Error("failed to create or get player", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, "failed to create a new player")
	}

	that.registerConnection(player.ID, bufrw)

	payloadResp := Payload{Player: player}

	if player.GameID != "" {
		game, err := that.gameUseCase.GetGameByPlayerID(ctx, player.ID)
		if err != nil {
			log.Error("failed to get game", "gameID", player.GameID, "error", err)
			return that.sendErrorResponse(bufrw, msg.Action, "failed to get the game")
		}

		payloadResp.State = usecase.BuildPublicState(game)
		payloadResp.Private, err = usecase.BuildPrivateView(game, player.ID)
		if err != nil {
			log.Error("failed to build private view", "error", err)
		}
	}

	if err = that.sendMessage(bufrw, msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleNewGame")

	payloadReq, err := that.requirePlayer(msg, bufrw)
	if payloadReq == nil {
		return err
	}

	if payloadReq.Config == nil {
		log.Error("Config is missing in payload")
		return that.sendErrorResponse(bufrw, msg.Action, "Config is required")
	}

	game, err := that.gameUseCase.CreateGame(ctx, payloadReq.Player.ID, *payloadReq.Config)
	if err != nil {
		return that.replyCommandError(bufrw, msg.Action, err, "failed to create a new game")
	}

	that.broadcastGame(msg.Action, game)

	log.Info("game created", "gameID", game.ID)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleJoinGame")

	payloadReq, err := that.requirePlayer(msg, bufrw)
	if payloadReq == nil {
		return err
	}

	if payloadReq.GameID == "" {
		log.Error("GameID is missing in payload")
		return that.sendErrorResponse(bufrw, msg.Action, "Game id is required")
	}

	game, err := that.gameUseCase.JoinGame(ctx, payloadReq.GameID, payloadReq.Player.ID)
	if err != nil {
		return that.replyCommandError(bufrw, msg.Action, err, fmt.Sprintf("failed to join game %s", payloadReq.GameID))
	}

	that.broadcastGame(msg.Action, game)

	log.Info("player joined game", "playerID", payloadReq.Player.ID, "gameID", game.ID)

	return nil
}

func (that *Server) handleStartGame(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payloadReq, err := that.requirePlayer(msg, bufrw)
	if payloadReq == nil {
		return err
	}

	game, err := that.gameUseCase.StartGame(ctx, payloadReq.Player.ID)
	if err != nil {
		return that.replyCommandError(bufrw, msg.Action, err, "failed to start game")
	}

	that.broadcastGame(msg.Action, game)

	return nil
}

func (that *Server) handleAcknowledgeRole(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payloadReq, err := that.requirePlayer(msg, bufrw)
	if payloadReq == nil {
		return err
	}

	game, err := that.gameUseCase.AcknowledgeRole(ctx, payloadReq.Player.ID)
	if err != nil {
		return that.replyCommandError(bufrw, msg.Action, err, "failed to acknowledge role")
	}

	that.broadcastGame(msg.Action, game)

	return nil
}

func (that *Server) handleProposeTeam(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleProposeTeam")

	payloadReq, err := that.requirePlayer(msg, bufrw)
	if payloadReq == nil {
		return err
	}

	if len(payloadReq.Team) == 0 {
		log.Error("Team is missing in payload")
		return that.sendErrorResponse(bufrw, msg.Action, "Team is required")
	}

	game, err := that.gameUseCase.ProposeTeam(ctx, payloadReq.Player.ID, payloadReq.Team)
	if err != nil {
		return that.replyCommandError(bufrw, msg.Action, err, "failed to propose team")
	}

	that.broadcastGame(msg.Action, game)

	return nil
}

func (that *Server) handleTeamVote(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleTeamVote")

	payloadReq, err := that.requirePlayer(msg, bufrw)
	if payloadReq == nil {
		return err
	}

	if payloadReq.Approve == nil {
		log.Error("Approve is missing in payload")
		return that.sendErrorResponse(bufrw, msg.Action, "Approve is required")
	}

	game, err := that.gameUseCase.CastTeamVote(ctx, payloadReq.Player.ID, *payloadReq.Approve)
	if err != nil {
		return that.replyCommandError(bufrw, msg.Action, err, "failed to cast team vote")
	}

	that.broadcastGame(msg.Action, game)

	return nil
}

func (that *Server) handleMissionVote(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleMissionVote")

	payloadReq, err := that.requirePlayer(msg, bufrw)
	if payloadReq == nil {
		return err
	}

	if payloadReq.Success == nil {
		log.Error("Success is missing in payload")
		return that.sendErrorResponse(bufrw, msg.Action, "Success is required")
	}

	game, err := that.gameUseCase.CastMissionVote(ctx, payloadReq.Player.ID, *payloadReq.Success)
	if err != nil {
		return that.replyCommandError(bufrw, msg.Action, err, "failed to cast mission vote")
	}

	that.broadcastGame(msg.Action, game)

	return nil
}

func (that *Server) handleExamineLoyalty(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleExamineLoyalty")

	payloadReq, err := that.requirePlayer(msg, bufrw)
	if payloadReq == nil {
		return err
	}

	if payloadReq.TargetID == "" {
		log.Error("TargetID is missing in payload")
		return that.sendErrorResponse(bufrw, msg.Action, "Target is required")
	}

	alignment, game, err := that.gameUseCase.ExamineLoyalty(ctx, payloadReq.Player.ID, payloadReq.TargetID)
	if err != nil {
		return that.replyCommandError(bufrw, msg.Action, err, "failed to examine loyalty")
	}

	// the reveal goes to the examining holder only, never broadcast
	reveal := Payload{
		Reveal: &LoyaltyReveal{
			TargetID:  payloadReq.TargetID,
			Alignment: alignment,
		},
	}
	if err = that.sendMessage(bufrw, msg.Action, reveal); err != nil {
		log.Error("failed to send loyalty reveal", "error", err)
	}

	that.broadcastGame("game:update", game)

	return nil
}

func (that *Server) handleAssassinate(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payloadReq, err := that.requirePlayer(msg, bufrw)
	if payloadReq == nil {
		return err
	}

	if payloadReq.TargetID == "" {
		return that.sendErrorResponse(bufrw, msg.Action, "Target is required")
	}

	game, err := that.gameUseCase.Assassinate(ctx, payloadReq.Player.ID, payloadReq.TargetID)
	if err != nil {
		return that.replyCommandError(bufrw, msg.Action, err, "failed to assassinate")
	}

	that.broadcastGame(msg.Action, game)

	return nil
}

func (that *Server) handleContinue(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payloadReq, err := that.requirePlayer(msg, bufrw)
	if payloadReq == nil {
		return err
	}

	game, err := that.gameUseCase.Continue(ctx, payloadReq.Player.ID)
	if err != nil {
		return that.replyCommandError(bufrw, msg.Action, err, "failed to continue game")
	}

	that.broadcastGame(msg.Action, game)

	return nil
}

func (that *Server) handleGameState(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleGameState")

	payloadReq, err := that.requirePlayer(msg, bufrw)
	if payloadReq == nil {
		return err
	}

	game, err := that.gameUseCase.GetGameByPlayerID(ctx, payloadReq.Player.ID)
	if err != nil {
		return that.replyCommandError(bufrw, msg.Action, err, "failed to get game state")
	}

	payloadResp := Payload{State: usecase.BuildPublicState(game)}
	payloadResp.Private, err = usecase.BuildPrivateView(game, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to build private view", "error", err)
	}

	return that.sendMessage(bufrw, msg.Action, payloadResp)
}

// requirePlayer unmarshals the payload, checks the player field and
// registers the connection under the player's id. A nil payload return
// means the request was already answered with an error.
func (that *Server) requirePlayer(msg *Message, bufrw *bufio.ReadWriter) (*Payload, error) {
	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil || payloadReq.Player.ID == "" {
		that.logger.Error("Player is missing in payload", "action", msg.Action)
		return nil, that.sendErrorResponse(bufrw, msg.Action, "Player is required")
	}

	that.registerConnection(payloadReq.Player.ID, bufrw)

	return &payloadReq, nil
}

// replyCommandError surfaces rejections verbatim and hides internal
// failures behind a generic message.
func (that *Server) replyCommandError(bufrw *bufio.ReadWriter, action string, err error, fallback string) error {
	if isRejection(err) {
		return that.sendErrorResponse(bufrw, action, err.Error())
	}

	that.logger.Error(fallback, "action", action, "error", err)

	return that.sendErrorResponse(bufrw, action, fallback)
}

// broadcastGame pushes the new public snapshot to every connected human
// participant, together with their own private view.
func (that *Server) broadcastGame(action string, game *entity.Game) {
	log := that.logger.With("method", "broadcastGame", "gameID", game.ID)

	state := usecase.BuildPublicState(game)

	for _, player := range game.Players {
		if player.IsBot {
			continue
		}

		that.connectionsMutex.RLock()
		conn, ok := that.connections[player.ID]
		that.connectionsMutex.RUnlock()

		if !ok {
			log.Warn("connection not found for player", "playerID", player.ID)
			continue
		}

		payloadResp := Payload{
			Player: player,
			State:  state,
		}

		private, err := usecase.BuildPrivateView(game, player.ID)
		if err != nil {
			log.Error("failed to build private view", "playerID", player.ID, "error", err)
		} else {
			payloadResp.Private = private
		}

		if err := that.sendMessage(conn, action, payloadResp); err != nil {
			log.Error("failed to send game update", "playerID", player.ID, "error", err)
		}
	}
}

func (that *Server) sendErrorResponse(bufrw *bufio.ReadWriter, action, errorMsg string) error {
	payload := Payload{Error: errorMsg}
	if err := that.sendMessage(bufrw, action, payload); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}
