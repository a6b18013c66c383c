package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/rocketscienceinc/avalon-backend/internal/pkg"
	"github.com/rocketscienceinc/avalon-backend/internal/usecase"
)

var ErrUnknownAction = errors.New("unknown action")

type handlerFunc func(ctx context.Context, message *Message, bufrw *bufio.ReadWriter) error

type Server struct {
	logger      *slog.Logger
	gameUseCase usecase.GameUseCase

	handlers map[string]handlerFunc

	connectionsMutex sync.RWMutex
	connections      map[string]*bufio.ReadWriter
}

func New(logger *slog.Logger, gameUseCase usecase.GameUseCase) *Server {
	server := &Server{
		logger:      logger,
		gameUseCase: gameUseCase,

		handlers:    make(map[string]handlerFunc),
		connections: make(map[string]*bufio.ReadWriter),
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["game:new"] = server.handleNewGame
	server.handlers["game:join"] = server.handleJoinGame
	server.handlers["game:start"] = server.handleStartGame
	server.handlers["game:ack"] = server.handleAcknowledgeRole
	server.handlers["game:propose"] = server.handleProposeTeam
	server.handlers["game:vote"] = server.handleTeamVote
	server.handlers["game:mission"] = server.handleMissionVote
	server.handlers["game:lady"] = server.handleExamineLoyalty
	server.handlers["game:assassinate"] = server.handleAssassinate
	server.handlers["game:continue"] = server.handleContinue
	server.handlers["game:state"] = server.handleGameState

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	if req.Header.Get("Upgrade") != "websocket" {
		http.Error(writer, "not a websocket upgrade", http.StatusBadRequest)
		return
	}

	that.setSessionCookie(writer, req)

	key := req.Header.Get("Sec-WebSocket-Key")
	acceptKey := pkg.GenerateAcceptKey(key)

	writer.Header().Set("Upgrade", "websocket")
	writer.Header().Set("Connection", "Upgrade")
	writer.Header().Set("Sec-WebSocket-Accept", acceptKey)
	writer.WriteHeader(http.StatusSwitchingProtocols)

	hijacker, ok := writer.(http.Hijacker)
	if !ok {
		log.Error("web server does not support hijacking", "error", http.StatusText(http.StatusInternalServerError))
		return
	}

	conn, bufrw, err := hijacker.Hijack()
	if err != nil {
		log.Error("failed to hijack connection", "error", err)
		return
	}

	defer conn.Close()
	defer that.handleDisconnect(bufrw)

	log.Info("WebSocket connection established")

	if err = that.handleMessages(ctx, bufrw); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleMessages")

	for {
		reqBody, err := that.readRequest(bufrw)
		if err != nil {
			log.Error("error reading message", "error", err)
			return err
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("error processing message", "action", message.Action, "error", ErrUnknownAction)
			continue
		}

		if err = handler(ctx, &message, bufrw); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// setSessionCookie - set user session.
func (that *Server) setSessionCookie(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "setSessionCookie")

	cookie, err := req.Cookie("user_session")
	if err != nil {
		cookie = &http.Cookie{
			Name:    "user_session",
			Value:   pkg.GenerateNewSessionID(),
			Expires: time.Now().Add(24 * time.Hour),
			Path:    "/ws",
		}
		http.SetCookie(writer, cookie)
		log.Info("session cookie not found, new one created", "cookie", cookie.Value)
		return
	}

	log.Info("session cookie found", "cookie", cookie.Value)
}

func (that *Server) registerConnection(playerID string, bufrw *bufio.ReadWriter) {
	that.connectionsMutex.Lock()
	that.connections[playerID] = bufrw
	that.connectionsMutex.Unlock()
}

func (that *Server) handleDisconnect(bufrw *bufio.ReadWriter) {
	log := that.logger.With("method", "handleDisconnect")

	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	for playerID, connection := range that.connections {
		if connection == bufrw {
			delete(that.connections, playerID)
			log.Info("player disconnected", "playerID", playerID)
			return
		}
	}
}
