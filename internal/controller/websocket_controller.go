package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apex/log"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID, _ := c.Locals(middleware.PlayerIDKey).(string)
	logger := log.WithField("game", gameID).WithField("player", playerID)
	ctx := context.Background()

	game, peer, err := wsc.gameService.RegisterConnection(ctx, gameID, playerID, c)
	if err != nil {
		logger.WithError(err).Warn("failed to register connection")
		_ = c.WriteJSON(ws.ErrorMessage(err))
		_ = c.Close()
		return
	}
	defer game.UnregisterConnection(peer)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			logger.WithError(err).Debug("read loop ended")
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.WithError(err).Debug("malformed frame")
			_ = peer.Send(ws.ErrorMessage(fmt.Errorf("malformed message: %w", err)))
			continue
		}

		reply, err := wsc.handleMessage(ctx, gameID, playerID, msg)
		if err != nil {
			logger.WithField("type", msg.Type).WithError(err).Debug("message rejected")
			reply = ws.ErrorMessage(err)
		}
		if reply.Type == "" {
			continue
		}
		if err := peer.Send(reply); err != nil {
			logger.WithError(err).Warn("failed to reply")
			return
		}
	}
}

// handleMessage applies one inbound message. State changes reach the sender through the game
// broadcast, so only legalMoves produces a direct reply.
func (wsc *WebSocketController) handleMessage(ctx context.Context, gameID, playerID string, msg ws.Message) (ws.Message, error) {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move ws.MovePayload
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return ws.Message{}, fmt.Errorf("move payload: %w", service.ErrBadRequest)
		}
		_, err := wsc.gameService.HandleMove(ctx, gameID, playerID, service.MoveRequest(move))
		return ws.Message{}, err

	case ws.MessageTypeReset:
		_, err := wsc.gameService.ResetGame(ctx, gameID, playerID)
		return ws.Message{}, err

	case ws.MessageTypeLegalMoves:
		var req ws.LegalMovesRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return ws.Message{}, fmt.Errorf("legalMoves payload: %w", service.ErrBadRequest)
		}
		square, err := model.ParsePosition(req.Square)
		if err != nil {
			return ws.Message{}, fmt.Errorf("square %q: %w", req.Square, service.ErrBadRequest)
		}
		moves, err := wsc.gameService.LegalMoves(ctx, gameID, square)
		if err != nil {
			return ws.Message{}, err
		}
		return ws.NewMessage(ws.MessageTypeLegalMoves, ws.LegalMovesPayload{
			Square: square.String(),
			Moves:  squareNames(moves),
		})

	default:
		return ws.Message{}, fmt.Errorf("unknown message type %q: %w", msg.Type, service.ErrBadRequest)
	}
}
