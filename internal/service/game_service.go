package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/benbeisheim/chess-backend/internal/model"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

// CreateGame starts a session under a fresh id. An empty fen means the standard position.
func (gs *GameService) CreateGame(ctx context.Context, fen string) (string, error) {
	gameID := uuid.New().String()
	if _, err := gs.gameManager.CreateGame(ctx, gameID, fen); err != nil {
		return "", err
	}
	return gameID, nil
}

func (gs *GameService) JoinGame(ctx context.Context, gameID, playerID string) (model.Color, error) {
	game, err := gs.gameManager.GetGame(ctx, gameID)
	if err != nil {
		return "", err
	}
	return game.AddPlayer(playerID)
}

func (gs *GameService) GetGameState(ctx context.Context, gameID string) (Snapshot, error) {
	game, err := gs.gameManager.GetGame(ctx, gameID)
	if err != nil {
		return Snapshot{}, err
	}
	return game.Snapshot(), nil
}

func (gs *GameService) LegalMoves(ctx context.Context, gameID string, square model.Position) ([]model.Position, error) {
	game, err := gs.gameManager.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMoves(square), nil
}

func (gs *GameService) HandleMove(ctx context.Context, gameID, playerID string, move MoveRequest) (Snapshot, error) {
	game, err := gs.gameManager.GetGame(ctx, gameID)
	if err != nil {
		return Snapshot{}, err
	}
	from, to, promotion, err := move.Parse()
	if err != nil {
		return Snapshot{}, err
	}
	return game.MakeMove(ctx, playerID, from, to, promotion)
}

func (gs *GameService) ResetGame(ctx context.Context, gameID, playerID string) (Snapshot, error) {
	game, err := gs.gameManager.GetGame(ctx, gameID)
	if err != nil {
		return Snapshot{}, err
	}
	return game.Reset(ctx, playerID)
}

func (gs *GameService) GetFEN(ctx context.Context, gameID string) (string, error) {
	game, err := gs.gameManager.GetGame(ctx, gameID)
	if err != nil {
		return "", err
	}
	return game.FEN(), nil
}

func (gs *GameService) Stats() (Stats, error) {
	return gs.gameManager.Stats()
}

func (gs *GameService) RegisterConnection(ctx context.Context, gameID, playerID string, conn Conn) (*Game, *Peer, error) {
	game, err := gs.gameManager.GetGame(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	peer, err := game.RegisterConnection(playerID, conn)
	if err != nil {
		return nil, nil, err
	}
	return game, peer, nil
}

func (gs *GameService) JoinMatchmaking(ctx context.Context, playerID string) (Match, error) {
	return gs.gameManager.JoinMatchmaking(ctx, playerID)
}

func (gs *GameService) MatchStatus(playerID string) Match {
	return gs.gameManager.MatchStatus(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) bool {
	return gs.gameManager.LeaveMatchmaking(playerID)
}
