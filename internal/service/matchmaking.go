package service

import (
	"context"
	"errors"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/benbeisheim/chess-backend/internal/model"
)

// Match is the outcome of a matchmaking request. GameID is empty while the player waits.
type Match struct {
	GameID string      `json:"game_id,omitempty"`
	Color  model.Color `json:"color,omitempty"`
	Queued bool        `json:"queued"`
}

// JoinMatchmaking pairs playerID with the longest-waiting player, or queues it. The waiting
// player takes white and collects the match through MatchStatus.
func (gm *GameManager) JoinMatchmaking(ctx context.Context, playerID string) (Match, error) {
	gm.mmMu.Lock()
	defer gm.mmMu.Unlock()

	if m, ok := gm.matches[playerID]; ok {
		delete(gm.matches, playerID)
		return m, nil
	}

	opponent, ok := gm.queue.PopOpponent(playerID)
	if !ok {
		if err := gm.queue.AddPlayer(playerID); err != nil && !errors.Is(err, ErrAlreadyQueued) {
			return Match{}, err
		}
		log.WithField("player", playerID).WithField("waiting", gm.queue.Size()).Debug("queued for matchmaking")
		return Match{Queued: true}, nil
	}

	gm.queue.Remove(playerID)
	gameID := uuid.New().String()
	game, err := gm.CreateGame(ctx, gameID, "")
	if err != nil {
		_ = gm.queue.AddPlayer(opponent.PlayerID)
		return Match{}, err
	}
	white, err := game.AddPlayer(opponent.PlayerID)
	if err != nil {
		return Match{}, err
	}
	black, err := game.AddPlayer(playerID)
	if err != nil {
		return Match{}, err
	}
	gm.matches[opponent.PlayerID] = Match{GameID: gameID, Color: white}
	log.WithField("game", gameID).WithField("white", opponent.PlayerID).WithField("black", playerID).Info("match found")
	return Match{GameID: gameID, Color: black}, nil
}

// MatchStatus reports a pending match for playerID, consuming it, or whether it is still queued.
func (gm *GameManager) MatchStatus(playerID string) Match {
	gm.mmMu.Lock()
	defer gm.mmMu.Unlock()

	if m, ok := gm.matches[playerID]; ok {
		delete(gm.matches, playerID)
		return m
	}
	return Match{Queued: gm.queue.contains(playerID)}
}

// LeaveMatchmaking removes playerID from the queue.
func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	gm.mmMu.Lock()
	defer gm.mmMu.Unlock()
	return gm.queue.Remove(playerID)
}
