// service/game_manager.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/apex/log"
	"github.com/montanaflynn/stats"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/store"
)

type GameManager struct {
	games    map[string]*Game
	recorder Recorder
	mu       sync.RWMutex

	queue   *Queue
	matches map[string]Match // playerID -> match not yet collected
	mmMu    sync.Mutex
}

// NewGameManager builds an empty registry. recorder may be nil, which disables archiving.
func NewGameManager(recorder Recorder) *GameManager {
	return &GameManager{
		games:    make(map[string]*Game),
		recorder: recorder,
		queue:    NewQueue(),
		matches:  make(map[string]Match),
	}
}

// CreateGame registers a session starting from fen, or the standard position when fen is empty.
func (gm *GameManager) CreateGame(ctx context.Context, gameID, fen string) (*Game, error) {
	if fen == "" {
		fen = engine.InitialFEN
	}
	state, err := engine.NewGameFromFEN(fen)
	if err != nil {
		return nil, err
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return nil, fmt.Errorf("%s: %w", gameID, ErrGameExists)
	}
	game := NewGame(gameID, state, fen, gm.recorder)
	gm.games[gameID] = game
	log.WithField("game", gameID).WithField("fen", fen).Info("game created")

	game.mu.Lock()
	game.persist(ctx)
	game.mu.Unlock()
	return game, nil
}

// GetGame returns the live session, restoring it from the archive when it is not in memory.
func (gm *GameManager) GetGame(ctx context.Context, gameID string) (*Game, error) {
	gm.mu.RLock()
	game, exists := gm.games[gameID]
	gm.mu.RUnlock()
	if exists {
		return game, nil
	}
	if gm.recorder == nil {
		return nil, fmt.Errorf("%s: %w", gameID, ErrGameNotFound)
	}

	rec, err := gm.recorder.LoadGame(ctx, gameID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", gameID, ErrGameNotFound)
	}
	if err != nil {
		return nil, err
	}
	state, err := rec.Replay()
	if err != nil {
		log.WithField("game", gameID).WithError(err).Error("archived game does not replay")
		return nil, fmt.Errorf("restore %s: %w", gameID, err)
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	if game, exists := gm.games[gameID]; exists {
		return game, nil
	}
	game = NewGame(gameID, state, rec.StartFEN, gm.recorder)
	gm.games[gameID] = game
	log.WithField("game", gameID).WithField("plies", len(state.Moves)).Info("game restored from archive")
	return game, nil
}

// Stats summarizes the sessions held in memory.
type Stats struct {
	Games       int     `json:"games"`
	Active      int     `json:"active"`
	Finished    int     `json:"finished"`
	MeanPlies   float64 `json:"meanPlies"`
	MedianPlies float64 `json:"medianPlies"`
	MaxPlies    float64 `json:"maxPlies"`
}

func (gm *GameManager) Stats() (Stats, error) {
	gm.mu.RLock()
	games := make([]*Game, 0, len(gm.games))
	for _, g := range gm.games {
		games = append(games, g)
	}
	gm.mu.RUnlock()

	out := Stats{Games: len(games)}
	if len(games) == 0 {
		return out, nil
	}
	plies := make([]int, 0, len(games))
	for _, g := range games {
		n, over := g.summary()
		plies = append(plies, n)
		if over {
			out.Finished++
		} else {
			out.Active++
		}
	}

	data := stats.LoadRawData(plies)
	var err error
	if out.MeanPlies, err = stats.Mean(data); err != nil {
		return Stats{}, err
	}
	if out.MedianPlies, err = stats.Median(data); err != nil {
		return Stats{}, err
	}
	if out.MaxPlies, err = stats.Max(data); err != nil {
		return Stats{}, err
	}
	return out, nil
}
