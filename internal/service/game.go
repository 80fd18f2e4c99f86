package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/apex/log"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/store"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

// Recorder archives sessions. *store.Store implements it.
type Recorder interface {
	SaveGame(ctx context.Context, id, startFEN string, state model.GameState) error
	LoadGame(ctx context.Context, id string) (store.GameRecord, error)
}

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Peer is one registered connection. Writes are serialized per peer.
type Peer struct {
	PlayerID string
	mu       sync.Mutex
	conn     Conn
}

func (p *Peer) Send(msg ws.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteJSON(msg)
}

type Seats struct {
	White string `json:"white"`
	Black string `json:"black"`
}

func (s Seats) holder(color model.Color) string {
	if color == model.White {
		return s.White
	}
	return s.Black
}

// Snapshot is the client view of a game.
type Snapshot struct {
	ID string `json:"id"`
	model.GameState
	Players Seats  `json:"players"`
	FEN     string `json:"fen"`
}

// gameConnections holds the connections for a specific game
type gameConnections struct {
	peers map[string]*Peer // playerID -> peer
	mu    sync.RWMutex
}

// Game owns a single session's state, its seats and its observers.
type Game struct {
	ID          string
	mu          sync.Mutex
	state       model.GameState
	startFEN    string
	seats       Seats
	connections *gameConnections
	recorder    Recorder
}

// NewGame wraps state in a session. recorder may be nil.
func NewGame(id string, state model.GameState, startFEN string, recorder Recorder) *Game {
	return &Game{
		ID:          id,
		state:       state,
		startFEN:    startFEN,
		connections: &gameConnections{peers: make(map[string]*Peer)},
		recorder:    recorder,
	}
}

// AddPlayer seats playerID, white first. A player already seated gets their color back.
func (g *Game) AddPlayer(playerID string) (model.Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch playerID {
	case g.seats.White:
		return model.White, nil
	case g.seats.Black:
		return model.Black, nil
	}
	if g.seats.White == "" {
		g.seats.White = playerID
		return model.White, nil
	}
	if g.seats.Black == "" {
		g.seats.Black = playerID
		return model.Black, nil
	}
	return "", ErrGameFull
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() Snapshot {
	return Snapshot{
		ID:        g.ID,
		GameState: g.state.Clone(),
		Players:   g.seats,
		FEN:       engine.EncodeFEN(g.state),
	}
}

func (g *Game) State() model.GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Clone()
}

func (g *Game) FEN() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return engine.EncodeFEN(g.state)
}

// LegalMoves lists the destinations of the piece on square; empty for an empty square or a
// piece whose side is not on move.
func (g *Game) LegalMoves(square model.Position) []model.Position {
	g.mu.Lock()
	defer g.mu.Unlock()
	return engine.LegalMovesAt(g.state, square)
}

// MakeMove plays from-to on behalf of playerID and broadcasts the new state. A color with a
// seated player only accepts moves from that player.
func (g *Game) MakeMove(ctx context.Context, playerID string, from, to model.Position, promotion model.PieceType) (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if piece := g.state.Board.At(from); piece != nil {
		if holder := g.seats.holder(piece.Color); holder != "" && holder != playerID {
			return Snapshot{}, fmt.Errorf("%s: %w", from, ErrNotYourPiece)
		}
	}
	next, err := engine.ApplyMove(g.state, from, to, promotion)
	if err != nil {
		return Snapshot{}, err
	}
	g.state = next

	last, _ := next.LastMove()
	logger := log.WithField("game", g.ID).WithField("move", last.Coordinate)
	logger.WithField("san", last.Algebraic).Debug("move applied")
	if next.Status.Over() {
		logger.WithField("status", next.Status).Info("game finished")
	}

	g.persist(ctx)
	snap := g.snapshot()
	g.broadcast(snap)
	return snap, nil
}

// Reset restores the standard starting position and clears the history. In a seated game only
// seated players may reset.
func (g *Game) Reset(ctx context.Context, playerID string) (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if (g.seats.White != "" || g.seats.Black != "") && playerID != g.seats.White && playerID != g.seats.Black {
		return Snapshot{}, ErrNotAPlayer
	}
	g.state = engine.NewGame()
	g.startFEN = engine.InitialFEN
	log.WithField("game", g.ID).WithField("player", playerID).Info("game reset")

	g.persist(ctx)
	snap := g.snapshot()
	g.broadcast(snap)
	return snap, nil
}

// persist archives the current state. Failures are logged; the in-memory session stays
// authoritative.
func (g *Game) persist(ctx context.Context) {
	if g.recorder == nil {
		return
	}
	if err := g.recorder.SaveGame(ctx, g.ID, g.startFEN, g.state); err != nil {
		log.WithField("game", g.ID).WithError(err).Warn("failed to archive game")
	}
}

// RegisterConnection attaches conn as playerID's observer and sends it the current state. A
// second connection for the same player is closed and the first one kept.
func (g *Game) RegisterConnection(playerID string, conn Conn) (*Peer, error) {
	logger := log.WithField("game", g.ID).WithField("player", playerID)

	g.mu.Lock()
	defer g.mu.Unlock()

	g.connections.mu.Lock()
	if _, exists := g.connections.peers[playerID]; exists {
		g.connections.mu.Unlock()
		logger.Warn("rejecting duplicate connection")
		_ = conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Connection already exists"),
		)
		_ = conn.Close()
		return nil, fmt.Errorf("player %s already connected", playerID)
	}
	peer := &Peer{PlayerID: playerID, conn: conn}
	g.connections.peers[playerID] = peer
	g.connections.mu.Unlock()
	logger.Info("connection registered")

	msg, err := ws.NewMessage(ws.MessageTypeGameState, g.snapshot())
	if err != nil {
		return peer, err
	}
	if err := peer.Send(msg); err != nil {
		logger.WithError(err).Warn("failed to send initial state")
	}
	return peer, nil
}

// UnregisterConnection detaches peer if it is still the player's current connection.
func (g *Game) UnregisterConnection(peer *Peer) {
	if peer == nil {
		return
	}
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.peers[peer.PlayerID]; exists && current == peer {
		delete(g.connections.peers, peer.PlayerID)
		log.WithField("game", g.ID).WithField("player", peer.PlayerID).Info("connection unregistered")
	}
}

// broadcast sends snap to every observer. Called with g.mu held so observers see states in
// move order.
func (g *Game) broadcast(snap Snapshot) {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, snap)
	if err != nil {
		log.WithField("game", g.ID).WithError(err).Error("failed to marshal state")
		return
	}

	g.connections.mu.RLock()
	peers := make([]*Peer, 0, len(g.connections.peers))
	for _, p := range g.connections.peers {
		peers = append(peers, p)
	}
	g.connections.mu.RUnlock()

	for _, p := range peers {
		if err := p.Send(msg); err != nil {
			log.WithField("game", g.ID).WithField("player", p.PlayerID).WithError(err).Warn("failed to send state")
			g.UnregisterConnection(p)
		}
	}
}

// summary returns the values the manager aggregates into Stats.
func (g *Game) summary() (plies int, over bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.state.Moves), g.state.Status.Over()
}
