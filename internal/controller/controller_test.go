package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	. "gopkg.in/check.v1"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

func Test(t *testing.T) { TestingT(t) }

var jsonHeader = "application/json"

type ControllerSuite struct {
	app     *fiber.App
	service *service.GameService
}

var _ = Suite(&ControllerSuite{})

func (s *ControllerSuite) SetUpTest(c *C) {
	s.service = service.NewGameService(service.NewGameManager(nil))
	s.app = fiber.New()
	RegisterRoutes(s.app, s.service, nil)
}

func (s *ControllerSuite) do(c *C, method, path, playerID string, body interface{}) (*http.Response, map[string]interface{}) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		c.Assert(err, IsNil)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", jsonHeader)
	}
	if playerID != "" {
		req.Header.Set("X-Player-ID", playerID)
	}
	res, err := s.app.Test(req, -1)
	c.Assert(err, IsNil)
	defer res.Body.Close()

	var out map[string]interface{}
	raw, err := io.ReadAll(res.Body)
	c.Assert(err, IsNil)
	if len(raw) > 0 {
		c.Assert(json.Unmarshal(raw, &out), IsNil, Commentf("%s", string(raw)))
	}
	return res, out
}

func (s *ControllerSuite) create(c *C) string {
	res, out := s.do(c, http.MethodPost, "/api/game/create", "alice", nil)
	c.Assert(res.StatusCode, Equals, http.StatusCreated)
	id, ok := out["game_id"].(string)
	c.Assert(ok, Equals, true)
	return id
}

func (s *ControllerSuite) TestHealthz(c *C) {
	res, out := s.do(c, http.MethodGet, "/healthz", "", nil)
	c.Check(res.StatusCode, Equals, http.StatusOK)
	c.Check(out["status"], Equals, "ok")
}

func (s *ControllerSuite) TestPlayerIDRequired(c *C) {
	res, out := s.do(c, http.MethodPost, "/api/game/create", "", nil)
	c.Check(res.StatusCode, Equals, http.StatusUnauthorized)
	c.Check(out["error"], NotNil)

	res, _ = s.do(c, http.MethodPost, "/api/game/create?playerId=bob", "", nil)
	c.Check(res.StatusCode, Equals, http.StatusCreated)
}

func (s *ControllerSuite) TestCreateAndFetch(c *C) {
	id := s.create(c)

	res, out := s.do(c, http.MethodGet, "/api/game/"+id, "alice", nil)
	c.Assert(res.StatusCode, Equals, http.StatusOK)
	c.Check(out["id"], Equals, id)
	c.Check(out["fen"], Equals, engine.InitialFEN)
	c.Check(out["currentTurn"], Equals, "white")
	c.Check(out["status"], Equals, "in_progress")

	res, out = s.do(c, http.MethodGet, "/api/game/"+id+"/fen", "alice", nil)
	c.Assert(res.StatusCode, Equals, http.StatusOK)
	c.Check(out["fen"], Equals, engine.InitialFEN)
}

func (s *ControllerSuite) TestCreateFromFEN(c *C) {
	fen := "4k3/8/8/8/8/8/8/4K2R w K - 0 1"
	res, out := s.do(c, http.MethodPost, "/api/game/create", "alice", map[string]string{"fen": fen})
	c.Assert(res.StatusCode, Equals, http.StatusCreated)
	id := out["game_id"].(string)

	_, out = s.do(c, http.MethodGet, "/api/game/"+id+"/fen", "alice", nil)
	c.Check(out["fen"], Equals, fen)

	res, _ = s.do(c, http.MethodPost, "/api/game/create", "alice", map[string]string{"fen": "nonsense"})
	c.Check(res.StatusCode, Equals, http.StatusBadRequest)
}

func (s *ControllerSuite) TestUnknownGame(c *C) {
	res, out := s.do(c, http.MethodGet, "/api/game/nope", "alice", nil)
	c.Check(res.StatusCode, Equals, http.StatusNotFound)
	c.Check(out["error"], Matches, ".*game not found.*")
}

func (s *ControllerSuite) TestJoin(c *C) {
	id := s.create(c)
	for _, tt := range []struct {
		player string
		status int
		color  interface{}
	}{
		{"alice", http.StatusOK, "white"},
		{"bob", http.StatusOK, "black"},
		{"carol", http.StatusConflict, nil},
	} {
		res, out := s.do(c, http.MethodPost, "/api/game/join/"+id, tt.player, nil)
		c.Check(res.StatusCode, Equals, tt.status, Commentf("%s", tt.player))
		c.Check(out["color"], Equals, tt.color, Commentf("%s", tt.player))
	}
}

func (s *ControllerSuite) TestSeatsOutliveRequests(c *C) {
	id := s.create(c)
	for _, player := range []string{"alice", "bobby"} {
		res, _ := s.do(c, http.MethodPost, "/api/game/join/"+id, player, nil)
		c.Assert(res.StatusCode, Equals, http.StatusOK, Commentf("%s", player))
	}

	res, _ := s.do(c, http.MethodPost, "/api/game/join/"+id, "carol", nil)
	c.Check(res.StatusCode, Equals, http.StatusConflict)
	res, _ = s.do(c, http.MethodPost, "/api/game/"+id+"/move", "mallo", map[string]string{"uci": "e2e4"})
	c.Check(res.StatusCode, Equals, http.StatusForbidden)

	_, out := s.do(c, http.MethodGet, "/api/game/"+id, "mallo", nil)
	c.Check(out["players"], DeepEquals, map[string]interface{}{"white": "alice", "black": "bobby"})
	c.Check(out["fen"], Equals, engine.InitialFEN)

	res, _ = s.do(c, http.MethodPost, "/api/game/"+id+"/move", "alice", map[string]string{"uci": "e2e4"})
	c.Check(res.StatusCode, Equals, http.StatusOK)
}

func (s *ControllerSuite) TestLegalMoves(c *C) {
	id := s.create(c)

	res, out := s.do(c, http.MethodGet, "/api/game/"+id+"/moves?square=e2", "alice", nil)
	c.Assert(res.StatusCode, Equals, http.StatusOK)
	c.Check(out["square"], Equals, "e2")
	c.Check(out["moves"], DeepEquals, []interface{}{"e3", "e4"})

	res, out = s.do(c, http.MethodGet, "/api/game/"+id+"/moves?square=e7", "alice", nil)
	c.Assert(res.StatusCode, Equals, http.StatusOK)
	c.Check(out["moves"], DeepEquals, []interface{}{})

	res, _ = s.do(c, http.MethodGet, "/api/game/"+id+"/moves?square=k2", "alice", nil)
	c.Check(res.StatusCode, Equals, http.StatusBadRequest)
}

func (s *ControllerSuite) TestMove(c *C) {
	id := s.create(c)

	res, out := s.do(c, http.MethodPost, "/api/game/"+id+"/move", "alice", map[string]string{"from": "e2", "to": "e4"})
	c.Assert(res.StatusCode, Equals, http.StatusOK)
	c.Check(out["currentTurn"], Equals, "black")
	moves := out["moves"].([]interface{})
	c.Assert(moves, HasLen, 1)
	c.Check(moves[0].(map[string]interface{})["san"], Equals, "e4")

	res, _ = s.do(c, http.MethodPost, "/api/game/"+id+"/move", "alice", map[string]string{"uci": "e7e5"})
	c.Check(res.StatusCode, Equals, http.StatusOK)
}

func (s *ControllerSuite) TestRejectedMove(c *C) {
	id := s.create(c)

	res, out := s.do(c, http.MethodPost, "/api/game/"+id+"/move", "alice", map[string]string{"uci": "e2e5"})
	c.Check(res.StatusCode, Equals, http.StatusUnprocessableEntity)
	c.Check(out["error"], Matches, ".*illegal move.*")

	_, out = s.do(c, http.MethodGet, "/api/game/"+id+"/fen", "alice", nil)
	c.Check(out["fen"], Equals, engine.InitialFEN)

	_, _ = s.do(c, http.MethodPost, "/api/game/join/"+id, "alice", nil)
	res, _ = s.do(c, http.MethodPost, "/api/game/"+id+"/move", "bob", map[string]string{"uci": "e2e4"})
	c.Check(res.StatusCode, Equals, http.StatusForbidden)
}

func (s *ControllerSuite) TestReset(c *C) {
	id := s.create(c)
	s.do(c, http.MethodPost, "/api/game/"+id+"/move", "alice", map[string]string{"uci": "d2d4"})

	res, out := s.do(c, http.MethodPost, "/api/game/"+id+"/reset", "alice", nil)
	c.Assert(res.StatusCode, Equals, http.StatusOK)
	c.Check(out["moves"], DeepEquals, []interface{}{})
	c.Check(out["fen"], Equals, engine.InitialFEN)
}

func (s *ControllerSuite) TestStats(c *C) {
	id := s.create(c)
	s.do(c, http.MethodPost, "/api/game/"+id+"/move", "alice", map[string]string{"uci": "d2d4"})

	res, out := s.do(c, http.MethodGet, "/api/stats", "", nil)
	c.Assert(res.StatusCode, Equals, http.StatusOK)
	c.Check(out["games"], Equals, 1.0)
	c.Check(out["active"], Equals, 1.0)
	c.Check(out["maxPlies"], Equals, 1.0)
}

func (s *ControllerSuite) TestWebSocketRequiresUpgrade(c *C) {
	id := s.create(c)
	req := httptest.NewRequest(http.MethodGet, "/ws/game/"+id+"?playerId=alice", nil)
	res, err := s.app.Test(req, -1)
	c.Assert(err, IsNil)
	c.Check(res.StatusCode, Equals, http.StatusUpgradeRequired)
}

func (s *ControllerSuite) TestHandleMessage(c *C) {
	id := s.create(c)
	wsc := NewWebSocketController(s.service)
	ctx := context.Background()

	reply, err := wsc.handleMessage(ctx, id, "alice", ws.Message{
		Type:    ws.MessageTypeLegalMoves,
		Payload: json.RawMessage(`{"square":"g1"}`),
	})
	c.Assert(err, IsNil)
	c.Check(reply.Type, Equals, ws.MessageTypeLegalMoves)
	var payload ws.LegalMovesPayload
	c.Assert(json.Unmarshal(reply.Payload, &payload), IsNil)
	sort.Strings(payload.Moves)
	c.Check(payload, DeepEquals, ws.LegalMovesPayload{Square: "g1", Moves: []string{"f3", "h3"}})

	reply, err = wsc.handleMessage(ctx, id, "alice", ws.Message{
		Type:    ws.MessageTypeMove,
		Payload: json.RawMessage(`{"from":"g1","to":"f3"}`),
	})
	c.Assert(err, IsNil)
	c.Check(reply.Type, Equals, ws.MessageType(""))

	_, err = wsc.handleMessage(ctx, id, "alice", ws.Message{
		Type:    ws.MessageTypeMove,
		Payload: json.RawMessage(`{"uci":"g1f3"}`),
	})
	c.Check(errors.Is(err, engine.ErrIllegalMove), Equals, true)

	_, err = wsc.handleMessage(ctx, id, "alice", ws.Message{Type: ws.MessageTypeReset})
	c.Check(err, IsNil)

	_, err = wsc.handleMessage(ctx, id, "alice", ws.Message{Type: "resign"})
	c.Check(errors.Is(err, service.ErrBadRequest), Equals, true)
}

func (s *ControllerSuite) TestStatusFor(c *C) {
	for err, want := range map[error]int{
		service.ErrGameNotFound:                       http.StatusNotFound,
		service.ErrGameFull:                           http.StatusConflict,
		service.ErrGameExists:                         http.StatusConflict,
		fmt.Errorf("e2: %w", service.ErrNotYourPiece): http.StatusForbidden,
		service.ErrNotAPlayer:                         http.StatusForbidden,
		&engine.MoveError{Err: engine.ErrWrongTurn}:   http.StatusUnprocessableEntity,
		&engine.MoveError{Err: engine.ErrGameOver}:    http.StatusUnprocessableEntity,
		engine.ErrInvalidFEN:                          http.StatusBadRequest,
		errors.New("database unavailable"):            http.StatusInternalServerError,
	} {
		c.Check(StatusFor(err), Equals, want, Commentf("%s", err.Error()))
	}
}

func (s *ControllerSuite) TestMatchmaking(c *C) {
	res, out := s.do(c, http.MethodPost, "/api/game/matchmaking/join", "alice", nil)
	c.Assert(res.StatusCode, Equals, http.StatusOK)
	c.Check(out["queued"], Equals, true)

	res, out = s.do(c, http.MethodPost, "/api/game/matchmaking/join", "bob", nil)
	c.Assert(res.StatusCode, Equals, http.StatusOK)
	c.Check(out["color"], Equals, "black")
	gameID := out["game_id"]

	_, out = s.do(c, http.MethodGet, "/api/game/matchmaking/status", "alice", nil)
	c.Check(out["color"], Equals, "white")
	c.Check(out["game_id"], Equals, gameID)

	_, out = s.do(c, http.MethodPost, "/api/game/matchmaking/leave", "carol", nil)
	c.Check(out["left"], Equals, false)
}
