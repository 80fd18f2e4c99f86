package controller

import (
	"errors"

	"github.com/apex/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

type createGameRequest struct {
	FEN string `json:"fen"`
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req createGameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	gameID, err := gc.gameService.CreateGame(c.UserContext(), req.FEN)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := gameIDParam(c)
	playerID := middleware.PlayerID(c)

	color, err := gc.gameService.JoinGame(c.UserContext(), gameID, playerID)
	if err != nil {
		return respondError(c, err)
	}
	log.WithField("game", gameID).WithField("player", playerID).WithField("color", color).Info("player joined")

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	snap, err := gc.gameService.GetGameState(c.UserContext(), gameIDParam(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snap)
}

// LegalMoves answers GET /api/game/:gameId/moves?square=e2.
func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	square, err := model.ParsePosition(c.Query("square"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	moves, err := gc.gameService.LegalMoves(c.UserContext(), gameIDParam(c), square)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"square": square.String(),
		"moves":  squareNames(moves),
	})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var req service.MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	snap, err := gc.gameService.HandleMove(c.UserContext(), gameIDParam(c), middleware.PlayerID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snap)
}

func (gc *GameController) ResetGame(c *fiber.Ctx) error {
	snap, err := gc.gameService.ResetGame(c.UserContext(), gameIDParam(c), middleware.PlayerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snap)
}

func (gc *GameController) GetFEN(c *fiber.Ctx) error {
	fen, err := gc.gameService.GetFEN(c.UserContext(), gameIDParam(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"fen": fen})
}

func (gc *GameController) Stats(c *fiber.Ctx) error {
	st, err := gc.gameService.Stats()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(st)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	match, err := gc.gameService.JoinMatchmaking(c.UserContext(), middleware.PlayerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(match)
}

func (gc *GameController) MatchStatus(c *fiber.Ctx) error {
	return c.JSON(gc.gameService.MatchStatus(middleware.PlayerID(c)))
}

func (gc *GameController) LeaveMatchmaking(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"left": gc.gameService.LeaveMatchmaking(middleware.PlayerID(c)),
	})
}

// StatusFor maps service and engine errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrGameExists), errors.Is(err, service.ErrGameFull), errors.Is(err, service.ErrAlreadyQueued):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrNotYourPiece), errors.Is(err, service.ErrNotAPlayer):
		return fiber.StatusForbidden
	case errors.Is(err, engine.ErrIllegalMove), errors.Is(err, engine.ErrGameOver):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrInvalidFEN), errors.Is(err, service.ErrBadRequest):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	if status == fiber.StatusInternalServerError {
		log.WithField("path", c.Path()).WithError(err).Error("request failed")
		return c.Status(status).JSON(fiber.Map{
			"error": "internal error",
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// gameIDParam copies the route id; fiber reuses the underlying buffer.
func gameIDParam(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("gameId"))
}

func squareNames(positions []model.Position) []string {
	names := make([]string, 0, len(positions))
	for _, p := range positions {
		names = append(names, p.String())
	}
	return names
}
