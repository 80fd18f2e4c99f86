package service

import "errors"

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
	ErrGameFull     = errors.New("game is full")
	// ErrNotYourPiece rejects moving a color seated by another player.
	ErrNotYourPiece = errors.New("piece belongs to another player")
	// ErrNotAPlayer rejects a reset from someone who holds no seat in a seated game.
	ErrNotAPlayer    = errors.New("not a player in this game")
	ErrAlreadyQueued = errors.New("player already in matchmaking queue")
	ErrBadRequest    = errors.New("malformed request")
)
