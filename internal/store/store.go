// Package store archives game sessions in postgres through gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/model"
)

var ErrNotFound = errors.New("game record not found")

// GameRecord is the archived form of a session: the position it started from, the latest
// position and the move list that connects them.
type GameRecord struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	StartFEN  string `gorm:"type:varchar(100);not null"`
	FEN       string `gorm:"type:varchar(100);not null"`
	Status    string `gorm:"type:varchar(16);not null"`
	Winner    string `gorm:"type:varchar(8)"`
	Turn      string `gorm:"type:varchar(8);not null"`
	Plies     int
	Moves     []MoveRecord `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type MoveRecord struct {
	ID       uint   `gorm:"primaryKey"`
	GameID   string `gorm:"type:varchar(36);index:idx_game_ply,unique"`
	Ply      int    `gorm:"index:idx_game_ply,unique"`
	SAN      string `gorm:"type:varchar(16)"`
	UCI      string `gorm:"type:varchar(8)"`
	FENAfter string `gorm:"type:varchar(100)"`
}

type Store struct {
	db *gorm.DB
}

// Open connects to postgres and migrates the archive tables.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&GameRecord{}, &MoveRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveGame upserts the session row and appends any plies not yet archived. Archived plies that
// the new history no longer shares (after a reset or a save that was lost) are replaced.
func (s *Store) SaveGame(ctx context.Context, id, startFEN string, state model.GameState) error {
	rec := NewGameRecord(id, startFEN, state)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing GameRecord
		err := tx.First(&existing, "id = ?", id).Error
		start := 0
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Omit("Moves").Create(&rec).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.Model(&existing).Updates(map[string]interface{}{
				"start_fen": rec.StartFEN,
				"fen":       rec.FEN,
				"status":    rec.Status,
				"winner":    rec.Winner,
				"turn":      rec.Turn,
				"plies":     rec.Plies,
			}).Error; err != nil {
				return err
			}
			var archived []MoveRecord
			if err := tx.Where("game_id = ?", id).Order("ply").Find(&archived).Error; err != nil {
				return err
			}
			start = sharedPlies(existing.StartFEN, archived, rec)
			if start < len(archived) {
				if err := tx.Where("game_id = ? AND ply > ?", id, start).Delete(&MoveRecord{}).Error; err != nil {
					return err
				}
			}
		}

		if start >= len(rec.Moves) {
			return nil
		}
		return tx.Create(rec.Moves[start:]).Error
	})
}

// sharedPlies counts the leading archived moves that rec still plays from the same start
// position. Moves past that point must be rewritten.
func sharedPlies(startFEN string, archived []MoveRecord, rec GameRecord) int {
	if startFEN != rec.StartFEN {
		return 0
	}
	n := 0
	for n < len(archived) && n < len(rec.Moves) {
		if archived[n].Ply != rec.Moves[n].Ply || archived[n].UCI != rec.Moves[n].UCI {
			break
		}
		n++
	}
	return n
}

// LoadGame returns the archived record with its moves ordered by ply.
func (s *Store) LoadGame(ctx context.Context, id string) (GameRecord, error) {
	var rec GameRecord
	err := s.db.WithContext(ctx).
		Preload("Moves", func(db *gorm.DB) *gorm.DB { return db.Order("ply") }).
		First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return GameRecord{}, fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return GameRecord{}, err
	}
	log.WithField("game", id).WithField("plies", rec.Plies).Debug("loaded archived game")
	return rec, nil
}

// NewGameRecord maps a session state to its archive row.
func NewGameRecord(id, startFEN string, state model.GameState) GameRecord {
	rec := GameRecord{
		ID:       id,
		StartFEN: startFEN,
		FEN:      engine.EncodeFEN(state),
		Status:   string(state.Status),
		Turn:     string(state.CurrentTurn),
		Plies:    len(state.Moves),
		Moves:    make([]MoveRecord, 0, len(state.Moves)),
	}
	if state.Winner != nil {
		rec.Winner = string(*state.Winner)
	}
	for i, m := range state.Moves {
		rec.Moves = append(rec.Moves, MoveRecord{
			GameID:   id,
			Ply:      i + 1,
			SAN:      m.Algebraic,
			UCI:      m.Coordinate,
			FENAfter: m.FENAfter,
		})
	}
	return rec
}

// Replay rebuilds the full game state by playing the archived moves from StartFEN.
func (r GameRecord) Replay() (model.GameState, error) {
	state, err := engine.NewGameFromFEN(r.StartFEN)
	if err != nil {
		return model.GameState{}, err
	}
	for _, m := range r.Moves {
		from, to, promotion, err := engine.ParseCoordinate(m.UCI)
		if err != nil {
			return model.GameState{}, fmt.Errorf("ply %d: %w", m.Ply, err)
		}
		if state, err = engine.ApplyMove(state, from, to, promotion); err != nil {
			return model.GameState{}, fmt.Errorf("ply %d: %w", m.Ply, err)
		}
	}
	return state, nil
}

// SAN joins the archived moves in ply order, e.g. "e4 e5 Nf3".
func (r GameRecord) SAN() string {
	parts := make([]string, 0, len(r.Moves))
	for _, m := range r.Moves {
		parts = append(parts, m.SAN)
	}
	return strings.Join(parts, " ")
}
