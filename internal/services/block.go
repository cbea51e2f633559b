package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"centre-block/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrBlockNotFound is returned when no block has the requested id.
var ErrBlockNotFound = errors.New("block not found")

// BlockStore persists block selections.
type BlockStore interface {
	CreateBlock(ctx context.Context, centreID string) (*models.Block, error)
	GetBlock(ctx context.Context, id uuid.UUID) (*models.Block, error)
	SetSelection(ctx context.Context, id uuid.UUID, centreID string) (*models.Block, error)
}

type BlockService struct {
	db *bun.DB
}

func NewBlockService(db *bun.DB) *BlockService {
	return &BlockService{db: db}
}

// CreateBlock inserts a block with an optional initial selection.
func (s *BlockService) CreateBlock(ctx context.Context, centreID string) (*models.Block, error) {
	now := time.Now().UTC()
	block := &models.Block{
		ID:        uuid.New(),
		CentreID:  centreID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.db.NewInsert().Model(block).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert block: %w", err)
	}
	return block, nil
}

// GetBlock loads one block by id.
func (s *BlockService) GetBlock(ctx context.Context, id uuid.UUID) (*models.Block, error) {
	block := new(models.Block)
	err := s.db.NewSelect().Model(block).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBlockNotFound
		}
		return nil, fmt.Errorf("select block: %w", err)
	}
	return block, nil
}

// SetSelection replaces the chosen centre id; "" clears it.
func (s *BlockService) SetSelection(ctx context.Context, id uuid.UUID, centreID string) (*models.Block, error) {
	block := new(models.Block)
	err := s.db.NewUpdate().
		Model(block).
		Set("centre_id = ?", centreID).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Returning("*").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBlockNotFound
		}
		return nil, fmt.Errorf("update block: %w", err)
	}
	return block, nil
}
