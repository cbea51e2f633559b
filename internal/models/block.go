package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Block is one embedded collection centre block. CentreID is the persisted
// selection; "" means nothing has been picked yet.
type Block struct {
	bun.BaseModel `bun:"table:centre_blocks,alias:cb"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	CentreID  string    `bun:"centre_id,notnull,default:''" json:"centreId"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// BlockSelectionRequest is the body of a create or update call. centreId may
// arrive as a string or a number.
type BlockSelectionRequest struct {
	CentreID any `json:"centreId"`
}
