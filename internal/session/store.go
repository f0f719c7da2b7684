package session

import (
	"context"
	"time"
)

// Record is the persisted form of a live board session: the UCI move list is
// enough to replay the authoritative position. Advisory text and selection
// state are deliberately not stored; both are position-bound transients.
type Record struct {
	Moves     []string  `json:"moves"`
	Muted     bool      `json:"muted"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store keeps live sessions under a TTL so a reconnecting client can
// reattach mid-game. Load returns (nil, nil) for an unknown id.
type Store interface {
	Save(ctx context.Context, id string, rec *Record, ttl time.Duration) error
	Load(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error
}
