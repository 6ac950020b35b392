// Package audit records who changed what across the system. Every mutating
// operation writes an entry; recording is best-effort so an audit failure
// never rolls back the business change it describes.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Entry is a single audit record.
type Entry struct {
	ID        uuid.UUID      `json:"id"`
	UserID    *uuid.UUID     `json:"user_id"`
	Action    string         `json:"action"` // create, update, delete, status_change, login, ...
	Entity    string         `json:"entity"` // invoice, payment, patient, ...
	EntityID  *uuid.UUID     `json:"entity_id"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Filter narrows audit log listings.
type Filter struct {
	Entity   string
	EntityID *uuid.UUID
	UserID   *uuid.UUID
	Action   string
}

// Recorder persists and lists audit entries.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, int, error)
}

// BestEffort wraps a Recorder so failures are logged and swallowed. Services
// call it inline after a successful mutation without guarding the error.
type BestEffort struct {
	recorder Recorder
	logger   zerolog.Logger
}

func NewBestEffort(recorder Recorder, logger zerolog.Logger) *BestEffort {
	return &BestEffort{recorder: recorder, logger: logger}
}

// Record writes the entry, logging instead of returning on failure.
func (b *BestEffort) Record(ctx context.Context, entry Entry) {
	if b == nil || b.recorder == nil {
		return
	}
	if err := b.recorder.Record(ctx, entry); err != nil {
		b.logger.Error().
			Err(err).
			Str("entity", entry.Entity).
			Str("action", entry.Action).
			Msg("audit record failed")
	}
}
