package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Ledger entry kinds.
const (
	LedgerSpawned  = "spawned"
	LedgerVanished = "vanished"
	LedgerReleased = "released"
	LedgerRiot     = "riot"
)

// LedgerEntry is one row of the pet audit trail.
type LedgerEntry struct {
	ID        uuid.UUID
	Kind      string
	OwnerName string
	PetName   string
	ClassName string
	Power     int
	Reason    string
	At        time.Time
}

// NewLedgerEntry stamps a fresh entry with an ID and the current time.
func NewLedgerEntry(kind, owner, pet, class string, power int, reason string) LedgerEntry {
	return LedgerEntry{
		ID:        uuid.New(),
		Kind:      kind,
		OwnerName: owner,
		PetName:   pet,
		ClassName: class,
		Power:     power,
		Reason:    reason,
		At:        time.Now(),
	}
}

// LedgerWriter persists ledger batches. LedgerRepo is the Postgres one.
type LedgerWriter interface {
	WriteLedger(ctx context.Context, entries []LedgerEntry) error
}

type LedgerRepo struct {
	db *DB
}

func NewLedgerRepo(db *DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// WriteLedger writes a batch in a single transaction; either every entry
// lands or none does.
func (r *LedgerRepo) WriteLedger(ctx context.Context, entries []LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ledger begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO pet_ledger (id, kind, owner_name, pet_name, class_name, power, reason, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			e.ID, e.Kind, e.OwnerName, e.PetName, e.ClassName, e.Power, e.Reason, e.At,
		); err != nil {
			return fmt.Errorf("ledger insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// LedgerBuffer accumulates entries between flushes. Not safe for
// concurrent use; it lives on the game loop.
type LedgerBuffer struct {
	pending []LedgerEntry
	limit   int
}

// NewLedgerBuffer keeps at most limit unflushed entries; older ones are
// dropped first when a flush keeps failing. limit <= 0 means unbounded.
func NewLedgerBuffer(limit int) *LedgerBuffer {
	return &LedgerBuffer{limit: limit}
}

func (b *LedgerBuffer) Add(e LedgerEntry) {
	b.pending = append(b.pending, e)
	if b.limit > 0 && len(b.pending) > b.limit {
		b.pending = b.pending[len(b.pending)-b.limit:]
	}
}

func (b *LedgerBuffer) Len() int { return len(b.pending) }

// Flush hands everything pending to w. On error the entries stay queued for
// the next attempt.
func (b *LedgerBuffer) Flush(ctx context.Context, w LedgerWriter) (int, error) {
	if len(b.pending) == 0 {
		return 0, nil
	}
	if err := w.WriteLedger(ctx, b.pending); err != nil {
		return 0, err
	}
	n := len(b.pending)
	b.pending = b.pending[:0]
	return n, nil
}
