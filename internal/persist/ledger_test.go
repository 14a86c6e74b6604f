package persist

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/l1jgo/petd/internal/config"
)

type memWriter struct {
	rows []LedgerEntry
	err  error
}

func (w *memWriter) WriteLedger(_ context.Context, entries []LedgerEntry) error {
	if w.err != nil {
		return w.err
	}
	w.rows = append(w.rows, entries...)
	return nil
}

func TestLedgerBufferFlush(t *testing.T) {
	b := NewLedgerBuffer(0)
	b.Add(NewLedgerEntry(LedgerSpawned, "alice", "rex", "soldier", 20, ""))
	b.Add(NewLedgerEntry(LedgerReleased, "alice", "rex", "soldier", 20, "riot"))

	w := &memWriter{err: errors.New("db down")}
	if _, err := b.Flush(context.Background(), w); err == nil {
		t.Fatalf("expected flush error")
	}
	if b.Len() != 2 {
		t.Fatalf("failed flush dropped entries: %d left", b.Len())
	}

	w.err = nil
	n, err := b.Flush(context.Background(), w)
	if err != nil || n != 2 {
		t.Fatalf("flush = %d, %v", n, err)
	}
	if b.Len() != 0 || len(w.rows) != 2 {
		t.Fatalf("after flush: pending=%d written=%d", b.Len(), len(w.rows))
	}
	if w.rows[0].ID == w.rows[1].ID {
		t.Fatalf("entries share an ID")
	}
}

func TestLedgerBufferLimit(t *testing.T) {
	b := NewLedgerBuffer(2)
	for _, name := range []string{"a", "b", "c"} {
		b.Add(NewLedgerEntry(LedgerSpawned, name, "", "soldier", 20, ""))
	}
	w := &memWriter{}
	b.Flush(context.Background(), w)
	if len(w.rows) != 2 || w.rows[0].OwnerName != "b" {
		t.Fatalf("oldest entry should be dropped, got %+v", w.rows)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil || len(names) == 0 {
		t.Fatalf("no embedded migrations: %v", err)
	}
	src, err := fs.ReadFile(migrations, names[0])
	if err != nil {
		t.Fatal(err)
	}
	for _, marker := range []string{"-- +goose Up", "-- +goose Down", "pet_ledger"} {
		if !strings.Contains(string(src), marker) {
			t.Fatalf("%s missing %q", names[0], marker)
		}
	}
}

func TestMigrationFSRooted(t *testing.T) {
	fsys, err := migrationFS()
	if err != nil {
		t.Fatalf("migrationFS: %v", err)
	}
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil || len(names) == 0 || names[0] != "00001_pet_ledger.sql" {
		t.Fatalf("migrations at root = %v (%v)", names, err)
	}
}

func TestPoolConfig(t *testing.T) {
	pc, err := poolConfig(config.DatabaseConfig{
		DSN:             "postgres://petd@localhost:5432/petd",
		MaxOpenConns:    3,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		t.Fatalf("poolConfig: %v", err)
	}
	if pc.MaxConns != 3 || pc.MinConns != 1 || pc.MaxConnLifetime != time.Minute {
		t.Fatalf("pool sizing = %d/%d/%v", pc.MaxConns, pc.MinConns, pc.MaxConnLifetime)
	}
	if got := pc.ConnConfig.RuntimeParams["application_name"]; got != applicationName {
		t.Fatalf("application_name = %q", got)
	}

	pc, err = poolConfig(config.DatabaseConfig{DSN: "postgres://petd@localhost/petd?application_name=ops"})
	if err != nil {
		t.Fatalf("poolConfig: %v", err)
	}
	if got := pc.ConnConfig.RuntimeParams["application_name"]; got != "ops" {
		t.Fatalf("explicit application_name overridden: %q", got)
	}

	if _, err := poolConfig(config.DatabaseConfig{DSN: "postgres://%zz"}); err == nil {
		t.Fatalf("malformed dsn accepted")
	}
}
