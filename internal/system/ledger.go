package system

import (
	"context"
	"time"

	"github.com/l1jgo/petd/internal/core/event"
	coresys "github.com/l1jgo/petd/internal/core/system"
	"github.com/l1jgo/petd/internal/persist"
	"go.uber.org/zap"
)

// ledgerBacklog caps entries kept while the database is unreachable.
const ledgerBacklog = 4096

// LedgerSystem records pet lifecycle events and writes them to the ledger
// every interval ticks. Phase 5 (Persist).
type LedgerSystem struct {
	writer    persist.LedgerWriter
	buf       *persist.LedgerBuffer
	log       *zap.Logger
	tickCount int
	interval  int
}

func NewLedgerSystem(bus *event.Bus, writer persist.LedgerWriter, intervalTicks int, log *zap.Logger) *LedgerSystem {
	if intervalTicks <= 0 {
		intervalTicks = 1
	}
	s := &LedgerSystem{
		writer:   writer,
		buf:      persist.NewLedgerBuffer(ledgerBacklog),
		log:      log,
		interval: intervalTicks,
	}
	event.Subscribe(bus, func(ev event.PetSpawned) {
		s.add(persist.LedgerSpawned, ev.PetInfo, "")
	})
	event.Subscribe(bus, func(ev event.PetVanished) {
		s.add(persist.LedgerVanished, ev.PetInfo, "")
	})
	event.Subscribe(bus, func(ev event.PetReleased) {
		s.add(persist.LedgerReleased, ev.PetInfo, ev.Reason)
	})
	event.Subscribe(bus, func(ev event.RiotStarted) {
		s.buf.Add(persist.NewLedgerEntry(persist.LedgerRiot, ev.OwnerName, "", "", ev.Released, ""))
	})
	return s
}

func (s *LedgerSystem) add(kind string, info event.PetInfo, reason string) {
	s.buf.Add(persist.NewLedgerEntry(kind, info.OwnerName, info.PetName, info.ClassName, info.Power, reason))
}

func (s *LedgerSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *LedgerSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Flush()
}

// Pending reports how many entries wait for the next flush.
func (s *LedgerSystem) Pending() int { return s.buf.Len() }

// Flush writes everything pending now. Called on shutdown as well.
func (s *LedgerSystem) Flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := s.buf.Flush(ctx, s.writer)
	if err != nil {
		s.log.Warn("ledger flush failed", zap.Int("pending", s.buf.Len()), zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Debug("ledger flushed", zap.Int("entries", n))
	}
}
