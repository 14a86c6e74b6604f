// Package pet implements player-owned companion monsters on top of the world
// simulation: spawning under quotas, owner-death and riot releases, per-tick
// target selection, behavior flags and the pet camera.
//
// Everything here runs on the game loop goroutine.
package pet

import (
	"iter"
	"math/rand"
	"time"

	"github.com/l1jgo/petd/internal/config"
	"github.com/l1jgo/petd/internal/core/ecs"
	"github.com/l1jgo/petd/internal/core/event"
	"github.com/l1jgo/petd/internal/world"
	"go.uber.org/zap"
)

// Quotas bound what one owner may have alive at once.
type Quotas struct {
	Power int // summed MaxHealth
	Count int
}

// QuotaFunc reports the current quotas. It is consulted on every spawn so
// a rules script can change them at runtime.
type QuotaFunc func() Quotas

// StaticQuotas is the plain config formula: base + scale*mode.
func StaticQuotas(cfg config.PetConfig, mode int) QuotaFunc {
	q := Quotas{
		Power: cfg.PowerQuota + cfg.PowerQuotaModeScale*mode,
		Count: cfg.CountQuota + cfg.CountQuotaModeScale*mode,
	}
	return func() Quotas { return q }
}

// Manager owns no entities; it mutates the world's pets in place.
type Manager struct {
	world   *world.State
	cfg     config.PetConfig
	quotas  QuotaFunc
	release ReleasePolicy
	rng     *rand.Rand
	log     *zap.Logger
}

func NewManager(ws *world.State, cfg config.PetConfig, quotas QuotaFunc, log *zap.Logger) *Manager {
	if quotas == nil {
		quotas = StaticQuotas(cfg, 0)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		world:   ws,
		cfg:     cfg,
		quotas:  quotas,
		release: PolicyFor(cfg.ReleaseAccounting),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		log:     log,
	}
}

// SetRand replaces the random source (tests, replays).
func (m *Manager) SetRand(r *rand.Rand) { m.rng = r }

// Quotas returns the quotas in force right now.
func (m *Manager) Quotas() Quotas { return m.quotas() }

// ownedBy yields the in-use monsters whose owner is owner and whose name
// matches filter (empty filter matches every pet).
func (m *Manager) ownedBy(owner *world.Entity, filter string) iter.Seq[*world.Entity] {
	return m.world.Active(func(e *world.Entity) bool {
		if !world.IsMonster(e) || e.Monster.PetOwner != owner.ID {
			return false
		}
		return filter == "" || e.Monster.Name == filter
	})
}

// debit removes pet from owner's accounting.
func (m *Manager) debit(owner, pet *world.Entity) {
	cl := owner.Client
	cl.PetCount--
	cl.PetPower -= pet.MaxHealth
	if cl.PetCount < 0 {
		cl.PetCount = 0
	}
	if cl.PetPower < 0 {
		cl.PetPower = 0
	}
}

func (m *Manager) petInfo(pet, owner *world.Entity) event.PetInfo {
	info := event.PetInfo{
		Pet:       pet.ID,
		PetName:   pet.Monster.Name,
		ClassName: pet.ClassName,
		Power:     pet.MaxHealth,
	}
	if owner != nil {
		info.Owner = owner.ID
		info.OwnerName = owner.NetName()
	}
	return info
}

func idOf(e *world.Entity) ecs.EntityID {
	if e == nil {
		return 0
	}
	return e.ID
}
