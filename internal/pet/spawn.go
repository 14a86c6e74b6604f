package pet

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/petd/internal/core/ecs"
	"github.com/l1jgo/petd/internal/core/event"
	"github.com/l1jgo/petd/internal/world"
	"go.uber.org/zap"
)

var (
	ErrOwnerInvalid  = errors.New("owner cannot summon right now")
	ErrPowerQuota    = errors.New("pet power quota reached")
	ErrCountQuota    = errors.New("pet count quota reached")
	ErrPoolExhausted = errors.New("entity table full")
	ErrUnknownClass  = errors.New("not a summonable monster class")
	ErrPlacement     = errors.New("no room to place pet")
)

// canSummon: a connected, living client with a physical body.
func canSummon(owner *world.Entity) bool {
	return world.IsClient(owner) && owner.InUse &&
		owner.Health > 0 && owner.SvFlags&world.SvNoClient == 0
}

// Spawn creates a pet of className in front of owner. Any failure leaves the
// entity table and the owner's accounting exactly as they were.
func (m *Manager) Spawn(owner *world.Entity, className, name string) (ecs.EntityID, error) {
	if !canSummon(owner) {
		return 0, ErrOwnerInvalid
	}
	q := m.quotas()
	cl := owner.Client
	if cl.PetPower >= q.Power {
		return 0, ErrPowerQuota
	}
	if cl.PetCount >= q.Count {
		return 0, ErrCountQuota
	}

	pet := m.world.Spawn()
	if pet == nil {
		return 0, ErrPoolExhausted
	}
	pet.ClassName = className
	pet.Monster = &world.MonsterInfo{PetOwner: owner.ID, Name: name}

	forward, right, _ := world.AngleVectors(cl.VAngle)
	offset := mgl64.Vec3{40, 40, owner.ViewHeight - 8}
	pet.Origin = world.ProjectSource(owner.Origin, offset, forward, right)
	pet.Angles = owner.Angles

	if err := m.world.CallSpawn(pet); err != nil {
		m.world.Discard(pet)
		return 0, fmt.Errorf("%w: %w", ErrUnknownClass, err)
	}
	if !world.IsMonster(pet) {
		m.world.Discard(pet)
		return 0, fmt.Errorf("%w: %q", ErrUnknownClass, className)
	}

	// test the spot with the pet itself out of the way
	m.world.Unlink(pet)
	tr := m.world.TraceBox(pet.Origin, pet.Origin, pet.Mins, pet.Maxs, pet.ID, world.MaskPlayerSolid)
	if tr.StartSolid || tr.Fraction < 1 {
		m.world.Discard(pet)
		return 0, ErrPlacement
	}
	if cl.PetPower+pet.MaxHealth > q.Power {
		m.world.Discard(pet)
		return 0, ErrPowerQuota
	}
	m.world.Link(pet)

	if className == m.cfg.DecoyClass {
		pet.Model = owner.Model
		pet.SkinNum = owner.SkinNum
		pet.ModelIndex = owner.ModelIndex
		pet.ModelIndex2 = owner.ModelIndex
	}

	cl.PetCount++
	cl.PetPower += pet.MaxHealth

	event.Emit(m.world.Bus(), event.PetSpawned{PetInfo: m.petInfo(pet, owner)})
	m.log.Debug("pet spawned",
		zap.String("owner", cl.NetName),
		zap.String("class", className),
		zap.String("name", name),
		zap.Int("power", cl.PetPower),
		zap.Int("count", cl.PetCount),
	)
	return pet.ID, nil
}
