package event

import "github.com/l1jgo/petd/internal/core/ecs"

// EntityKilled is emitted by the simulation when an entity's health drops to
// zero. Inflictor may be zero (world damage, suicide without attacker).
type EntityKilled struct {
	Target    ecs.EntityID
	Inflictor ecs.EntityID
}

// PetInfo is the common payload of pet lifecycle events. Names are copied at
// emit time because the entity may be freed before the event is read.
type PetInfo struct {
	Pet       ecs.EntityID
	Owner     ecs.EntityID
	OwnerName string
	PetName   string
	ClassName string
	Power     int
}

type PetSpawned struct{ PetInfo }

// PetVanished: the pet was freed because its owner died.
type PetVanished struct{ PetInfo }

// PetReleased: the pet lost its owner and became a wild monster.
type PetReleased struct {
	PetInfo
	Reason string // "owner_killed", "riot", "killed"
}

type RiotStarted struct {
	Owner     ecs.EntityID
	OwnerName string
	Released  int
}
