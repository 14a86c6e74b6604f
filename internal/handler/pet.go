package handler

import (
	"errors"
	"fmt"

	"github.com/l1jgo/petd/internal/pet"
	"github.com/l1jgo/petd/internal/world"
	"go.uber.org/zap"
)

// HandlePet processes "pet <class> [name]".
func HandlePet(caller *world.Entity, args string, deps *Deps) {
	class, name := splitWord(args)
	if class == "" {
		deps.World.Print(caller, "usage: pet <class> [name]")
		return
	}
	if deps.Classes != nil && !deps.Classes.Summonable(class) {
		deps.World.Print(caller, fmt.Sprintf("%s is not something you can summon.", class))
		return
	}

	if _, err := deps.Pets.Spawn(caller, class, name); err != nil {
		deps.Log.Debug("pet spawn refused",
			zap.String("owner", caller.NetName()),
			zap.String("class", class),
			zap.Error(err),
		)
		if deps.Config.Pet.AnnounceFailures {
			deps.World.Print(caller, spawnFailureText(err))
		}
	}
}

func spawnFailureText(err error) string {
	switch {
	case errors.Is(err, pet.ErrOwnerInvalid):
		return "You cannot summon right now."
	case errors.Is(err, pet.ErrPowerQuota):
		return "Your pets are too strong already."
	case errors.Is(err, pet.ErrCountQuota):
		return "You have too many pets."
	case errors.Is(err, pet.ErrPlacement):
		return "There is no room for a pet there."
	case errors.Is(err, pet.ErrPoolExhausted):
		return "The level is full."
	default:
		return "Nothing answers your call."
	}
}
