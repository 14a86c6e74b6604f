package handler

import (
	"fmt"

	"github.com/l1jgo/petd/internal/world"
)

// HandlePetCam cycles the caller's pet camera, optionally within one class.
func HandlePetCam(caller *world.Entity, class string, deps *Deps) {
	id := deps.Pets.CycleCam(caller, class)
	if target := deps.World.Get(id); target != nil {
		deps.World.Print(caller, fmt.Sprintf("Watching %s.", target.NetName()))
		return
	}
	deps.World.Print(caller, "Camera off.")
}

func HandleExchange(caller *world.Entity, deps *Deps) {
	if !deps.Pets.Exchange(caller) {
		deps.World.Print(caller, "You are not watching anything.")
	}
}

func HandleChaseCam(caller *world.Entity, deps *Deps) {
	id := deps.Pets.ChaseCam(caller)
	if target := deps.World.Get(id); target != nil {
		deps.World.Print(caller, fmt.Sprintf("Chasing %s.", target.NetName()))
		return
	}
	deps.World.Print(caller, "No one to chase.")
}
