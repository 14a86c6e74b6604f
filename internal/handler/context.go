package handler

import (
	"errors"

	"github.com/l1jgo/petd/internal/config"
	"github.com/l1jgo/petd/internal/data"
	"github.com/l1jgo/petd/internal/pet"
	"github.com/l1jgo/petd/internal/world"
	"go.uber.org/zap"
)

// ErrUnknownCommand is returned by Dispatch for a word nobody registered.
var ErrUnknownCommand = errors.New("unknown command")

// Deps holds shared dependencies injected into all command handlers.
type Deps struct {
	World   *world.State
	Pets    *pet.Manager
	Classes *data.ClassTable // nil = any registered monster class may be summoned
	Config  *config.Config
	Log     *zap.Logger
}

// RegisterAll registers every console command.
func RegisterAll(reg *Registry, deps *Deps) {
	// Pets
	reg.Register("pet", "pet <class> [name]", "summon a pet",
		func(c *world.Entity, args string) { HandlePet(c, args, deps) })
	reg.Register("petlist", "petlist", "list your pets",
		func(c *world.Entity, _ string) { deps.World.Print(c, deps.Pets.List(c)) })
	reg.Register("petriot", "petriot", "set your pets loose, and maybe everyone else's",
		func(c *world.Entity, _ string) { deps.Pets.Riot(c) })
	reg.Register("petstop", "petstop [name]", "pets hold position",
		func(c *world.Entity, args string) { deps.Pets.SetFlag(c, pet.FlagStay, args) })
	reg.Register("petgo", "petgo [name]", "pets may move again",
		func(c *world.Entity, args string) { deps.Pets.ClearFlag(c, pet.FlagStay, args) })
	reg.Register("petfree", "petfree [name]", "pets roam and forget their enemies",
		func(c *world.Entity, args string) {
			deps.Pets.SetFlag(c, pet.FlagFree, args)
			deps.Pets.ClearPetEnemies(c, args)
		})
	reg.Register("petfollow", "petfollow [name]", "pets return to you when idle",
		func(c *world.Entity, args string) { deps.Pets.ClearFlag(c, pet.FlagFree, args) })
	reg.Register("petclear", "petclear [name]", "pets forget their enemies",
		func(c *world.Entity, args string) { deps.Pets.ClearPetEnemies(c, args) })
	reg.Register("petheel", "petheel [name]", "pets ignore enemies and stay with you",
		func(c *world.Entity, args string) { deps.Pets.SetFlag(c, pet.FlagFollow, args) })
	reg.Register("petfight", "petfight [name]", "pets pick enemies again",
		func(c *world.Entity, args string) { deps.Pets.ClearFlag(c, pet.FlagFollow, args) })
	reg.Register("pethunt", "pethunt [name]", "pets choose their own targets",
		func(c *world.Entity, args string) { deps.Pets.SetFlag(c, pet.FlagFreeTarget, args) })
	reg.Register("petassist", "petassist [name]", "pets attack what you attack",
		func(c *world.Entity, args string) { deps.Pets.ClearFlag(c, pet.FlagFreeTarget, args) })

	// Cameras
	reg.Register("petcam", "petcam", "watch the next friendly entity",
		func(c *world.Entity, _ string) { HandlePetCam(c, "", deps) })
	reg.Register("petcamclass", "petcamclass <class>", "watch the next friendly entity of a class",
		func(c *world.Entity, args string) { HandlePetCam(c, args, deps) })
	reg.Register("petcamoff", "petcamoff", "stop watching",
		func(c *world.Entity, _ string) { deps.Pets.CamOff(c) })
	reg.Register("petexchange", "petexchange", "swap places with what you watch",
		func(c *world.Entity, _ string) { HandleExchange(c, deps) })
	reg.Register("chasecam", "chasecam", "follow the next teammate",
		func(c *world.Entity, _ string) { HandleChaseCam(c, deps) })
	reg.Register("nocam", "nocam", "stop following",
		func(c *world.Entity, _ string) { deps.Pets.NoCam(c) })

	// Player
	reg.Register("kill", "kill", "suicide",
		func(c *world.Entity, _ string) { deps.World.Kill(c, c) })
	reg.Register("name", "name <netname>", "change your name",
		func(c *world.Entity, args string) { HandleName(c, args, deps) })
	reg.Register("team", "team [team]", "show or join a team",
		func(c *world.Entity, args string) { HandleTeam(c, args, deps) })
	reg.Register("help", "help", "this list",
		func(c *world.Entity, _ string) {
			for _, line := range reg.Help() {
				deps.World.Print(c, line)
			}
		})

	// Admin
	reg.Register("rcon", "rcon <password> <cmd>", "server administration",
		func(c *world.Entity, args string) { HandleRcon(c, args, deps) })
}
