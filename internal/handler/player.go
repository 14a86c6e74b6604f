package handler

import (
	"fmt"
	"unicode/utf8"

	"github.com/l1jgo/petd/internal/world"
)

const maxNameLen = 15

func HandleName(caller *world.Entity, args string, deps *Deps) {
	if !world.IsClient(caller) {
		return
	}
	if args == "" || utf8.RuneCountInString(args) > maxNameLen {
		deps.World.Print(caller, fmt.Sprintf("usage: name <netname>, at most %d characters", maxNameLen))
		return
	}
	old := caller.Client.NetName
	caller.Client.NetName = args
	deps.World.Broadcast(fmt.Sprintf("%s is now known as %s.", old, args))
}

func HandleTeam(caller *world.Entity, args string, deps *Deps) {
	if args == "" {
		if caller.Team == "" {
			deps.World.Print(caller, "You are not on a team.")
		} else {
			deps.World.Print(caller, fmt.Sprintf("You are on team %s.", caller.Team))
		}
		return
	}
	caller.Team = args
	deps.World.Print(caller, fmt.Sprintf("You joined team %s.", args))
	if !deps.World.Teamplay() {
		deps.World.Print(caller, "Teamplay is off; teams only matter when it is on.")
	}
}
