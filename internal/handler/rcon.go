package handler

import (
	"fmt"

	"github.com/l1jgo/petd/internal/world"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// HandleRcon processes "rcon <password> <status|say text>".
func HandleRcon(caller *world.Entity, args string, deps *Deps) {
	hash := deps.Config.Server.RconPasswordHash
	if hash == "" {
		deps.World.Print(caller, "Remote console is disabled.")
		return
	}
	password, rest := splitWord(args)
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		deps.Log.Warn("bad rcon password", zap.String("who", caller.NetName()))
		deps.World.Print(caller, "Bad rcon password.")
		return
	}

	cmd, text := splitWord(rest)
	switch cmd {
	case "status":
		rconStatus(caller, deps)
	case "say":
		deps.World.Broadcast("console: " + text)
	default:
		deps.World.Print(caller, "rcon commands: status, say <text>")
	}
	deps.Log.Info("rcon", zap.String("who", caller.NetName()), zap.String("cmd", cmd))
}

func rconStatus(caller *world.Entity, deps *Deps) {
	q := deps.Pets.Quotas()
	deps.World.Print(caller, fmt.Sprintf("%d entities in use, quota %d power / %d pets",
		deps.World.Live(), q.Power, q.Count))
	for c := range deps.World.Clients() {
		deps.World.Print(caller, fmt.Sprintf("%3d %-15s hp %3d  pets %d  power %d",
			c.ID.Index(), c.Client.NetName, c.Health, c.Client.PetCount, c.Client.PetPower))
	}
}
