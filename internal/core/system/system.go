package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput   Phase = iota // 0: drain console lines, run commands
	PhaseEvents               // 1: deliver last tick's kill/lifecycle events
	PhaseThink                // 2: pet targeting
	PhaseCamera               // 3: spectator upkeep
	PhaseOutput               // 4: flush text to sessions
	PhasePersist              // 5: ledger flush
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseEvents:
		return "events"
	case PhaseThink:
		return "think"
	case PhaseCamera:
		return "camera"
	case PhaseOutput:
		return "output"
	case PhasePersist:
		return "persist"
	}
	return "unknown"
}

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
