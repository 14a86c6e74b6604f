package world

import "github.com/l1jgo/petd/internal/core/ecs"

// Messenger delivers text to players.
type Messenger interface {
	Broadcast(text string)
	Print(to *Entity, text string)
}

type discard struct{}

func (discard) Broadcast(string)        {}
func (discard) Print(*Entity, string) {}

// Broadcast sends text to every connected player.
func (s *State) Broadcast(text string) { s.msg.Broadcast(text) }

// Print sends text to one player.
func (s *State) Print(to *Entity, text string) { s.msg.Print(to, text) }

// MessageLog is an in-memory Messenger, handy for tools and tests.
type MessageLog struct {
	Broadcasts []string
	Private    map[ecs.EntityID][]string
}

func NewMessageLog() *MessageLog {
	return &MessageLog{Private: make(map[ecs.EntityID][]string)}
}

func (l *MessageLog) Broadcast(text string) {
	l.Broadcasts = append(l.Broadcasts, text)
}

func (l *MessageLog) Print(to *Entity, text string) {
	if to == nil {
		return
	}
	l.Private[to.ID] = append(l.Private[to.ID], text)
}
