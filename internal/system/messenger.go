package system

import (
	"strings"

	"github.com/l1jgo/petd/internal/core/ecs"
	"github.com/l1jgo/petd/internal/net"
	"github.com/l1jgo/petd/internal/world"
)

// SessionMessenger routes world text to console sessions. Lines are only
// buffered here; OutputSystem flushes them at the end of the tick.
type SessionMessenger struct {
	store    *net.SessionStore
	byClient map[ecs.EntityID]*net.Session
}

func NewSessionMessenger(store *net.SessionStore) *SessionMessenger {
	return &SessionMessenger{
		store:    store,
		byClient: make(map[ecs.EntityID]*net.Session),
	}
}

// Bind attaches a client entity to the session that controls it.
func (m *SessionMessenger) Bind(client ecs.EntityID, sess *net.Session) {
	m.byClient[client] = sess
}

func (m *SessionMessenger) Unbind(client ecs.EntityID) {
	delete(m.byClient, client)
}

// Session returns the session bound to client, or nil.
func (m *SessionMessenger) Session(client ecs.EntityID) *net.Session {
	return m.byClient[client]
}

func (m *SessionMessenger) Print(to *world.Entity, text string) {
	if to == nil {
		return
	}
	sess := m.byClient[to.ID]
	if sess == nil {
		return
	}
	sendLines(sess, text)
}

// Broadcast reaches every session that has entered the game.
func (m *SessionMessenger) Broadcast(text string) {
	for _, sess := range m.store.Sorted() {
		if sess.Client.IsZero() {
			continue
		}
		sendLines(sess, text)
	}
}

func sendLines(sess *net.Session, text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		sess.Send(line)
	}
}
