package system

import (
	"errors"
	"fmt"
	"time"

	coresys "github.com/l1jgo/petd/internal/core/system"
	"github.com/l1jgo/petd/internal/handler"
	"github.com/l1jgo/petd/internal/net"
	"github.com/l1jgo/petd/internal/pet"
	"github.com/l1jgo/petd/internal/world"
	"go.uber.org/zap"
)

// Listener is the part of net.Server the input system drives.
type Listener interface {
	NewSessions() <-chan *net.Session
	DeadSessions() <-chan uint64
	NotifyDead(sessionID uint64)
}

// InputSystem admits new sessions as players, tears down closed ones and
// runs queued console lines through the command registry. Phase 0 (Input).
type InputSystem struct {
	listener   Listener
	registry   *handler.Registry
	store      *net.SessionStore
	msg        *SessionMessenger
	world      *world.State
	pets       *pet.Manager
	maxPerTick int
	serverName string
	log        *zap.Logger
}

func NewInputSystem(
	listener Listener,
	registry *handler.Registry,
	store *net.SessionStore,
	msg *SessionMessenger,
	ws *world.State,
	pets *pet.Manager,
	maxPerTick int,
	serverName string,
	log *zap.Logger,
) *InputSystem {
	if maxPerTick <= 0 {
		maxPerTick = 1
	}
	return &InputSystem{
		listener:   listener,
		registry:   registry,
		store:      store,
		msg:        msg,
		world:      ws,
		pets:       pets,
		maxPerTick: maxPerTick,
		serverName: serverName,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	// Accept new sessions
	for {
		select {
		case sess := <-s.listener.NewSessions():
			s.connect(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	// Process dead sessions
	for {
		select {
		case id := <-s.listener.DeadSessions():
			s.store.Remove(id)
		default:
			goto doneDead
		}
	}
doneDead:

	for _, sess := range s.store.Sorted() {
		if sess.IsClosed() {
			s.disconnect(sess)
			s.listener.NotifyDead(sess.ID)
			s.store.Remove(sess.ID)
			continue
		}
		s.drain(sess)
	}
}

// drain runs at most maxPerTick lines so one chatty client cannot stall
// the tick.
func (s *InputSystem) drain(sess *net.Session) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case line := <-sess.InQueue:
			s.dispatch(sess, line)
		default:
			return
		}
	}
}

func (s *InputSystem) dispatch(sess *net.Session, line string) {
	cl := s.world.Get(sess.Client)
	if cl == nil {
		return
	}
	err := s.registry.Dispatch(cl, line)
	switch {
	case err == nil:
	case errors.Is(err, handler.ErrUnknownCommand):
		sess.Send("Unknown command. Type help for a list.")
	default:
		s.log.Debug("command failed",
			zap.Uint64("session", sess.ID),
			zap.Error(err),
		)
	}
}

// connect gives a fresh session a player body. A full server refuses the
// connection; the closed session is reaped on the next tick.
func (s *InputSystem) connect(sess *net.Session) {
	s.store.Add(sess)

	cl := s.world.SpawnClient(fmt.Sprintf("player%d", sess.ID))
	if cl == nil {
		s.log.Warn("no free client slot, refusing session", zap.Uint64("session", sess.ID))
		sess.Send("Server is full.")
		sess.FlushOutput()
		sess.Close()
		return
	}
	sess.Client = cl.ID
	s.msg.Bind(cl.ID, sess)

	s.world.Print(cl, fmt.Sprintf("Welcome to %s. Type help for commands.", s.serverName))
	s.world.Broadcast(cl.NetName() + " entered the game.")
	s.log.Info("player entered",
		zap.Uint64("session", sess.ID),
		zap.String("name", cl.NetName()),
		zap.String("ip", sess.IP),
	)
}

// disconnect removes the player. A departing owner loses its pets exactly
// as if killed, and every camera pointing at the body lets go before the
// slot is freed.
func (s *InputSystem) disconnect(sess *net.Session) {
	s.msg.Unbind(sess.Client)
	cl := s.world.Get(sess.Client)
	if cl == nil {
		return
	}
	s.pets.OnOwnerKilled(cl, nil)
	s.pets.CamOff(cl)
	s.pets.NoCam(cl)

	name := cl.NetName()
	s.world.Free(cl)
	sess.Client = 0

	s.world.Broadcast(name + " left the game.")
	s.log.Info("player left",
		zap.Uint64("session", sess.ID),
		zap.String("name", name),
	)
}
