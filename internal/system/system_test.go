package system

import (
	"context"
	"errors"
	stdnet "net"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/l1jgo/petd/internal/config"
	"github.com/l1jgo/petd/internal/core/event"
	"github.com/l1jgo/petd/internal/handler"
	"github.com/l1jgo/petd/internal/net"
	"github.com/l1jgo/petd/internal/persist"
	"github.com/l1jgo/petd/internal/pet"
	"github.com/l1jgo/petd/internal/world"
	"go.uber.org/zap/zaptest"
)

type fakeListener struct {
	newCh  chan *net.Session
	deadCh chan uint64
	dead   []uint64
}

func newFakeListener() *fakeListener {
	return &fakeListener{
		newCh:  make(chan *net.Session, 8),
		deadCh: make(chan uint64, 8),
	}
}

func (l *fakeListener) NewSessions() <-chan *net.Session { return l.newCh }
func (l *fakeListener) DeadSessions() <-chan uint64      { return l.deadCh }
func (l *fakeListener) NotifyDead(id uint64)             { l.dead = append(l.dead, id) }

type server struct {
	t        *testing.T
	cfg      *config.Config
	world    *world.State
	bus      *event.Bus
	pets     *pet.Manager
	store    *net.SessionStore
	msg      *SessionMessenger
	listener *fakeListener
	input    *InputSystem
	output   *OutputSystem
	events   *EventDispatchSystem
}

func newServer(t *testing.T, maxClients int, tweak func(*config.Config)) *server {
	t.Helper()
	cfg := config.Defaults()
	if tweak != nil {
		tweak(cfg)
	}
	log := zaptest.NewLogger(t)
	bus := event.NewBus()
	store := net.NewSessionStore()
	msg := NewSessionMessenger(store)
	ws := world.NewState(world.Options{
		MaxEntities: 32,
		MaxClients:  maxClients,
		Messenger:   msg,
		Bus:         bus,
	})
	ws.RegisterClass(world.ClassTemplate{
		Name:       "soldier",
		Monster:    true,
		Health:     20,
		Mins:       mgl64.Vec3{-16, -16, -24},
		Maxs:       mgl64.Vec3{16, 16, 32},
		ViewHeight: 25,
	})
	pets := pet.NewManager(ws, cfg.Pet, pet.StaticQuotas(cfg.Pet, 0), log)

	reg := handler.NewRegistry(log)
	handler.RegisterAll(reg, &handler.Deps{World: ws, Pets: pets, Config: cfg, Log: log})

	l := newFakeListener()
	return &server{
		t:        t,
		cfg:      cfg,
		world:    ws,
		bus:      bus,
		pets:     pets,
		store:    store,
		msg:      msg,
		listener: l,
		input:    NewInputSystem(l, reg, store, msg, ws, pets, 4, "testd", log),
		output:   NewOutputSystem(store),
		events:   NewEventDispatchSystem(bus, ws, pets, log),
	}
}

// connect hands a pipe-backed session to the input system. The session's
// goroutines are never started; tests feed InQueue and read OutQueue
// directly.
func (s *server) connect(id uint64) *net.Session {
	s.t.Helper()
	srv, cli := stdnet.Pipe()
	s.t.Cleanup(func() { cli.Close() })
	codec, err := net.NewLineCodec("utf-8")
	if err != nil {
		s.t.Fatalf("NewLineCodec: %v", err)
	}
	sess := net.NewSession(srv, id, codec, net.SessionOptions{
		InQueueSize:  8,
		OutQueueSize: 64,
		MaxLineLen:   256,
	}, zaptest.NewLogger(s.t))
	s.listener.newCh <- sess
	return sess
}

func (s *server) tick() {
	s.input.Update(100 * time.Millisecond)
	s.events.Update(100 * time.Millisecond)
	s.output.Update(100 * time.Millisecond)
}

func drainOut(sess *net.Session) []string {
	var out []string
	for {
		select {
		case b := <-sess.OutQueue:
			out = append(out, string(b))
		default:
			return out
		}
	}
}

func containsLine(lines []string, sub string) bool {
	for _, l := range lines {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

func TestInputAdmitsSessionAsPlayer(t *testing.T) {
	s := newServer(t, 4, nil)
	sess := s.connect(1)
	s.tick()

	cl := s.world.Get(sess.Client)
	if cl == nil || cl.NetName() != "player1" {
		t.Fatalf("session not bound to a player: %+v", cl)
	}
	out := drainOut(sess)
	if !containsLine(out, "Welcome to testd") || !containsLine(out, "player1 entered the game.") {
		t.Fatalf("greeting missing: %q", out)
	}
}

func TestInputDispatchesLines(t *testing.T) {
	s := newServer(t, 4, nil)
	sess := s.connect(1)
	s.tick()
	drainOut(sess)

	sess.InQueue <- "pet soldier rex"
	sess.InQueue <- "PETLIST"
	sess.InQueue <- "dance"
	s.tick()

	out := drainOut(sess)
	if !containsLine(out, "rex") {
		t.Fatalf("petlist output missing pet: %q", out)
	}
	if !containsLine(out, "Unknown command") {
		t.Fatalf("unknown command not reported: %q", out)
	}
	if cl := s.world.Get(sess.Client); cl.Client.PetCount != 1 {
		t.Fatalf("pet count = %d, want 1", cl.Client.PetCount)
	}
}

func TestInputLimitsLinesPerTick(t *testing.T) {
	s := newServer(t, 4, nil)
	sess := s.connect(1)
	s.tick()

	for i := 0; i < 6; i++ {
		sess.InQueue <- "petlist"
	}
	s.tick()
	if n := len(sess.InQueue); n != 2 {
		t.Fatalf("queued after one tick = %d, want 2", n)
	}
}

func TestInputDisconnectReleasesPets(t *testing.T) {
	s := newServer(t, 4, func(c *config.Config) { c.Pet.VanishProbability = 0 })
	alice := s.connect(1)
	bob := s.connect(2)
	s.tick()

	alice.InQueue <- "pet soldier rex"
	bob.InQueue <- "petcam"
	s.tick()
	drainOut(bob)

	aliceID := alice.Client
	var rex *world.Entity
	for e := range s.world.Active(world.IsPet) {
		rex = e
	}
	if rex == nil {
		t.Fatalf("pet was not spawned")
	}
	rexID := rex.ID
	bobEnt := s.world.Get(bob.Client)
	bobEnt.Client.PetCam = aliceID

	alice.Close()
	s.tick()

	if s.world.Get(aliceID) != nil {
		t.Fatalf("player entity survived disconnect")
	}
	if s.store.Count() != 1 || len(s.listener.dead) != 1 || s.listener.dead[0] != 1 {
		t.Fatalf("session not reaped: count=%d dead=%v", s.store.Count(), s.listener.dead)
	}
	rex = s.world.Get(rexID)
	if rex == nil || rex.Monster.PetOwner != 0 {
		t.Fatalf("pet should stay behind as a wild monster: %+v", rex)
	}
	if bobEnt.Client.PetCam != 0 {
		t.Fatalf("watcher still attached to departed player")
	}
	if !containsLine(drainOut(bob), "player1 left the game.") {
		t.Fatalf("departure not broadcast")
	}
}

func TestInputRefusesWhenFull(t *testing.T) {
	s := newServer(t, 1, nil)
	first := s.connect(1)
	second := s.connect(2)
	s.input.Update(0)

	if first.Client.IsZero() {
		t.Fatalf("first session should have a player")
	}
	if !second.IsClosed() || !second.Client.IsZero() {
		t.Fatalf("second session should be refused")
	}
	if !containsLine(drainOut(second), "Server is full.") {
		t.Fatalf("refusal not sent")
	}

	s.input.Update(0)
	if s.store.Count() != 1 {
		t.Fatalf("refused session not reaped, count=%d", s.store.Count())
	}
}

func TestMessengerBroadcastSkipsUnboundSessions(t *testing.T) {
	store := net.NewSessionStore()
	m := NewSessionMessenger(store)

	srv, cli := stdnet.Pipe()
	defer cli.Close()
	codec, _ := net.NewLineCodec("utf-8")
	sess := net.NewSession(srv, 7, codec, net.SessionOptions{OutQueueSize: 8}, zaptest.NewLogger(t))
	store.Add(sess)

	m.Broadcast("nobody hears this")
	sess.FlushOutput()
	if out := drainOut(sess); len(out) != 0 {
		t.Fatalf("unbound session got %q", out)
	}

	ws := world.NewState(world.Options{MaxEntities: 8, MaxClients: 2, Messenger: m})
	cl := ws.SpawnClient("carol")
	sess.Client = cl.ID
	m.Bind(cl.ID, sess)

	ws.Print(cl, "one\ntwo\n")
	ws.Broadcast("three")
	sess.FlushOutput()
	out := drainOut(sess)
	if len(out) != 3 || out[0] != "one" || out[1] != "two" || out[2] != "three" {
		t.Fatalf("lines = %q", out)
	}
}

func TestEventDispatchRespawnsKilledPlayer(t *testing.T) {
	s := newServer(t, 4, func(c *config.Config) { c.Pet.VanishProbability = 1 })
	sess := s.connect(1)
	s.tick()

	sess.InQueue <- "pet soldier rex"
	s.tick()
	sess.InQueue <- "kill"
	s.tick()

	cl := s.world.Get(sess.Client)
	if cl.Health != world.ClientHealth {
		t.Fatalf("player not respawned, health=%d", cl.Health)
	}
	if cl.Client.PetCount != 0 || cl.Client.PetPower != 0 {
		t.Fatalf("accounting not reset: %d/%d", cl.Client.PetCount, cl.Client.PetPower)
	}
	for range s.world.Active(world.IsMonster) {
		t.Fatalf("pet should have vanished with its owner")
	}
	if !containsLine(drainOut(sess), "player1 died.") {
		t.Fatalf("death not announced")
	}
}

func TestPetThinkAdvancesClock(t *testing.T) {
	s := newServer(t, 4, nil)
	think := NewPetThinkSystem(s.world, s.pets)
	think.Update(250 * time.Millisecond)
	think.Update(250 * time.Millisecond)
	if got := s.world.Time(); got < 0.499 || got > 0.501 {
		t.Fatalf("clock = %v, want 0.5", got)
	}
}

type recordingWriter struct {
	batches [][]persist.LedgerEntry
	err     error
}

func (w *recordingWriter) WriteLedger(_ context.Context, entries []persist.LedgerEntry) error {
	if w.err != nil {
		return w.err
	}
	w.batches = append(w.batches, append([]persist.LedgerEntry(nil), entries...))
	return nil
}

func TestLedgerSystemFlushesOnInterval(t *testing.T) {
	bus := event.NewBus()
	w := &recordingWriter{}
	ls := NewLedgerSystem(bus, w, 2, zaptest.NewLogger(t))

	event.Emit(bus, event.PetSpawned{PetInfo: event.PetInfo{OwnerName: "alice", PetName: "rex", ClassName: "soldier", Power: 20}})
	event.Emit(bus, event.PetReleased{PetInfo: event.PetInfo{OwnerName: "alice", PetName: "rex"}, Reason: pet.ReasonRiot})
	bus.SwapBuffers()
	bus.DispatchAll()

	ls.Update(0)
	if len(w.batches) != 0 || ls.Pending() != 2 {
		t.Fatalf("flushed before interval: %d batches, %d pending", len(w.batches), ls.Pending())
	}
	ls.Update(0)
	if len(w.batches) != 1 || len(w.batches[0]) != 2 {
		t.Fatalf("batches = %+v", w.batches)
	}
	got := w.batches[0]
	if got[0].Kind != persist.LedgerSpawned || got[0].Power != 20 || got[0].OwnerName != "alice" {
		t.Fatalf("spawn entry = %+v", got[0])
	}
	if got[1].Kind != persist.LedgerReleased || got[1].Reason != pet.ReasonRiot {
		t.Fatalf("release entry = %+v", got[1])
	}
	if ls.Pending() != 0 {
		t.Fatalf("pending after flush = %d", ls.Pending())
	}
}

func TestLedgerSystemKeepsEntriesOnFailure(t *testing.T) {
	bus := event.NewBus()
	w := &recordingWriter{err: errors.New("db down")}
	ls := NewLedgerSystem(bus, w, 1, zaptest.NewLogger(t))

	event.Emit(bus, event.RiotStarted{OwnerName: "bob", Released: 3})
	bus.SwapBuffers()
	bus.DispatchAll()

	ls.Update(0)
	if ls.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", ls.Pending())
	}
	w.err = nil
	ls.Flush()
	if len(w.batches) != 1 || w.batches[0][0].Kind != persist.LedgerRiot {
		t.Fatalf("batches = %+v", w.batches)
	}
}
