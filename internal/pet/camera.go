package pet

import (
	"github.com/l1jgo/petd/internal/core/ecs"
	"github.com/l1jgo/petd/internal/world"
)

// spectating: already watching something through either camera.
func (m *Manager) spectating(e *world.Entity) bool {
	if e.Client == nil {
		return false
	}
	return m.world.Get(e.Client.PetCam) != nil || m.world.Get(e.Client.ChaseTarget) != nil
}

// CycleCam moves client's pet camera to the next eligible entity after the
// current one in table order, wrapping around. classFilter, when set,
// limits candidates to that class. Arriving back at the client or at the
// starting entity detaches the camera. Returns the new target, zero when
// detached.
func (m *Manager) CycleCam(client *world.Entity, classFilter string) ecs.EntityID {
	if !world.IsClient(client) {
		return 0
	}
	cl := client.Client
	start := m.world.Get(cl.PetCam)
	if start == nil {
		start = client
	}

	n := m.world.Capacity()
	from := int(start.ID.Index())
	for step := 1; step < n; step++ {
		obj := m.world.Slot((from + step) % n)
		if obj == client {
			break
		}
		if obj == nil {
			continue
		}
		if classFilter != "" && obj.ClassName != classFilter {
			continue
		}
		if !m.world.OnSameTeam(client, obj) || m.spectating(obj) {
			continue
		}
		m.attachCam(client, obj)
		return obj.ID
	}
	m.CamOff(client)
	return 0
}

func (m *Manager) attachCam(client, target *world.Entity) {
	cl := client.Client
	cl.PetCam = target.ID
	for i := 0; i < 3; i++ {
		cl.DeltaAngles[i] = world.Angle2Short(target.Angles[i] - cl.CmdAngles[i])
	}
	cl.LastCamYaw = target.Angles[world.Yaw]
}

// CamOff detaches client's pet camera and, transitively, every client that
// was watching client.
func (m *Manager) CamOff(client *world.Entity) {
	if !world.IsClient(client) {
		return
	}
	client.Client.PetCam = 0
	m.releaseWatchers(client)
}

// releaseWatchers detaches anyone whose pet or chase camera points at target.
func (m *Manager) releaseWatchers(target *world.Entity) {
	for other := range m.world.Clients() {
		if other == target {
			continue
		}
		if other.Client.PetCam == target.ID {
			m.CamOff(other)
		}
		if other.Client.ChaseTarget == target.ID {
			m.NoCam(other)
		}
	}
}

// Exchange swaps client's position with its camera target's.
func (m *Manager) Exchange(client *world.Entity) bool {
	if !world.IsClient(client) {
		return false
	}
	target := m.world.Get(client.Client.PetCam)
	if target == nil {
		return false
	}
	m.world.Unlink(client)
	m.world.Unlink(target)
	client.Origin, target.Origin = target.Origin, client.Origin
	m.world.Link(client)
	m.world.Link(target)
	return true
}

// ChaseCam attaches self to the next teammate in client order after its
// current chase target. The chaser loses its body while attached. With no
// candidate left the chase ends.
func (m *Manager) ChaseCam(self *world.Entity) ecs.EntityID {
	if !world.IsClient(self) {
		return 0
	}
	start := 0
	if cur := m.world.Get(self.Client.ChaseTarget); cur != nil {
		start = int(cur.ID.Index()) + 1
	}
	for i := start; i < m.world.MaxClients(); i++ {
		e := m.world.Slot(i)
		if e == nil || e.Client == nil || e == self {
			continue
		}
		if e.Solid == world.SolidNot || m.spectating(e) {
			continue
		}
		if m.world.OnSameTeam(self, e) {
			m.chaseOn(self, e)
			return e.ID
		}
	}
	m.NoCam(self)
	return 0
}

func (m *Manager) chaseOn(self, target *world.Entity) {
	self.Client.ChaseTarget = target.ID
	m.world.Unlink(self)
	self.SvFlags |= world.SvNoClient
	self.Solid = world.SolidNot
	m.world.Link(self)
}

// NoCam ends self's chase camera, gives the body back, and detaches whoever
// was watching self.
func (m *Manager) NoCam(self *world.Entity) {
	if !world.IsClient(self) {
		return
	}
	if self.Client.ChaseTarget != 0 {
		self.Client.ChaseTarget = 0
		m.world.Unlink(self)
		self.SvFlags &^= world.SvNoClient
		self.Solid = world.SolidBBox
		m.world.Link(self)
	}
	m.releaseWatchers(self)
}

// UpdateCameras drops cameras whose target went away and keeps chasers on
// top of their target. Run once per tick.
func (m *Manager) UpdateCameras() {
	for c := range m.world.Clients() {
		cl := c.Client
		if cl.PetCam != 0 {
			if t := m.world.Get(cl.PetCam); t == nil {
				m.CamOff(c)
			} else {
				cl.LastCamYaw = t.Angles[world.Yaw]
			}
		}
		if cl.ChaseTarget != 0 {
			t := m.world.Get(cl.ChaseTarget)
			if t == nil || t.Solid == world.SolidNot {
				m.NoCam(c)
				continue
			}
			c.Origin = t.Origin
		}
	}
}
