package ecs

// EntityID encodes a 32-bit slot index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on destroy to invalidate stale refs.
// Generations start at 1, so the zero EntityID never names a live slot and is
// used throughout as "no entity".
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// EntityPool hands out slots of a fixed-capacity table. Slots [0, reserved)
// belong to clients and are only handed out by CreateReserved; the rest are
// handed out lowest-free-first by Create. Nothing grows after construction.
type EntityPool struct {
	generations []uint32
	used        []bool
	reserved    uint32
	live        int
}

func NewEntityPool(capacity, reserved int) *EntityPool {
	if reserved > capacity {
		reserved = capacity
	}
	p := &EntityPool{
		generations: make([]uint32, capacity),
		used:        make([]bool, capacity),
		reserved:    uint32(reserved),
	}
	for i := range p.generations {
		p.generations[i] = 1
	}
	return p
}

// Create allocates the lowest free non-reserved slot.
// Returns false when the table is exhausted.
func (p *EntityPool) Create() (EntityID, bool) {
	return p.createIn(p.reserved, uint32(len(p.used)))
}

// CreateReserved allocates the lowest free client slot.
func (p *EntityPool) CreateReserved() (EntityID, bool) {
	return p.createIn(0, p.reserved)
}

func (p *EntityPool) createIn(lo, hi uint32) (EntityID, bool) {
	for idx := lo; idx < hi; idx++ {
		if p.used[idx] {
			continue
		}
		p.used[idx] = true
		p.live++
		return NewEntityID(idx, p.generations[idx]), true
	}
	return 0, false
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if int(idx) >= len(p.used) {
		return false
	}
	return p.used[idx] && p.generations[idx] == id.Generation()
}

func (p *EntityPool) Destroy(id EntityID) {
	if !p.Alive(id) {
		return // already destroyed (stale reference)
	}
	idx := id.Index()
	p.used[idx] = false
	p.generations[idx]++
	p.live--
}

// At returns the live handle stored in slot idx, or zero for a free slot.
func (p *EntityPool) At(idx int) EntityID {
	if idx < 0 || idx >= len(p.used) || !p.used[idx] {
		return 0
	}
	return NewEntityID(uint32(idx), p.generations[idx])
}

func (p *EntityPool) Capacity() int { return len(p.used) }
func (p *EntityPool) Reserved() int { return int(p.reserved) }
func (p *EntityPool) Live() int     { return p.live }

// Unwind returns a slot whose handle was never published, without bumping
// its generation, so the pool ends up exactly as before Create.
func (p *EntityPool) Unwind(id EntityID) {
	if !p.Alive(id) {
		return
	}
	p.used[id.Index()] = false
	p.live--
}
