package world

// IsMonster reports whether e carries the monster capability flag.
func IsMonster(e *Entity) bool {
	return e != nil && e.SvFlags&SvMonster != 0 && e.Monster != nil
}

// IsPet reports whether e is a monster with an owner reference.
func IsPet(e *Entity) bool {
	return IsMonster(e) && !e.Monster.PetOwner.IsZero()
}

// IsClient reports whether e is bound to a player.
func IsClient(e *Entity) bool {
	return e != nil && e.Client != nil
}

// OwnerOf returns the owning client of a monster, the client itself for a
// client, and nil otherwise. A stale owner handle resolves to nil.
func (s *State) OwnerOf(e *Entity) *Entity {
	switch {
	case IsMonster(e):
		return s.Get(e.Monster.PetOwner)
	case IsClient(e):
		return e
	}
	return nil
}
