package pet

import (
	"strings"

	"github.com/l1jgo/petd/internal/world"
	"github.com/mattn/go-runewidth"
)

const listColumn = 12

// List renders one "name:  class" line per pet, right-aligned in display
// columns so wide names line up, or "No pets.".
func (m *Manager) List(owner *world.Entity) string {
	if !world.IsClient(owner) {
		return "No pets."
	}
	var b strings.Builder
	for pet := range m.ownedBy(owner, "") {
		name := pet.Monster.Name
		if name == "" {
			name = "<unnamed>"
		}
		b.WriteString(runewidth.FillLeft(name, listColumn))
		b.WriteString(":  ")
		b.WriteString(runewidth.FillLeft(pet.ClassName, listColumn))
		b.WriteByte('\n')
	}
	if b.Len() == 0 {
		return "No pets."
	}
	return b.String()
}
