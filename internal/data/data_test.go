package data

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseClassTable(t *testing.T) {
	tbl, err := ParseClassTable([]byte(`
classes:
  - classname: monster_decoy
    monster: true
    summonable: true
    health: 50
    mins: [-16, -16, -24]
    maxs: [16, 16, 32]
  - classname: misc_explobox
    health: 10
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tbl.Count() != 2 {
		t.Fatalf("count = %d", tbl.Count())
	}
	d := tbl.Get("monster_decoy")
	if d == nil || d.Health != 50 || d.Mins[2] != -24 {
		t.Fatalf("decoy = %+v", d)
	}
	if !tbl.Summonable("monster_decoy") || tbl.Summonable("misc_explobox") || tbl.Summonable("nope") {
		t.Fatalf("summonable flags wrong")
	}

	var names []string
	tbl.Each(func(c *MonsterClass) { names = append(names, c.ClassName) })
	if len(names) != 2 || names[0] != "misc_explobox" {
		t.Fatalf("Each order = %v", names)
	}
}

func TestParseClassTableErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"no name":   "classes:\n  - health: 5\n",
		"no health": "classes:\n  - classname: a\n",
		"duplicate": "classes:\n  - {classname: a, health: 1}\n  - {classname: a, health: 2}\n",
		"garbage":   "classes: [",
	} {
		if _, err := ParseClassTable([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadShippedData(t *testing.T) {
	root := filepath.Join("..", "..", "data", "yaml")
	if _, err := os.Stat(root); err != nil {
		t.Skipf("data dir missing: %v", err)
	}
	tbl, err := LoadClassTable(filepath.Join(root, "monster_classes.yaml"))
	if err != nil {
		t.Fatalf("classes: %v", err)
	}
	if tbl.Get("monster_decoy") == nil {
		t.Fatalf("decoy class missing from shipped table")
	}
	a, err := LoadArena(filepath.Join(root, "arena.yaml"))
	if err != nil {
		t.Fatalf("arena: %v", err)
	}
	if len(a.PlayerStarts) == 0 || len(a.Solids) == 0 {
		t.Fatalf("arena = %+v", a)
	}
	for _, m := range a.Monsters {
		if tbl.Get(m.ClassName) == nil {
			t.Errorf("arena monster %s has no class", m.ClassName)
		}
	}
}

func TestLoadArenaRejectsInvertedBox(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	doc := "name: bad\nsolids:\n  - { mins: [0, 0, 0], maxs: [0, 10, 10] }\nplayer_starts:\n  - [0, 0, 0]\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadArena(path); err == nil {
		t.Fatalf("expected error for degenerate solid")
	}
}
