package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SolidBox is one block of static geometry.
type SolidBox struct {
	Mins [3]float64 `yaml:"mins"`
	Maxs [3]float64 `yaml:"maxs"`
}

// ArenaSpawn places a wild monster at map load.
type ArenaSpawn struct {
	ClassName string     `yaml:"classname"`
	Origin    [3]float64 `yaml:"origin"`
	Yaw       float64    `yaml:"yaw"`
}

// Arena is the static level: geometry, player starts and wild monsters.
type Arena struct {
	Name         string       `yaml:"name"`
	Solids       []SolidBox   `yaml:"solids"`
	PlayerStarts [][3]float64 `yaml:"player_starts"`
	Monsters     []ArenaSpawn `yaml:"monsters"`
}

// LoadArena loads an arena description from a YAML file.
func LoadArena(path string) (*Arena, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read arena: %w", err)
	}
	var a Arena
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse arena: %w", err)
	}
	for i, s := range a.Solids {
		for k := 0; k < 3; k++ {
			if s.Mins[k] >= s.Maxs[k] {
				return nil, fmt.Errorf("arena solid %d: mins must be below maxs on every axis", i)
			}
		}
	}
	if len(a.PlayerStarts) == 0 {
		return nil, fmt.Errorf("arena %q has no player_starts", a.Name)
	}
	return &a, nil
}
