package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// MonsterClass holds static data for a spawnable class loaded from YAML.
type MonsterClass struct {
	ClassName  string     `yaml:"classname"`
	Monster    bool       `yaml:"monster"`
	Health     int        `yaml:"health"`
	Mins       [3]float64 `yaml:"mins"`
	Maxs       [3]float64 `yaml:"maxs"`
	ViewHeight float64    `yaml:"viewheight"`
	Model      string     `yaml:"model"`
	ModelIndex int        `yaml:"modelindex"`
	Sight      bool       `yaml:"sight"` // has a sight sound/behavior
	NoTarget   bool       `yaml:"notarget"`
	Summonable bool       `yaml:"summonable"` // allowed as a pet class
}

type classListFile struct {
	Classes []MonsterClass `yaml:"classes"`
}

// ClassTable holds all class templates indexed by class name.
type ClassTable struct {
	classes map[string]*MonsterClass
}

// LoadClassTable loads class templates from a YAML file.
func LoadClassTable(path string) (*ClassTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read class list: %w", err)
	}
	return ParseClassTable(data)
}

// ParseClassTable decodes a class list document.
func ParseClassTable(data []byte) (*ClassTable, error) {
	var f classListFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse class list: %w", err)
	}
	t := &ClassTable{classes: make(map[string]*MonsterClass, len(f.Classes))}
	for i := range f.Classes {
		c := &f.Classes[i]
		if c.ClassName == "" {
			return nil, fmt.Errorf("class list entry %d has no classname", i)
		}
		if c.Health <= 0 {
			return nil, fmt.Errorf("class %s: health must be positive", c.ClassName)
		}
		if _, dup := t.classes[c.ClassName]; dup {
			return nil, fmt.Errorf("class %s defined twice", c.ClassName)
		}
		t.classes[c.ClassName] = c
	}
	return t, nil
}

// Get returns a class by name, or nil if not found.
func (t *ClassTable) Get(name string) *MonsterClass {
	return t.classes[name]
}

// Count returns the number of loaded classes.
func (t *ClassTable) Count() int {
	return len(t.classes)
}

// Each visits classes in name order.
func (t *ClassTable) Each(fn func(*MonsterClass)) {
	names := make([]string, 0, len(t.classes))
	for n := range t.classes {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fn(t.classes[n])
	}
}

// Summonable reports whether players may spawn the class as a pet.
func (t *ClassTable) Summonable(name string) bool {
	c := t.classes[name]
	return c != nil && c.Monster && c.Summonable
}
