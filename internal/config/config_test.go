package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[server]
deathmatch = 2

[network]
tick_rate = "50ms"

[pet]
count_quota = 1
release_accounting = "full"
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Server.Deathmatch != 2 || cfg.Pet.CountQuota != 1 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Network.TickRate != 50*time.Millisecond {
		t.Fatalf("tick_rate = %v", cfg.Network.TickRate)
	}
	if cfg.Pet.ReleaseAccounting != ReleaseAccountingFull {
		t.Fatalf("release_accounting = %q", cfg.Pet.ReleaseAccounting)
	}
	// untouched keys keep their defaults
	if cfg.Pet.VanishProbability != 0.6 || cfg.Pet.SearchRadius != 500 {
		t.Fatalf("defaults lost: %+v", cfg.Pet)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"probability":  "[pet]\nvanish_probability = 2.0\n",
		"accounting":   "[pet]\nrelease_accounting = \"maybe\"\n",
		"capacity":     "[server]\nmax_entities = 4\nmax_clients = 8\n",
		"tick":         "[network]\ntick_rate = \"0s\"\n",
		"clients zero": "[server]\nmax_clients = 0\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestLoadShippedConfig(t *testing.T) {
	path := filepath.Join("..", "..", "config", "petd.toml")
	if _, err := os.Stat(path); err != nil {
		t.Skipf("shipped config not found: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.StartTime == 0 {
		t.Fatalf("start time not stamped")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("err = %v", err)
	}
}
