package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for game rule formulas.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)

	// Load core scripts first, then the pet rules
	for _, sub := range []string{"core", "pet"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			e.vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

// NewEngineFromString creates an engine from inline source.
func NewEngineFromString(src string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	if err := e.vm.DoString(src); err != nil {
		e.vm.Close()
		return nil, fmt.Errorf("load inline script: %w", err)
	}
	return e, nil
}

func newEngine(log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	return &Engine{vm: vm, log: log}
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// QuotaContext holds the configured quota inputs for one evaluation.
type QuotaContext struct {
	PowerBase  int
	PowerScale int
	CountBase  int
	CountScale int
	Mode       int // deathmatch level
}

// QuotaResult is the per-owner pet allowance.
type QuotaResult struct {
	Power int
	Count int
}

// DefaultQuotas is the built-in formula used when no script defines
// pet_quotas: base plus scale times the game mode.
func DefaultQuotas(ctx QuotaContext) QuotaResult {
	return QuotaResult{
		Power: ctx.PowerBase + ctx.PowerScale*ctx.Mode,
		Count: ctx.CountBase + ctx.CountScale*ctx.Mode,
	}
}

// PetQuotas calls the Lua pet_quotas function, falling back to
// DefaultQuotas when it is missing or fails.
func (e *Engine) PetQuotas(ctx QuotaContext) QuotaResult {
	fn := e.vm.GetGlobal("pet_quotas")
	if fn == lua.LNil {
		return DefaultQuotas(ctx)
	}

	t := e.vm.NewTable()
	t.RawSetString("power_base", lua.LNumber(ctx.PowerBase))
	t.RawSetString("power_scale", lua.LNumber(ctx.PowerScale))
	t.RawSetString("count_base", lua.LNumber(ctx.CountBase))
	t.RawSetString("count_scale", lua.LNumber(ctx.CountScale))
	t.RawSetString("mode", lua.LNumber(ctx.Mode))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua pet_quotas error", zap.Error(err))
		return DefaultQuotas(ctx)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua pet_quotas returned non-table")
		return DefaultQuotas(ctx)
	}

	def := DefaultQuotas(ctx)
	return QuotaResult{
		Power: numberOr(rt.RawGetString("power"), def.Power),
		Count: numberOr(rt.RawGetString("count"), def.Count),
	}
}

func numberOr(v lua.LValue, def int) int {
	if n, ok := v.(lua.LNumber); ok {
		return int(n)
	}
	return def
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}
