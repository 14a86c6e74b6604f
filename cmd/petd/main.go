package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/l1jgo/petd/internal/config"
	"github.com/l1jgo/petd/internal/core/event"
	coresys "github.com/l1jgo/petd/internal/core/system"
	"github.com/l1jgo/petd/internal/data"
	"github.com/l1jgo/petd/internal/handler"
	gonet "github.com/l1jgo/petd/internal/net"
	"github.com/l1jgo/petd/internal/persist"
	"github.com/l1jgo/petd/internal/pet"
	"github.com/l1jgo/petd/internal/scripting"
	"github.com/l1jgo/petd/internal/system"
	"github.com/l1jgo/petd/internal/world"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m               petd  v0.1.0                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - runewidth.StringWidth(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - runewidth.StringWidth(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/petd.toml"
	if p := os.Getenv("PETD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Optional ledger database
	var ledgerWriter persist.LedgerWriter
	if cfg.Database.DSN != "" {
		printSection("database")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		applied, err := persist.RunMigrations(ctx, db.Pool, log)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printStat("migrations applied", applied)
		fmt.Println()

		ledgerWriter = persist.NewLedgerRepo(db)
	}

	// 4. World state and level data
	printSection("data")

	bus := event.NewBus()
	store := gonet.NewSessionStore()
	messenger := system.NewSessionMessenger(store)
	worldState := world.NewState(world.Options{
		MaxEntities: cfg.Server.MaxEntities,
		MaxClients:  cfg.Server.MaxClients,
		Teamplay:    cfg.Server.Teamplay,
		Messenger:   messenger,
		Bus:         bus,
	})

	classTable, err := data.LoadClassTable(cfg.Data.ClassesPath)
	if err != nil {
		return fmt.Errorf("load classes: %w", err)
	}
	printStat("monster classes", worldState.LoadClasses(classTable))

	arena, err := data.LoadArena(cfg.Data.ArenaPath)
	if err != nil {
		return fmt.Errorf("load arena: %w", err)
	}
	spawned, err := worldState.LoadArena(arena)
	if err != nil {
		return fmt.Errorf("populate arena: %w", err)
	}
	printStat("arena monsters", spawned)

	// 5. Rules scripts
	engine, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()
	printOK("lua rules loaded")
	fmt.Println()

	quotaCtx := scripting.QuotaContext{
		PowerBase:  cfg.Pet.PowerQuota,
		PowerScale: cfg.Pet.PowerQuotaModeScale,
		CountBase:  cfg.Pet.CountQuota,
		CountScale: cfg.Pet.CountQuotaModeScale,
		Mode:       cfg.Server.Deathmatch,
	}
	pets := pet.NewManager(worldState, cfg.Pet, func() pet.Quotas {
		q := engine.PetQuotas(quotaCtx)
		return pet.Quotas{Power: q.Power, Count: q.Count}
	}, log)

	// 6. Commands
	reg := handler.NewRegistry(log)
	handler.RegisterAll(reg, &handler.Deps{
		World:   worldState,
		Pets:    pets,
		Classes: classTable,
		Config:  cfg,
		Log:     log,
	})

	// 7. Create network server
	codec, err := gonet.NewLineCodec(cfg.Network.ClientCharset)
	if err != nil {
		return fmt.Errorf("client charset: %w", err)
	}
	netServer, err := gonet.NewServer(cfg.Network.BindAddress, codec, gonet.SessionOptions{
		InQueueSize:  cfg.Network.InQueueSize,
		OutQueueSize: cfg.Network.OutQueueSize,
		MaxLineLen:   cfg.Network.MaxLineLength,
		ReadTimeout:  cfg.Network.ReadTimeout,
		WriteTimeout: cfg.Network.WriteTimeout,
		KeepAlive:    cfg.Network.KeepAlive,
	}, log)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	// 8. Create systems and register with runner
	runner := coresys.NewRunner(cfg.Network.TickRate, log)
	runner.Register(system.NewInputSystem(netServer, reg, store, messenger, worldState, pets,
		cfg.Network.MaxLinesPerTick, cfg.Server.Name, log))
	runner.Register(system.NewEventDispatchSystem(bus, worldState, pets, log))
	runner.Register(system.NewPetThinkSystem(worldState, pets))
	runner.Register(system.NewCameraSystem(pets))
	runner.Register(system.NewOutputSystem(store))

	var ledger *system.LedgerSystem
	if ledgerWriter != nil {
		ledger = system.NewLedgerSystem(bus, ledgerWriter, cfg.Database.FlushInterval, log)
		runner.Register(ledger)
	}

	// 9. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Network.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("listening on %s (%s)", netServer.Addr().String(), codec.Name()))
	printReady(fmt.Sprintf("game loop running (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Network.TickRate)

		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			netServer.Shutdown()
			for _, sess := range store.Sorted() {
				sess.Send("Server shutting down.")
				sess.FlushOutput()
				sess.Close()
			}
			if ledger != nil {
				ledger.Flush()
			}
			log.Info("server stopped", zap.Uint64("ticks", runner.Ticks()))
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
