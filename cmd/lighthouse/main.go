// lighthouse builds procedural cliff-and-tower scenes from style presets.
//
// Usage:
//
//	go run ./cmd/lighthouse -preset storm -quality high
//	go run ./cmd/lighthouse -list
//	go run ./cmd/lighthouse -history 5
//	go run ./cmd/lighthouse -serve
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/lawnchairsociety/lighthouse/internal/config"
	"github.com/lawnchairsociety/lighthouse/internal/database"
	"github.com/lawnchairsociety/lighthouse/internal/geometry"
	"github.com/lawnchairsociety/lighthouse/internal/logger"
	"github.com/lawnchairsociety/lighthouse/internal/preset"
	"github.com/lawnchairsociety/lighthouse/internal/scene"
	"github.com/lawnchairsociety/lighthouse/internal/server"
)

func main() {
	configFile := flag.String("config", "data/lighthouse.yaml", "Path to config YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	presetName := flag.String("preset", "", "Preset to build (default from config)")
	qualityName := flag.String("quality", "", "Quality tier: draft or high (default from config)")
	seed := flag.Int64("seed", 0, "Override the preset's cliff seed")
	presetsFile := flag.String("presets", "", "Path to a YAML preset pack replacing the built-in presets")
	dbFile := flag.String("db", "", "Path to SQLite scene database (overrides config)")
	memory := flag.Bool("memory", false, "Keep scene history in memory only")
	list := flag.Bool("list", false, "List presets and exit")
	cleanup := flag.Bool("cleanup", false, "Remove live scenes and exit")
	history := flag.Int("history", 0, "Show the last n builds and exit")
	serve := flag.Bool("serve", false, "Run the WebSocket control server")
	flag.Parse()

	seedSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedSet = true
		}
	})

	logConfig, err := logger.LoadConfig(*loggingConfig)
	if err != nil {
		log.Printf("Failed to load logging config, using defaults: %v", err)
	}
	if err := logger.Initialize(logConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *presetsFile != "" {
		cfg.Build.PresetsFile = *presetsFile
	}
	if *dbFile != "" {
		cfg.Database.Driver = string(database.DialectSQLite)
		cfg.Database.SQLitePath = *dbFile
	}

	registry := preset.Default()
	if cfg.Build.PresetsFile != "" {
		registry, err = preset.LoadFromYAML(cfg.Build.PresetsFile)
		if err != nil {
			log.Fatalf("Failed to load presets: %v", err)
		}
		logger.Info("Presets loaded", "path", cfg.Build.PresetsFile, "count", registry.Count())
	}

	if *list {
		for _, name := range registry.List() {
			fmt.Println(name)
		}
		return
	}

	binding, closeBinding := openBinding(cfg, *memory)
	defer closeBinding()

	svc := scene.NewService(registry, binding)
	ctx := context.Background()

	switch {
	case *serve:
		runServer(cfg, svc)

	case *cleanup:
		n, err := svc.Cleanup(ctx)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Removed %d scene(s)\n", n)

	case *history > 0:
		records, err := svc.History(ctx, *history)
		if err != nil {
			log.Fatalf("Failed to read history: %v", err)
		}
		for _, r := range records {
			state := "live"
			if !r.Live() {
				state = "removed"
			}
			fmt.Printf("%s  %s  [%s]\n", r.CreatedAt.Local().Format(time.DateTime), r.Summary(), state)
		}

	default:
		name := *presetName
		if name == "" {
			name = cfg.Build.Preset
		}
		quality := cfg.Build.DefaultQuality()
		if *qualityName != "" {
			quality, err = geometry.ParseQuality(*qualityName)
			if err != nil {
				log.Fatalf("Invalid quality: %v", err)
			}
		}

		var res *scene.Result
		if seedSet {
			res, err = svc.BuildSeeded(ctx, name, quality, *seed)
		} else {
			res, err = svc.Build(ctx, name, quality)
		}
		if err != nil {
			log.Fatalf("Build failed: %v", err)
		}
		printSummary(res)
	}
}

// openBinding returns the scene store named by cfg, or an in-memory binding.
func openBinding(cfg *config.AppConfig, memory bool) (scene.Binding, func()) {
	if memory {
		return scene.NewMemoryBinding(), func() {}
	}

	db, err := database.OpenWithConfig(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open scene database: %v", err)
	}
	logger.Info("Scene database opened", "driver", db.Dialect().DriverName())
	return database.NewSceneStore(db), func() { db.Close() }
}

func runServer(cfg *config.AppConfig, svc *scene.Service) {
	srv := server.NewServer(cfg.Server, svc)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Control server failed: %v", err)
		}
	case <-sigChan:
		logger.Info("Shutting down control server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Control server shutdown incomplete", "error", err)
	}
}

func printSummary(res *scene.Result) {
	r := res.Record
	s := res.Scene

	fmt.Printf("Preset:   %s (%s, seed %d)\n", r.Preset, r.Quality, r.Seed)
	fmt.Printf("Scene:    %s\n", r.ID)

	cmin, cmax := s.Cliff.Bounds()
	fmt.Printf("Cliff:    %s  %d vertices, %d faces, y %.3f..%.3f\n",
		s.Cliff.Name, r.CliffVertices, r.CliffFaces, cmin[1], cmax[1])

	tmin, tmax := s.Tower.Bounds()
	fmt.Printf("Tower:    %s  %d vertices, %d faces, height %.3f, %d loops\n",
		s.Tower.Name, r.TowerVertices, r.TowerFaces, tmax[1]-tmin[1], len(s.Tower.Loops))

	groups := make([]string, 0, len(s.Tower.Groups))
	for name, faces := range s.Tower.Groups {
		groups = append(groups, fmt.Sprintf("%s=%d", name, len(faces)))
	}
	sort.Strings(groups)
	fmt.Printf("Groups:   %s\n", strings.Join(groups, " "))

	t := r.Translation
	fmt.Printf("Placed:   (%.3f, %.3f, %.3f)\n", t[0], t[1], t[2])
	if res.Removed > 0 {
		fmt.Printf("Cleaned:  %d previous scene(s)\n", res.Removed)
	}
	fmt.Printf("Hash:     cliff %s  tower %s\n", shortHash(r.CliffFingerprint), shortHash(r.TowerFingerprint))
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
