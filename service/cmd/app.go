// Package cmd implements the command line of the relative price comparator.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"

	r "github.com/ignaciocanosa/Precios-Relativos/data/repos"
	"github.com/ignaciocanosa/Precios-Relativos/service/api/hereisdata"
	"github.com/ignaciocanosa/Precios-Relativos/service/config"
	"github.com/ignaciocanosa/Precios-Relativos/service/core"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&serveCmd{}, "server")

	c.Register(&compareCmd{}, "comparison")
	c.Register(&seriesCmd{}, "comparison")
	c.Register(&runsCmd{}, "comparison")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configPath = flag.String("config", defaultConfigPath(), "Path to the YAML configuration file (env CONFIG_PATH)")

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return config.DefaultPath
}

// loadConfig reads .env, then the YAML file and the environment. requireKey is false for
// commands that never reach the remote api.
func loadConfig(requireKey bool) (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not loaded: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	if requireKey {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	} else if _, err := cfg.SeriesSeed(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// openRecorder prefers Postgres, then SQLite, and falls back to discarding the history.
func openRecorder(ctx context.Context, cfg *config.Config) r.RunRecorder {
	if cfg.Database.URL != "" {
		pg, err := r.GetPostgresConnection(ctx, cfg.Database.URL)
		if err == nil {
			err = pg.Migrate(ctx)
		}
		if err == nil {
			log.Println("[INFO] run history stored in postgres")
			return pg
		}
		log.Printf("[WARN] postgres run history unavailable: %v", err)
		if pg != nil {
			pg.Close()
		}
	}

	if cfg.Database.SQLitePath != "" {
		s, err := r.OpenSQLite(cfg.Database.SQLitePath)
		if err == nil {
			return s
		}
		log.Printf("[WARN] sqlite run history unavailable: %v", err)
	}

	log.Println("[INFO] run history disabled")
	return r.Noop{}
}

// newServiceContext wires the client, the run history and the sessions. The returned
// func releases the run history.
func newServiceContext(ctx context.Context, cfg *config.Config) (*core.ServiceContext, func(), error) {
	seed, err := cfg.SeriesSeed()
	if err != nil {
		return nil, nil, err
	}

	client, err := hereisdata.GetClient(cfg.HereIsData.BaseURL, cfg.HereIsData.APIKey, cfg.HereIsData.Timeout)
	if err != nil {
		return nil, nil, err
	}

	recorder := openRecorder(ctx, cfg)
	sc := &core.ServiceContext{
		HereIsDataClient: client,
		RunRecorder:      recorder,
		Sessions:         core.NewSessionStore(seed, cfg.Server.SessionTTL),
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		Addr:             cfg.Server.Addr,
		RemoteTimeout:    cfg.HereIsData.Timeout,
	}

	release := func() {
		if err := recorder.Close(); err != nil {
			log.Printf("[WARN] error closing run history: %v", err)
		}
	}
	return sc, release, nil
}
