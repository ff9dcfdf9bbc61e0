package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/ignaciocanosa/Precios-Relativos/service/core"
)

const shutdownTimeout = 10 * time.Second

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the relative price dashboard and its json api" }
func (*serveCmd) Usage() string {
	return `serve [-addr <host:port>]

  Starts the http server until interrupted.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Address to listen on, overrides server.addr")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	// listen for interrupt and term signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.addr != "" {
		cfg.Server.Addr = c.addr
	}

	sc, release, err := newServiceContext(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	s := core.GetHttpServer(sc)

	reaper := cron.New()
	if _, err := reaper.AddFunc(cfg.Server.SessionReapCron, func() { sc.Sessions.Reap() }); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid server.session_reap_cron %q: %v\n", cfg.Server.SessionReapCron, err)
		return subcommands.ExitUsageError
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Starting relative price server on %s", s.Addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		reaper.Start()

		// wait here until the context is closed (ie, ctrl+C) or the server failed
		<-gctx.Done()
		log.Println("Received shutdown signal, shutting down gracefully...")
		<-reaper.Stop().Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("Server stopped with error: %v", err)
		return subcommands.ExitFailure
	}

	log.Println("Server stopped successfully")
	return subcommands.ExitSuccess
}
