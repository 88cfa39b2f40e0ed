package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/notexe/fittrack/internal/config"
	"github.com/notexe/fittrack/internal/mailer"
	"github.com/notexe/fittrack/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

func daemon(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	dispatcher, err := buildDispatcher(cfg)
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	sched := scheduler.New(dispatcher, store,
		scheduler.WithLocation(loc),
		scheduler.WithDispatchTimeout(seconds(cfg.Dispatch.Timeout)),
	)
	if err := sched.Start(scheduler.Definitions(&cfg.Reminders)); err != nil {
		return err
	}

	for _, t := range sched.Armed() {
		log.Printf("[INFO] daemon: %s next at %s", t.Key, t.NextFireAt.Format(time.RFC1123))
	}

	var srv *http.Server
	errCh := make(chan error, 1)
	if c.Bool("serve") {
		if srv, err = newServer(cfg, cfg.Server.Addr); err != nil {
			sched.Stop()
			return err
		}
		go func() {
			errCh <- listen(srv)
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Printf("[INFO] daemon: received %s, shutting down", sig)
	case err = <-errCh:
		log.Printf("[ERROR] daemon: server stopped: %v", err)
	}

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("[WARN] daemon: server shutdown: %v", err)
		}
	}
	if err := sched.Wait(ctx); err != nil {
		log.Printf("[WARN] daemon: dispatches still running at exit: %v", err)
	}

	return err
}

func newServer(cfg *config.Config, addr string) (*http.Server, error) {
	if err := cfg.ValidateResend(); err != nil {
		return nil, err
	}

	handler := mailer.NewHandler(mailerService(cfg))
	return &http.Server{
		Addr:              addr,
		Handler:           mailer.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

func listen(srv *http.Server) error {
	log.Printf("[INFO] server: listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	addr := c.String("addr")
	if addr == "" {
		addr = cfg.Server.Addr
	}

	srv, err := newServer(cfg, addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
	case err := <-errCh:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
