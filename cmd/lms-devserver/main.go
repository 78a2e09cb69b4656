package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-lms-client/devserver"
	"github.com/jrsteele09/go-lms-client/internal/config"
	"github.com/jrsteele09/go-lms-client/internal/logging"
	fakeuserrepo "github.com/jrsteele09/go-lms-client/users/repofake"
	"github.com/rs/zerolog"
)

func main() {
	c := config.New()
	logger := logging.New(c.GetLogLevel(), c.GetEnv())
	if err := run(c, logger); err != nil {
		logger.Fatal().Err(err).Msg("error running server")
	}
	logger.Info().Msg("server stopped")
}

func run(c config.Config, logger zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	if err := config.Validate(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	displayAppname(c.GetAppName() + " dev")
	srv, err := devserver.New(c, fakeuserrepo.NewFakeUserRepo(), logger)
	if err != nil {
		return err
	}
	if err := srv.Seed(context.Background()); err != nil {
		return err
	}

	server := &http.Server{Addr: c.GetPort(), Handler: srv, ReadHeaderTimeout: 10 * time.Second}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(server, logger) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

func listenAndServe(server *http.Server, logger zerolog.Logger) error {
	logger.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
