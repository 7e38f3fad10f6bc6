package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Acceleronix/cmp-auth-mcp-server/cmp"
	"github.com/Acceleronix/cmp-auth-mcp-server/consent"
	"github.com/Acceleronix/cmp-auth-mcp-server/internal/config"
	"github.com/Acceleronix/cmp-auth-mcp-server/kv"
	"github.com/Acceleronix/cmp-auth-mcp-server/server"
	"github.com/Acceleronix/cmp-auth-mcp-server/tools"
	"github.com/Acceleronix/cmp-auth-mcp-server/users"
)

const redisKeyPrefix = "cmp-mcp:"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		if err := hashPassword(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	creds := cmp.Credentials{
		APIKey:    c.GetCMPAPIKey(),
		APISecret: c.GetCMPAPISecret(),
		Endpoint:  c.GetCMPEndpoint(),
	}
	// Fail at startup rather than on the first tool call
	if _, err := cmp.New(creds); err != nil {
		return fmt.Errorf("CMP API client: %w", err)
	}

	store, err := newStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	verifier, err := newVerifier(c)
	if err != nil {
		return err
	}

	handler, err := server.New(c, server.Dependencies{
		Store:    store,
		Verifier: verifier,
		NewAdapter: func() (tools.APIClient, error) {
			return cmp.New(creds)
		},
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- listenAndServe(httpServer)
	}()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.GetLogLevel()))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func newStore(c config.Config) (kv.Store, error) {
	if url := c.GetRedisURL(); url != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		store, err := kv.DialRedis(ctx, url, redisKeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		log.Info().Msg("Using redis store")
		return store, nil
	}
	log.Warn().Msg("REDIS_URL not set, grants and clients are kept in memory")
	return kv.NewMemoryStore(), nil
}

func newVerifier(c config.Config) (consent.IdentityVerifier, error) {
	entries := c.GetConsentUsers()
	if len(entries) == 0 {
		log.Warn().Msg("CONSENT_USERS not set, any email and password is accepted on the consent screen")
		return consent.AcceptAnyVerifier{}, nil
	}
	verifier, err := users.NewStaticVerifier(entries)
	if err != nil {
		return nil, fmt.Errorf("consent users: %w", err)
	}
	log.Info().Int("users", verifier.Len()).Msg("Consent users loaded")
	return verifier, nil
}

// hashPassword prints a CONSENT_USERS entry for an email and password.
func hashPassword(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: server hash-password <email> <password>")
	}
	if err := users.ValidatePasswordStrength(args[1]); err != nil {
		return err
	}
	hash, err := users.HashPassword(args[1])
	if err != nil {
		return err
	}
	fmt.Printf("%s:%s\n", users.NormaliseEmail(args[0]), hash)
	return nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
