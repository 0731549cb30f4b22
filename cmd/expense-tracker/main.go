package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Vijay-1289/Expense-Tracker/internal/auth"
	"github.com/Vijay-1289/Expense-Tracker/internal/backend"
	"github.com/Vijay-1289/Expense-Tracker/internal/changefeed"
	"github.com/Vijay-1289/Expense-Tracker/internal/cli"
	"github.com/Vijay-1289/Expense-Tracker/internal/dashboard"
	apphttp "github.com/Vijay-1289/Expense-Tracker/internal/http"
	"github.com/Vijay-1289/Expense-Tracker/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap()

	ctx, stop := cli.SignalContext()
	defer stop()

	st, cleanup, err := backend.New(cfg)
	if err != nil {
		logger.Error("backend initialization failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Error("backend cleanup failed", "error", err)
		}
	}()

	hub := changefeed.NewHub(cfg.FeedBuffer)
	defer hub.Close()

	// The relay is optional: without AMQP the hub alone serves this
	// instance's dashboards.
	var relay *changefeed.Relay
	if cfg.AMQPURL != "" {
		relay, err = changefeed.NewRelay(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, hub)
		if err != nil {
			logger.Warn("relay unavailable, running standalone", "error", err)
			relay = nil
		} else {
			defer relay.Close()
			logger.Info("change relay connected", "exchange", cfg.AMQPExchange)
		}
	}

	var remote services.RemotePublisher
	if relay != nil {
		remote = relay
	}
	expenses := services.NewExpenses(st, hub, remote)
	budgets := services.NewBudgets(st, hub, remote)
	dashboards := dashboard.NewManager(hub, expenses, budgets)
	defer dashboards.CloseAll()

	sessions := auth.NewManager(cfg.SessionTTL)
	var google *auth.GoogleVerifier
	if cfg.GoogleOAuthEnabled() {
		google = auth.NewGoogleVerifier(cfg.GoogleOAuthClientID, cfg.GoogleOAuthClientSecret, cfg.GoogleOAuthRedirectURL)
		logger.Info("google sign-in enabled")
	} else {
		logger.Warn("google sign-in not configured, dev login active")
	}

	srv := apphttp.NewServer(ctx, ":"+cfg.Port, apphttp.Deps{
		Sessions:   sessions,
		Google:     google,
		Profiles:   st,
		Expenses:   expenses,
		Budgets:    budgets,
		Dashboards: dashboards,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if relay != nil {
		g.Go(func() error {
			if err := relay.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
