// Package main boots the Storefront Session Service HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sleekspace/storefront/internal/auth"
	"github.com/sleekspace/storefront/internal/cart"
	"github.com/sleekspace/storefront/internal/catalog"
	"github.com/sleekspace/storefront/internal/config"
	httpapi "github.com/sleekspace/storefront/internal/http"
	"github.com/sleekspace/storefront/internal/notify"
	"github.com/sleekspace/storefront/internal/obs"
	"github.com/sleekspace/storefront/internal/review"
	"github.com/sleekspace/storefront/internal/session"
	"github.com/sleekspace/storefront/internal/showcase"
)

func main() {
	cfg := config.Load()
	obs.InitLogger()
	obs.Logger.Info("service_starting")

	cat, err := catalog.New()
	if err != nil {
		obs.Logger.Error("catalog_load_error", "error", err)
		os.Exit(1)
	}

	var sender notify.Sender
	if cfg.EmailMode == config.EmailModeHTTP {
		sender = notify.NewHTTPSender(cfg)
	} else {
		sender = notify.LogSender{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rot := showcase.New(cat.Slides(), cfg.SlideInterval)
	rot.Start(ctx)

	sess := session.New(cat, cart.New(), review.New(), auth.New(sender), rot)

	app := httpapi.NewApp(cfg, sess)
	mux := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr, "email_mode", cfg.EmailMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	obs.Logger.Info("shutdown_drain_begin", "pending_sign_ups", sess.PendingSignUps())
	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelDrain()
	if drained := sess.DrainUntil(ctxDrain); !drained {
		obs.Logger.Warn("shutdown_drain_timeout")
	} else {
		obs.Logger.Info("shutdown_drain_complete")
	}

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	obs.Logger.Info("service_stopped")
}
