// Package classification Eventos.
//
// Publish events, let people register for them and tell organizers who is coming.
//
// Terms Of Service:
//
// there are no TOS at this moment, use at your own risk we take no responsibility
//
//    Version: 0.1.0
//    Contact: <info@dhis2.org> https://github.com/dhis2-sre/eventos
//
//    Consumes:
//      - application/x-www-form-urlencoded
//      - application/json
//
//    Produces:
//      - text/html
//      - application/json
//
// swagger:meta
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dhis2-sre/eventos/internal/handler"
	"github.com/dhis2-sre/eventos/internal/log"
	"github.com/dhis2-sre/eventos/internal/middleware"
	"github.com/dhis2-sre/eventos/internal/server"
	"github.com/dhis2-sre/eventos/internal/tracing"
	"github.com/dhis2-sre/eventos/internal/util"
	"github.com/dhis2-sre/eventos/pkg/config"
	"github.com/dhis2-sre/eventos/pkg/event"
	"github.com/dhis2-sre/eventos/pkg/group"
	"github.com/dhis2-sre/eventos/pkg/notification"
	"github.com/dhis2-sre/eventos/pkg/session"
	"github.com/dhis2-sre/eventos/pkg/storage"
	"github.com/dhis2-sre/eventos/pkg/user"
	"github.com/go-mail/mail"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "eventos: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.New()

	logger := slog.New(log.New(newLogHandler(cfg.LogPretty)))
	slog.SetDefault(logger)

	shutdownTracing, err := tracing.Setup(cfg.JaegerEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("Failed to shut down tracing", "error", err)
		}
	}()

	db, err := storage.NewDatabase(cfg.Postgresql, logger)
	if err != nil {
		return err
	}

	redis, err := storage.NewRedis(cfg.Redis)
	if err != nil {
		return err
	}
	defer redis.Close()

	userRepository := user.NewRepository(db)
	userService := user.NewService(userRepository)

	groupRepository := group.NewRepository(db)
	groupService := group.NewService(groupRepository, userService)

	roles, err := group.DefaultRoles()
	if err != nil {
		return err
	}
	if err := group.LoadRoles(ctx, roles, groupService); err != nil {
		return fmt.Errorf("failed to load roles: %v", err)
	}

	if err := user.CreateAdminUser(ctx, cfg.Admin.Username, cfg.Admin.Password, userService, groupService); err != nil {
		return err
	}

	sessionRepository := session.NewRepository(redis)
	sessionService := session.NewService(logger, sessionRepository, cfg.Session.Secret, cfg.Session.TTL)

	var mailer notification.Mailer
	if cfg.SMTP.Enabled() {
		mailer = mail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	}
	notificationRepository := notification.NewRepository(db)
	broker := notification.NewBroker()
	notificationService := notification.NewService(logger, notificationRepository, broker, mailer, cfg.SMTP.From)

	eventRepository := event.NewRepository(db)
	eventService := event.NewService(logger, eventRepository, notificationService)

	if err := handler.RegisterValidation(); err != nil {
		return err
	}

	authentication := middleware.NewAuthentication(logger, sessionService, userService)
	authorization := middleware.NewAuthorization(logger)

	r := server.GetEngine(logger, util.CookieSettings{
		SameSite: cfg.SameSiteMode,
		Domain:   cfg.Hostname,
		Secure:   cfg.CookieSecure,
	})
	user.Routes(r, authentication, authorization, user.NewHandler(userService, sessionService))
	group.Routes(r, authentication, authorization, group.NewHandler(groupService))
	event.Routes(r, authentication, authorization, event.NewHandler(eventService))
	notification.Routes(r, authentication, notification.NewHandler(logger, notificationService))

	srv := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// notification streams never end on their own
	srv.RegisterOnShutdown(broker.Close)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newLogHandler(pretty bool) slog.Handler {
	return log.NewPrettyJSONHandler(os.Stdout, &log.PrettyJSONHandlerOptions{
		HandlerOptions: slog.HandlerOptions{AddSource: true},
		PrettyPrint:    pretty,
	})
}
