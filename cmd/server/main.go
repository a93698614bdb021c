// Command server runs the taskforge HTTP API and its maintenance tasks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskforge/taskforge/internal/auth"
	"github.com/taskforge/taskforge/internal/config"
	"github.com/taskforge/taskforge/internal/logging"
	"github.com/taskforge/taskforge/internal/mailer"
	"github.com/taskforge/taskforge/internal/repository"
	"github.com/taskforge/taskforge/internal/server"
	"github.com/taskforge/taskforge/internal/task"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:          "taskforge",
		Short:        "Task and project management API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file")

	root.AddCommand(serveCmd(), cleanupCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := build()
			if err != nil {
				return err
			}
			defer cleanup()

			errCh := make(chan error, 1)
			go func() {
				errCh <- app.srv.Listen()
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-quit:
				app.logger.Infof("received %s, shutting down", sig)
				return app.srv.Shutdown()
			}
		},
	}
}

func cleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired and consumed tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := build()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			n, err := app.authSvc.DeleteExpiredTokens(ctx)
			if err != nil {
				return err
			}
			app.logger.Infof("deleted %d expired token records", n)
			return nil
		},
	}
}

type application struct {
	srv     *server.Server
	authSvc *auth.Service
	logger  interface{ Infof(string, ...any) }
}

// build wires every component from configuration. The returned cleanup
// closes the database.
func build() (*application, func(), error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	db, err := repository.Connect(cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Errorf("failed to close database: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := repository.CreateSchema(ctx, db); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create schema: %w", err)
	}

	repo := repository.NewManager(db)
	repo.MustValidate()

	tokens := auth.NewTokenService(
		[]byte(cfg.JWT.SigningKey),
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		logging.NewAdapter(logger, "tokens"),
		auth.WithAccessTokenTTL(cfg.JWT.AccessTTL),
		auth.WithRefreshTokenDays(cfg.JWT.RefreshDays),
	)

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	mail, err := mailer.NewSender(mailer.Config{
		Provider: cfg.Mail.Provider,
		BaseURL:  cfg.Mail.BaseURL,
		From:     cfg.Mail.From,
		SMTP: mailer.SMTPConfig{
			Host:     cfg.Mail.SMTP.Host,
			Port:     cfg.Mail.SMTP.Port,
			Username: cfg.Mail.SMTP.Username,
			Password: cfg.Mail.SMTP.Password,
		},
		SendGrid: mailer.SendGridConfig{
			APIKey: cfg.Mail.SendGrid.APIKey,
		},
	}, logging.NewAdapter(logger, "mailer"))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("configure mailer: %w", err)
	}

	authSvc := auth.NewService(repo, tokens, hasher, mail,
		auth.WithServiceLogger(logging.NewAdapter(logger, "auth")))
	taskSvc := task.NewService(repo)

	srv := server.New(server.Config{
		Addr:  cfg.Server.Addr,
		Debug: cfg.Server.Debug,
	}, repo, authSvc, taskSvc, logging.NewAdapter(logger, "http"))

	return &application{srv: srv, authSvc: authSvc, logger: logger}, cleanup, nil
}
