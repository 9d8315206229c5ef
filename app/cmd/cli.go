package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Rakhulsr/kidstore/app/configs"
	"github.com/Rakhulsr/kidstore/app/db/seeders"
	"github.com/Rakhulsr/kidstore/app/models/migrations"
	"github.com/Rakhulsr/kidstore/app/routes"
	"github.com/Rakhulsr/kidstore/app/utils/logger"
	"github.com/Rakhulsr/kidstore/app/utils/renderer"
	"github.com/Rakhulsr/kidstore/app/utils/sessions"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// Run parses args and runs the selected command. Without a command the HTTP
// server is started.
func Run(ctx context.Context, args []string) error {
	env, err := configs.LoadEnv()
	if err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	log := logger.NewLogger(env.LogLevel, logger.NewMainLogHook())

	cmd := &cli.Command{
		Name:  "kidstore",
		Usage: "Kidstore storefront and admin API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "directory holding config.json",
				Value: "config",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, env, c.String("config"), log)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, c *cli.Command) error {
					return serve(ctx, env, c.String("config"), log)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migration",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(env, log)
					if err != nil {
						return err
					}
					defer closeDB(db, log)
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					log.Info("migration complete")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Create the admin account and demo catalog",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "admin-email", Value: "admin@kidstore.local", Sources: cli.EnvVars("SEED_ADMIN_EMAIL")},
					&cli.StringFlag{Name: "admin-password", Sources: cli.EnvVars("SEED_ADMIN_PASSWORD"), Required: true},
					&cli.IntFlag{Name: "products", Value: 40},
					&cli.IntFlag{Name: "customers", Value: 10},
					&cli.IntFlag{Name: "seed", Usage: "random seed for demo data", Value: 1},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(env, log)
					if err != nil {
						return err
					}
					defer closeDB(db, log)
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					err = seeders.NewSeeder(db, log).DBSeed(ctx, seeders.Options{
						AdminEmail:    c.String("admin-email"),
						AdminPassword: c.String("admin-password"),
						Products:      int(c.Int("products")),
						Customers:     int(c.Int("customers")),
						Seed:          int64(c.Int("seed")),
					})
					if err != nil {
						return err
					}
					log.Info("seeding complete")
					return nil
				},
			},
			{
				Name:  "generate-keys",
				Usage: "Generate session and CSRF keys for .env",
				Action: func(ctx context.Context, c *cli.Command) error {
					return configs.GenerateAndPrintSessionKeys(os.Stdout)
				},
			},
		},
	}

	return cmd.Run(ctx, args)
}

func closeDB(db *gorm.DB, log *logrus.Entry) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warnf("failed to close database: %v", err)
	}
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests.
func serve(ctx context.Context, env configs.ENV, configDir string, log *logrus.Entry) error {
	cfg, err := configs.LoadConfig(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	pricing, err := cfg.PricingRules()
	if err != nil {
		return fmt.Errorf("pricing config: %w", err)
	}

	keys, err := configs.LoadSessionKeys(env)
	if err != nil {
		return err
	}
	csrfKey, err := configs.CSRFAuthKey(env)
	if err != nil {
		return err
	}
	if csrfKey == nil {
		log.Warn("CSRF_KEY not set, CSRF protection disabled")
	}

	loggers := routes.NewLoggers(env.LogLevel)
	gw, err := configs.NewPaymentGateway(env, logger.NewLogger(env.LogLevel, logger.NewGatewayLogHook()))
	if err != nil {
		return err
	}

	db, err := configs.OpenConnection(env, log)
	if err != nil {
		return err
	}
	defer closeDB(db, log)
	if err := migrations.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	router := routes.NewRouter(routes.Dependencies{
		DB:             db,
		Gateway:        gw,
		Pricing:        pricing,
		Currency:       cfg.Currency,
		Sessions:       sessions.NewCookieSessionStore(env.IsProduction(), keys.AuthKey, keys.EncKey),
		Render:         renderer.New(env.TemplateDir, !env.IsProduction()),
		CSRFKey:        csrfKey,
		SecureCookies:  env.IsProduction(),
		RequestTimeout: cfg.Server.RequestTimeout,
		StaticDir:      env.StaticDir,
		Logs:           loggers,
	})

	addr := cfg.Server.Port
	if env.AppPort != "" {
		addr = ":" + env.AppPort
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("server listening on %s (payments via %s)", server.Addr, gw.Provider())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
