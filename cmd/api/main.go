package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/angeldelarosa/garagepos-backend/api/routes"
	"github.com/angeldelarosa/garagepos-backend/internal/cart"
	"github.com/angeldelarosa/garagepos-backend/internal/catalog"
	"github.com/angeldelarosa/garagepos-backend/internal/customers"
	"github.com/angeldelarosa/garagepos-backend/internal/invoices"
	"github.com/angeldelarosa/garagepos-backend/internal/projection"
	"github.com/angeldelarosa/garagepos-backend/internal/reports"
	"github.com/angeldelarosa/garagepos-backend/internal/sales"
	"github.com/angeldelarosa/garagepos-backend/pkg/auth/session"
	"github.com/angeldelarosa/garagepos-backend/pkg/config"
	"github.com/angeldelarosa/garagepos-backend/pkg/db"
	"github.com/angeldelarosa/garagepos-backend/pkg/logger"
	"github.com/angeldelarosa/garagepos-backend/pkg/migrate"
	"github.com/angeldelarosa/garagepos-backend/pkg/numbering"
	"github.com/angeldelarosa/garagepos-backend/pkg/pubsub"
	"github.com/angeldelarosa/garagepos-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessions, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	bus := pubsub.New(logg, pubsub.WithExternal(redisClient, cfg.Projection.Channel))
	numbers := numbering.NewGenerator()

	catalogRepo := catalog.NewRepository(dbClient.DB())
	customersRepo := customers.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	salesRepo := sales.NewRepository(dbClient.DB())
	invoicesRepo := invoices.NewRepository(dbClient.DB())
	reportsRepo := reports.NewRepository(dbClient.DB())

	catalogService, err := catalog.NewService(catalogRepo, dbClient, bus)
	requireService(logg, "catalog", err)
	customersService, err := customers.NewService(customersRepo)
	requireService(logg, "customers", err)
	cartService, err := cart.NewService(cartRepo, dbClient, catalogRepo)
	requireService(logg, "cart", err)
	salesService, err := sales.NewService(salesRepo, cartRepo, catalogRepo, customersRepo, dbClient, numbers, bus, cfg.Sales)
	requireService(logg, "sales", err)
	invoicesService, err := invoices.NewService(invoicesRepo, salesRepo, customersRepo, numbers, bus, cfg.Sales)
	requireService(logg, "invoices", err)
	reportsService, err := reports.NewService(reportsRepo)
	requireService(logg, "reports", err)

	projector, err := projection.New(cfg.Projection, salesService, salesRepo, catalogRepo, redisClient, logg)
	requireService(logg, "projection", err)
	projector.Register(bus)
	if _, err := projector.Rebuild(context.Background()); err != nil {
		logg.Warn(context.Background(), "dashboard snapshot not warmed, serving lazily")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:    cfg,
			Logger:    logg,
			DB:        dbClient,
			Redis:     redisClient,
			Sessions:  sessions,
			Catalog:   catalogService,
			Customers: customersService,
			Cart:      cartService,
			Sales:     salesService,
			Invoices:  invoicesService,
			Reports:   reportsService,
			Projector: projector,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err != nil {
		logg.Error(context.Background(), "failed to create "+name+" service", err)
		os.Exit(1)
	}
}
