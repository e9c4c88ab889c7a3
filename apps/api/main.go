package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/masomo-portal/apps/api/echo"
	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/tenant"
	logsvc "github.com/trezcool/masomo-portal/services/logger"
	"github.com/trezcool/masomo-portal/services/platform"
	"github.com/trezcool/masomo-portal/storage/cache"
	"github.com/trezcool/masomo-portal/storage/database"
	sqlxrepos "github.com/trezcool/masomo-portal/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	zapLogger, err := logsvc.NewZap("API", conf.Debug)
	if err != nil {
		panic(fmt.Sprintf("setting up zap: %v", err))
	}
	defer func() { _ = zapLogger.Sync() }()

	logger := logsvc.NewRollbarLogger(zapLogger, conf)
	logger.Enable(!(conf.Debug || conf.TestMode))

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	tenant.InitValidators(validate, translator)

	// set up the tenant catalog, when configured
	var catalog *tenant.Service
	var catalogRepo tenant.Repository
	if conf.Database.Enabled() {
		db, err := setUpDB(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err = db.Close(); err != nil {
				logger.Error("closing database", err)
			}
		}()
		catalogRepo = sqlxrepos.NewTenantRepository(sqlx.NewDb(db, conf.Database.Engine))
		catalog = tenant.NewService(catalogRepo, validate)
	}

	// the backend owns tenant data; the catalog stands in when no backend is configured
	var source tenant.Source
	switch {
	case conf.Backend.URL != "":
		source = platform.NewClient(conf.Backend, validate, logger)
	case catalogRepo != nil:
		source = catalogRepo
	default:
		logger.Warn("no tenant source configured: tenants are only known once pushed")
	}

	redisClient := cache.NewRedisClient(conf.Redis)
	defer func() { _ = redisClient.Close() }()
	if err = redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("redis unreachable: tenants are fetched uncached", err)
	}
	tenantCache := cache.NewTenantCache(redisClient, source, conf.Redis.TTL, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("mode").Set(conf.API.Mode)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.Deps{
		Conf:       conf,
		Logger:     logger,
		Source:     tenantCache,
		Cache:      tenantCache,
		Catalog:    catalog,
		Validate:   validate,
		Translator: translator,
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
