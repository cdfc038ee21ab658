package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	echoweb "github.com/trezcool/masomo-portal/apps/web/echo"
	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/form"
	"github.com/trezcool/masomo-portal/core/listing"
	"github.com/trezcool/masomo-portal/core/school"
	"github.com/trezcool/masomo-portal/services/export"
	logsvc "github.com/trezcool/masomo-portal/services/logger"
	"github.com/trezcool/masomo-portal/services/restapi"
	"github.com/trezcool/masomo-portal/storage/revoked"
	"github.com/trezcool/masomo-portal/storage/stubapi"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "WEB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// school API
	if conf.API.Stub {
		addr, err := serveStubAPI(logger)
		if err != nil {
			logger.Fatal(fmt.Sprintf("starting stub API: %v", err), err)
		}
		conf.API.BaseURL = addr
		logger.Info(fmt.Sprintf("serving the demo school API on %s", addr))
	}
	api := restapi.New(restapi.Options{
		BaseURL: conf.API.BaseURL,
		Token:   conf.API.Token,
		Timeout: conf.API.Timeout,
	})
	if err := api.Ping(ctx); err != nil {
		logger.Warn(fmt.Sprintf("school API not reachable at %s", conf.API.BaseURL), err)
	}

	// session revocations
	var revocations core.RevocationStore
	if conf.Redis.Addr != "" {
		client, err := revoked.OpenRedis(ctx, conf.Redis)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up redis: %v", err), err)
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Error("could not close redis client", err)
			}
		}()
		revocations = revoked.NewRedisStore(client)
	} else {
		revocations = revoked.NewInMemStore()
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	form.InitValidators(validate, translator)

	workspaces := listing.NewWorkspaces(
		school.Boards(api),
		listing.Options{
			PageSize: conf.API.PageSize,
			Timeout:  conf.API.Timeout,
			Logger:   logger,
		},
		conf.Server.SessionTTL,
	)
	go workspaces.Run(ctx, time.Minute)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.Publish("workspaces", expvar.Func(func() interface{} { return workspaces.Len() }))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Web Service

	server, err := echoweb.NewServer(
		echoweb.ServerDeps{
			Conf:        conf,
			Logger:      logger,
			Workspaces:  workspaces,
			Engine:      form.NewEngine(validate, translator),
			Exporter:    export.NewService(),
			Revocations: revocations,
		},
	)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up server: %v", err), err)
	}

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
		sctx, scancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer scancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(sctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// serveStubAPI serves a seeded in-memory school API on a random local port and returns its base URL.
func serveStubAPI(logger core.Logger) (string, error) {
	db := stubapi.Open(school.Entities())
	if err := stubapi.SeedDemo(db); err != nil {
		return "", err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	go func() {
		srv := stubapi.NewServer(db, stubapi.Options{DisableReqLogs: true})
		if err := http.Serve(ln, srv); err != nil {
			logger.Error(fmt.Sprintf("stub API closed: %v", err), err)
		}
	}()
	return "http://" + ln.Addr().String(), nil
}
