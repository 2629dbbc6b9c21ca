package main

import (
	"context"
	"fmt"
	"log"
	"os"

	echoapi "github.com/educonnectt/web/apps/web/echo"
	"github.com/educonnectt/web/core"
	"github.com/educonnectt/web/core/registration"
	backendsvc "github.com/educonnectt/web/services/backend"
	emailsvc "github.com/educonnectt/web/services/email"
	logsvc "github.com/educonnectt/web/services/logger"
	pgstore "github.com/educonnectt/web/storage/keyval/postgres"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	std := log.New(os.Stdout, "WEB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		rollbar := logsvc.NewRollbarLogger(std, conf)
		rollbar.Enable(true)
		logger = rollbar
	}

	store, err := pgstore.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up visitor state store: %v", err), err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("closing visitor state store", err)
		}
	}()

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	catalog := registration.DefaultCatalog()
	if err := catalog.Validate(); err != nil {
		logger.Fatal(fmt.Sprintf("course catalog: %v", err), err)
	}

	// =========================================================================
	// Start Web Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:    conf,
			Logger:  logger,
			Store:   store,
			Backend: backendsvc.NewClient(conf),
			Email:   mailSvc,
			Catalog: catalog,
		},
	)
	server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err := server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
