// Package classification Remote Cluster Service.
//
// Remote Cluster Service binding view services to the clusters hosting them
//
// Terms Of Service:
//
// there are no TOS at this moment, use at your own risk we take no responsibility
//
//    Version: 0.1.0
//    License: TODO
//    Contact: <info@dhis2.org> https://github.com/dhis2-sre/im-remote-cluster
//
//    Consumes:
//      - application/json
//
//    Produces:
//      - application/json
//
//    SecurityDefinitions:
//      oauth2:
//        type: oauth2
//        tokenUrl: /not-valid--endpoint-is-served-from-the-identity-provider
//        refreshUrl: /not-valid--endpoint-is-served-from-the-identity-provider
//        flow: password
// swagger:meta
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/dhis2-sre/im-remote-cluster/internal/handler"
	ctxlog "github.com/dhis2-sre/im-remote-cluster/internal/log"
	"github.com/dhis2-sre/im-remote-cluster/internal/middleware"
	"github.com/dhis2-sre/im-remote-cluster/internal/server"
	"github.com/dhis2-sre/im-remote-cluster/internal/tracing"
	"github.com/dhis2-sre/im-remote-cluster/pkg/catalog"
	"github.com/dhis2-sre/im-remote-cluster/pkg/config"
	"github.com/dhis2-sre/im-remote-cluster/pkg/event"
	"github.com/dhis2-sre/im-remote-cluster/pkg/remotecluster"
	"github.com/dhis2-sre/im-remote-cluster/pkg/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.New()

	logger := slog.New(ctxlog.New(ctxlog.NewPrettyJSONHandler(os.Stdout, &ctxlog.PrettyJSONHandlerOptions{
		HandlerOptions: slog.HandlerOptions{AddSource: true},
		PrettyPrint:    cfg.Environment == "development",
	})))
	slog.SetDefault(logger)

	_, shutdownTracing, err := tracing.New("im-remote-cluster", cfg.JaegerEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("Failed to shut down tracing", "error", err)
		}
	}()

	db, err := storage.NewDatabase(logger, cfg.Postgresql)
	if err != nil {
		return err
	}

	catalogService := catalog.NewService(catalog.NewRepository(db))
	err = catalog.LoadDefinitions(context.Background(), logger, cfg.CatalogDirectory, catalogService)
	if err != nil {
		return err
	}

	masker, err := remotecluster.NewMasker(cfg.MaskingIdentity)
	if err != nil {
		return err
	}

	broker := event.NewBroker()
	publishers := event.Publishers{broker}
	if cfg.RabbitMqURL.Enabled() {
		amqpPublisher, err := event.NewAMQPPublisher(cfg.RabbitMqURL.GetUrl(), cfg.RabbitMqURL.Exchange)
		if err != nil {
			return err
		}
		defer func() {
			if err := amqpPublisher.Close(); err != nil {
				logger.Error("Failed to close RabbitMQ connection", "error", err)
			}
		}()
		publishers = append(publishers, amqpPublisher)
	}

	remoteClusterService := remotecluster.NewService(logger, remotecluster.NewRepository(db), catalogService, masker, publishers)

	publicKey, err := middleware.ParsePublicKey(cfg.Authentication.PublicKey)
	if err != nil {
		return err
	}
	authentication := middleware.NewAuthentication(logger, publicKey)
	authorization := middleware.NewAuthorization(logger)

	err = handler.RegisterValidation()
	if err != nil {
		return err
	}

	r := server.GetEngine(logger, cfg.BasePath)
	router := r.Group(cfg.BasePath)
	catalog.Routes(router, authentication, catalog.NewHandler(catalogService))
	remotecluster.Routes(router, authentication, authorization, remotecluster.NewHandler(remoteClusterService))
	event.Routes(router, authentication, event.NewHandler(logger, broker))

	return r.Run()
}
