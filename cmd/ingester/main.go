// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

// Package main contains ingester main function to start the vitals
// ingestion service.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	mongoclient "github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/internal/clients/mongo"
	redisclient "github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/internal/clients/redis"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/internal/email"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/internal/server"
	httpserver "github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/internal/server/http"
	mfclog "github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/logger"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/messaging/brokers"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/uuid"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals/api"
	vitalsmqtt "github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals/mqtt"
	vitalsmongo "github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals/mongodb"
	vitalsredis "github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals/redis"
	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals/smtp"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/internal"
	"github.com/caarlos0/env/v10"
	"golang.org/x/sync/errgroup"
)

const (
	svcName        = "vitals-ingester"
	envPrefix      = "MFC_INGEST_"
	envPrefixHTTP  = "MFC_INGEST_HTTP_"
	envPrefixMongo = "MFC_MONGO_"
	envPrefixAVA4  = "MFC_INGEST_AVA4_"
	envPrefixKati  = "MFC_INGEST_KATI_"
	envPrefixQube  = "MFC_INGEST_QUBE_"

	routeMapPrefix = "patient_route"
	defSvcHTTPPort = "9021"
)

type config struct {
	LogLevel     string        `env:"MFC_INGEST_LOG_LEVEL"      envDefault:"info"`
	InstanceID   string        `env:"MFC_INGEST_INSTANCE_ID"    envDefault:""`
	BrokerURL    string        `env:"MFC_MESSAGE_BROKER_URL"    envDefault:"nats://localhost:4222"`
	RouteMapURL  string        `env:"MFC_INGEST_ROUTE_MAP_URL"  envDefault:"redis://localhost:6379/0"`
	RouteMapTTL  time.Duration `env:"MFC_INGEST_ROUTE_MAP_TTL"  envDefault:"15m"`
	StoreTimeout time.Duration `env:"MFC_INGEST_STORE_TIMEOUT"  envDefault:"5s"`
	AlertEmails  []string      `env:"MFC_INGEST_ALERT_EMAILS"   envDefault:"" envSeparator:","`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load %s configuration : %s", svcName, err)
	}

	logger, err := mfclog.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %s", err.Error())
	}

	var exitCode int
	defer mfclog.ExitWithError(&exitCode)

	if cfg.InstanceID == "" {
		if cfg.InstanceID, err = uuid.New().ID(); err != nil {
			logger.Error(fmt.Sprintf("failed to generate instanceID: %s", err))
			exitCode = 1
			return
		}
	}

	httpServerConfig := server.Config{Port: defSvcHTTPPort}
	if err := env.ParseWithOptions(&httpServerConfig, env.Options{Prefix: envPrefixHTTP}); err != nil {
		logger.Error(fmt.Sprintf("failed to load %s HTTP server configuration : %s", svcName, err))
		exitCode = 1
		return
	}

	db, err := mongoclient.Setup(envPrefixMongo)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to setup mongo database : %s", err))
		exitCode = 1
		return
	}
	if err := vitalsmongo.EnsureIndexes(ctx, db); err != nil {
		logger.Error(fmt.Sprintf("failed to ensure mongo indexes : %s", err))
		exitCode = 1
		return
	}

	rmConn, err := redisclient.Connect(cfg.RouteMapURL)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to setup route map redis client : %s", err))
		exitCode = 1
		return
	}
	defer rmConn.Close()

	pub, err := brokers.NewPublisher(cfg.BrokerURL)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to connect to message broker: %s", err))
		exitCode = 1
		return
	}
	defer pub.Close()

	emailConfig := email.Config{}
	if err := env.Parse(&emailConfig); err != nil {
		logger.Error(fmt.Sprintf("failed to load e-mail configuration : %s", err))
		exitCode = 1
		return
	}
	agent, err := email.New(&emailConfig)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to configure e-mail agent: %s", err))
		exitCode = 1
		return
	}
	notifier := smtp.New(agent, cfg.AlertEmails)

	aggregatorConfig := vitals.AggregatorConfig{}
	if err := env.ParseWithOptions(&aggregatorConfig, env.Options{Prefix: envPrefix}); err != nil {
		logger.Error(fmt.Sprintf("failed to load aggregator configuration : %s", err))
		exitCode = 1
		return
	}
	aggregator := vitals.NewAggregator(aggregatorConfig, notifier, logger)

	routes := vitalsredis.NewRouteMapRepository(rmConn, routeMapPrefix, cfg.RouteMapTTL)
	patients := vitalsmongo.NewPatientRepository(db, uuid.New())
	devices := vitalsmongo.NewDeviceRepository(db)
	hospitals := vitalsmongo.NewHospitalRepository(db)
	readings := vitalsmongo.NewReadingRepository(db)
	status := vitalsmongo.NewStatusRepository(db)

	resolver := vitals.NewResolver(patients, devices, hospitals, routes, logger)
	svc := vitals.New(resolver, readings, status, pub, notifier, aggregator, cfg.StoreTimeout, logger)
	svc = api.LoggingMiddleware(svc, logger)
	counter, latency := internal.MakeMetrics(svcName, "ingest")
	svc = api.MetricsMiddleware(svc, counter, latency)

	pipelineConfig := vitals.PipelineConfig{}
	if err := env.ParseWithOptions(&pipelineConfig, env.Options{Prefix: envPrefix}); err != nil {
		logger.Error(fmt.Sprintf("failed to load pipeline configuration : %s", err))
		exitCode = 1
		return
	}
	pipeline := vitals.NewPipeline(svc, pipelineConfig, logger)
	pipeline.Start(ctx)

	gateways := []*vitalsmqtt.Gateway{}
	for _, fam := range []struct {
		family vitals.Family
		prefix string
	}{
		{vitals.FamilyAVA4, envPrefixAVA4},
		{vitals.FamilyKati, envPrefixKati},
		{vitals.FamilyQubeVital, envPrefixQube},
	} {
		gwConfig := vitalsmqtt.Config{}
		if err := env.ParseWithOptions(&gwConfig, env.Options{Prefix: fam.prefix}); err != nil {
			logger.Error(fmt.Sprintf("failed to load %s gateway configuration : %s", fam.family, err))
			exitCode = 1
			return
		}
		if gwConfig.ClientID == "" {
			gwConfig.ClientID = fmt.Sprintf("%s-%s-%s", svcName, fam.family, cfg.InstanceID)
		}

		gw := vitalsmqtt.NewGateway(fam.family, gwConfig, pipeline, aggregator, logger)
		if err := gw.Start(ctx); err != nil {
			logger.Error(fmt.Sprintf("failed to start %s gateway : %s", fam.family, err))
			exitCode = 1
			return
		}
		gateways = append(gateways, gw)
	}
	defer func() {
		for _, gw := range gateways {
			if err := gw.Stop(); err != nil {
				logger.Warn(fmt.Sprintf("failed to stop gateway : %s", err))
			}
		}
		if err := pipeline.Stop(); err != nil {
			logger.Warn(fmt.Sprintf("failed to drain pipeline : %s", err))
		}
	}()

	hs := httpserver.New(ctx, cancel, svcName, httpServerConfig, api.MakeHandler(svcName, cfg.InstanceID), logger)

	g.Go(func() error {
		return hs.Start()
	})

	g.Go(func() error {
		return server.StopSignalHandler(ctx, cancel, logger, svcName, hs)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service terminated: %s", svcName, err))
		exitCode = 1
	}
}
