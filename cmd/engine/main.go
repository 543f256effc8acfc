package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/saaj376/SafeTrace/pkg/config"
	"github.com/saaj376/SafeTrace/pkg/crowd"
	"github.com/saaj376/SafeTrace/pkg/engine/routingalgorithm"
	"github.com/saaj376/SafeTrace/pkg/environment"
	"github.com/saaj376/SafeTrace/pkg/fusion"
	"github.com/saaj376/SafeTrace/pkg/graphloader"
	"github.com/saaj376/SafeTrace/pkg/kv"
	"github.com/saaj376/SafeTrace/pkg/metrics"
	"github.com/saaj376/SafeTrace/pkg/monitor"
	"github.com/saaj376/SafeTrace/pkg/risk"
	"github.com/saaj376/SafeTrace/pkg/routeassembler"
	"github.com/saaj376/SafeTrace/pkg/server/rest"
	"github.com/saaj376/SafeTrace/pkg/server/rest/service"
	"github.com/saaj376/SafeTrace/pkg/snap"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

//	@title			SafeTrace API
//	@version		1.0
//	@description	safety-weighted pedestrian routing engine

// @host		localhost:5000
// @BasePath	/api
// @schemes	http
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	graph, err := graphloader.LoadGraph(cfg.GraphFilePath)
	if err != nil {
		log.Fatal(err)
	}
	logger.Info("road network loaded", slog.String("file", cfg.GraphFilePath),
		slog.Int("nodes", graph.NumNodes()), slog.Int("edges", graph.NumEdges()))

	riskProvider, err := risk.LoadCSV(cfg.RiskCSVPath)
	if err != nil {
		// routing still works, every node scores the unloaded default
		logger.Warn("risk table unavailable, using default scores",
			slog.String("file", cfg.RiskCSVPath), slog.Any("err", err))
		riskProvider = risk.NewEmptyProvider()
	} else {
		logger.Info("risk table loaded", slog.Int("records", riskProvider.NumRecords()))
	}

	db, err := badger.Open(badger.DefaultOptions(cfg.VisitDBPath).WithLogger(nil))
	if err != nil {
		log.Fatal(err)
	}
	visitStore := kv.NewVisitStore(db)
	defer visitStore.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracker := crowd.NewTracker(graph, visitStore, cfg.CrowdWindow, logger)
	go tracker.Run(ctx, cfg.CrowdRefreshInterval)

	envCtx := environment.NewContext(cfg.NightStartHour, cfg.NightEndHour, nil)
	calc := fusion.NewCalculator(graph, riskProvider, envCtx)
	routing := routingalgorithm.NewRouteAlgorithm(graph)
	snapper := snap.NewRoadSnapper(graph, cfg.SnapMaxDistanceKm)
	assembler := routeassembler.NewAssembler(graph)

	navigationSvc := service.NewNavigationService(graph, snapper, routing, calc,
		tracker, assembler, riskProvider, cfg.RouteTimeout)

	journeyMonitor := monitor.NewMonitor(riskProvider, tracker, logger)
	journeyMonitor.SetThresholds(cfg.DeviationThresholdMeters, cfg.HazardLookaheadNodes,
		cfg.HazardRiskScore, cfg.AlertCooldown)
	rerouter := monitor.NewRerouteCoordinator(journeyMonitor, navigationSvc, logger)

	m := metrics.NewCollector()

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(rest.PromeHttpMiddleware(m))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", m.Handler())
	rest.NavigatorRouter(r, navigationSvc, journeyMonitor, rerouter, m)

	logger.Info("server started", slog.String("addr", cfg.ListenAddr))
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, r))
}
