// Command eqservice runs the inclusion proof service (C5): it dials a DA
// node, opens the job store, registers a prover backend, and serves the
// Inclusion gRPC service while a background reconciler resumes and
// advances in-flight jobs.
//
// Usage:
//
//	eqservice [flags]
//
// Flags:
//
//	--listen      gRPC bind address (default: [::1]:50051)
//	--da          DA node WebSocket RPC address (default: ws://localhost:26658)
//	--datadir     Job store directory (default: ./eqservice-data)
//	--metrics     Bind address for the Prometheus /metrics endpoint, empty disables it
//	--verbosity   Log level: debug, info, warn, error (default: info)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/eqlabs/eq-service/daclient"
	"github.com/eqlabs/eq-service/eqpb"
	stdlog "github.com/eqlabs/eq-service/log"
	"github.com/eqlabs/eq-service/metrics"
	"github.com/eqlabs/eq-service/prover"
	"github.com/eqlabs/eq-service/service"
	"github.com/eqlabs/eq-service/store"
)

var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, exit, code := parseFlags(args)
	if exit {
		return code
	}

	level := parseLevel(cfg.Verbosity)
	stdlog.SetDefault(stdlog.New(level))
	logger := stdlog.Module("main")

	logger.Info("eqservice starting", "version", version, "commit", commit,
		"listen", cfg.Net.ListenAddr, "da", cfg.Net.DARpcAddr, "datadir", cfg.Net.StoreDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	da, err := daclient.Dial(ctx, cfg.Net.DARpcAddr)
	if err != nil {
		logger.Error("dial DA node failed", "error", err)
		return 2
	}
	defer da.Close()

	st, err := store.Open(cfg.Net.StoreDir)
	if err != nil {
		logger.Error("open job store failed", "error", err)
		return 2
	}
	defer st.Close()

	backends := prover.NewRegistry()
	if err := backends.Register("mock", prover.NewMockBackend()); err != nil {
		logger.Error("register prover backend failed", "error", err)
		return 2
	}

	svcCfg := service.DefaultConfig()
	inclusionSvc, err := service.New(svcCfg, da, st, backends)
	if err != nil {
		logger.Error("construct inclusion service failed", "error", err)
		return 2
	}

	mockBackend, err := backends.Get(svcCfg.ProverBackend)
	if err != nil {
		logger.Error("lookup prover backend failed", "error", err)
		return 2
	}
	reconciler := service.NewReconciler(st, mockBackend)

	lifecycle := service.NewLifecycleManager(service.DefaultLifecycleConfig())
	if err := lifecycle.Register(reconciler, 1); err != nil {
		logger.Error("register reconciler failed", "error", err)
		return 2
	}
	if err := lifecycle.Register(inclusionSvc, 2); err != nil {
		logger.Error("register inclusion service failed", "error", err)
		return 2
	}
	if errs := lifecycle.StartAll(); len(errs) > 0 {
		for _, e := range errs {
			logger.Error("service failed to start", "error", e)
		}
		return 2
	}

	go reconciler.Run(ctx, time.Duration(cfg.Net.ReconcileIntervalSecs)*time.Second)

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	lis, err := net.Listen("tcp", cfg.Net.ListenAddr)
	if err != nil {
		logger.Error("listen failed", "error", err)
		return 2
	}
	grpcServer := grpc.NewServer()
	eqpb.RegisterInclusionServer(grpcServer, inclusionSvc)

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc server stopped", "error", err)
		}
	}()
	logger.Info("grpc server listening", "addr", cfg.Net.ListenAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	grpcServer.GracefulStop()
	cancel()
	if errs := lifecycle.StopAll(); len(errs) > 0 {
		for _, e := range errs {
			logger.Error("service failed to stop cleanly", "error", e)
		}
	}
	return 0
}

func serveMetrics(addr string, logger *stdlog.Logger) {
	exporter := metrics.NewPrometheusExporter(metrics.DefaultRegistry, metrics.DefaultPrometheusConfig())
	mux := http.NewServeMux()
	mux.Handle("/metrics", exporter.Handler())
	logger.Info("metrics server listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "error", err)
	}
}

func parseLevel(verbosity string) slog.Level {
	switch verbosity {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type config struct {
	Net         service.NetworkConfig
	MetricsAddr string
	Verbosity   string
}

func parseFlags(args []string) (config, bool, int) {
	cfg := config{Net: service.DefaultNetworkConfig()}
	fs := flag.NewFlagSet("eqservice", flag.ContinueOnError)

	fs.StringVar(&cfg.Net.ListenAddr, "listen", cfg.Net.ListenAddr, "gRPC bind address")
	fs.StringVar(&cfg.Net.DARpcAddr, "da", cfg.Net.DARpcAddr, "DA node WebSocket RPC address")
	fs.StringVar(&cfg.Net.StoreDir, "datadir", cfg.Net.StoreDir, "job store directory")
	fs.StringVar(&cfg.MetricsAddr, "metrics", "", "bind address for the /metrics endpoint, empty disables it")
	fs.StringVar(&cfg.Verbosity, "verbosity", "info", "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return cfg, true, 1
	}
	if cfg.Net.ReconcileIntervalSecs <= 0 {
		fmt.Fprintln(os.Stderr, "eqservice: reconcile interval must be positive")
		return cfg, true, 1
	}
	return cfg, false, 0
}
