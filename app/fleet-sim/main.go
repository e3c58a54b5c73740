package main

import (
	"context"
	"fmt"
	logger "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf"

	"github.com/OpenTransitTools/fleetsim/business/data/directions"
	"github.com/OpenTransitTools/fleetsim/business/data/routing"
	datastore "github.com/OpenTransitTools/fleetsim/business/data/store"
	"github.com/OpenTransitTools/fleetsim/business/scheduler"
	"github.com/OpenTransitTools/fleetsim/foundation/store"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "FLEET_SIM : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		Args  conf.Args
		Store struct {
			Addr     string `conf:"default:127.0.0.1:6379"`
			Password string `conf:"default:,noprint"`
			DB       int    `conf:"default:0"`
		}
		Scheduler struct {
			PollingPeriod  time.Duration `conf:"default:100ms"`
			UpdatePeriod   time.Duration `conf:"default:250ms"`
			VehicleTimeout time.Duration `conf:"default:30s"`
			JitterCapacity int           `conf:"default:200"`
			MaxInFlight    int           `conf:"default:10"`
		}
		Directions struct {
			URL string `conf:"default:"`
		}
		Host struct {
			ID string `conf:"default:"`
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Run a fleet simulation scheduler instance against a shared store"
	const prefix = "FLEET_SIM"
	if err := conf.Parse(os.Args[1:], prefix, &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	log.Printf("main: Started : Application initializing : version %s", build)
	defer log.Println("main: Completed")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Printf("main: Config :\n%v\n", out)

	log.Println("main: Initializing shared store support")
	client, err := store.Open(store.Config{
		Addr:     cfg.Store.Addr,
		Password: cfg.Store.Password,
		DB:       cfg.Store.DB,
	})
	if err != nil {
		return fmt.Errorf("connecting to store: %w", err)
	}
	defer func() {
		log.Printf("main: Store Stopping : %s", cfg.Store.Addr)
		if err := client.Close(); err != nil {
			log.Printf("main: error closing store connection: %v", err)
		}
	}()

	dataStore := datastore.New(client)

	hostID := cfg.Host.ID
	if hostID == "" {
		hostID, err = os.Hostname()
		if err != nil || hostID == "" {
			hostID = "UNKNOWN"
		}
	}
	log.Printf("main: Running as host %q", hostID)

	var provider directions.Provider
	if cfg.Directions.URL != "" {
		provider = directions.NewHTTPProvider(cfg.Directions.URL, &http.Client{Timeout: 10 * time.Second})
	} else {
		log.Println("main: no directions URL configured, using an in-memory fake provider")
		provider = directions.FakeProvider{}
	}
	cache := routing.NewCache(provider, cfg.Scheduler.MaxInFlight)

	schedulerCfg := scheduler.Config{
		PollingPeriod:  cfg.Scheduler.PollingPeriod,
		UpdatePeriod:   cfg.Scheduler.UpdatePeriod,
		VehicleTimeout: cfg.Scheduler.VehicleTimeout,
		ManagerHost:    hostID,
		JitterCapacity: cfg.Scheduler.JitterCapacity,
	}
	sched := scheduler.New(log, dataStore, cache, schedulerCfg)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errs := make(chan error, 3)
	go func() { errs <- sched.Run(ctx, shutdown) }()
	go func() { errs <- sched.RunSnapshotLoop(ctx, shutdown) }()
	go func() { errs <- sched.RunReconcileLoop(ctx, shutdown) }()

	return <-errs
}
