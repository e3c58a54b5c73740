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

	"github.com/OpenTransitTools/fleetsim/app/fleet-api/restapi"
	"github.com/OpenTransitTools/fleetsim/business/data/directions"
	"github.com/OpenTransitTools/fleetsim/business/data/routing"
	datastore "github.com/OpenTransitTools/fleetsim/business/data/store"
	"github.com/OpenTransitTools/fleetsim/business/facade"
	"github.com/OpenTransitTools/fleetsim/business/scheduler"
	"github.com/OpenTransitTools/fleetsim/foundation/store"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "FLEET_API : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		Args conf.Args
		Web  struct {
			Addr string `conf:"default:0.0.0.0:8080"`
		}
		Store struct {
			Addr     string `conf:"default:127.0.0.1:6379"`
			Password string `conf:"default:,noprint"`
			DB       int    `conf:"default:0"`
		}
		Scheduler struct {
			JitterCapacity int `conf:"default:200"`
			MaxInFlight    int `conf:"default:10"`
		}
		Directions struct {
			URL string `conf:"default:"`
		}
		Geocoder struct {
			URL    string `conf:"default:"`
			APIKey string `conf:"default:,noprint"`
		}
		Host struct {
			ID string `conf:"default:"`
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Serve the fleet simulation REST API over a shared store"
	const prefix = "FLEET_API"
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

	var provider directions.Provider
	if cfg.Directions.URL != "" {
		provider = directions.NewHTTPProvider(cfg.Directions.URL, &http.Client{Timeout: 10 * time.Second})
	} else {
		log.Println("main: no directions URL configured, using an in-memory fake provider")
		provider = directions.FakeProvider{}
	}
	cache := routing.NewCache(provider, cfg.Scheduler.MaxInFlight)

	var geocoder directions.Geocoder
	if cfg.Geocoder.URL != "" {
		geocoder = directions.NewHTTPGeocoder(cfg.Geocoder.URL, cfg.Geocoder.APIKey, &http.Client{Timeout: 10 * time.Second})
	} else {
		log.Println("main: no geocoder URL configured, stops must carry numeric-entry coordinates")
	}

	// fleet-api never runs the tick loop itself (that's fleet-sim's job, possibly on
	// several other hosts against the same store) — it only needs a Scheduler to
	// serve GetVehicleMap off the shared active-ids snapshot, so it runs the
	// snapshot loop alone.
	sched := scheduler.New(log, dataStore, cache, scheduler.Config{
		JitterCapacity: cfg.Scheduler.JitterCapacity,
		ManagerHost:    hostID,
	})

	f := facade.New(dataStore, cache, sched, geocoder, hostID)
	srv := restapi.NewServer(log, f, cfg.Web.Addr)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	snapshotShutdown := make(chan os.Signal, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sched.RunSnapshotLoop(ctx, snapshotShutdown)

	err = restapi.Run(log, srv, shutdown)
	close(snapshotShutdown)
	return err
}
