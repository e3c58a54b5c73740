// Package restapi exposes the façade's operations as JSON HTTP endpoints (spec.md
// §6 "REST surface"), grounded on the teacher's gorilla/mux web service shape
// (app/gtfs-tripupdate-svc/tripupdate/web_service.go).
package restapi

import (
	"context"
	logger "log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/OpenTransitTools/fleetsim/business/facade"
)

// NewServer builds the configured http.Server routing the REST surface of
// spec.md §6 to handlers backed by f.
func NewServer(log *logger.Logger, f *facade.Facade, addr string) *http.Server {
	h := &handlers{log: log, facade: f}

	r := mux.NewRouter()
	r.Handle("/", &defaultHandler{})
	r.HandleFunc("/api/vehicle/create-new", h.createVehicle).Methods(http.MethodPost)
	r.HandleFunc("/api/vehicle/create-crisscross", h.createCrissCross).Methods(http.MethodPost)
	r.HandleFunc("/api/vehicle/get-vehicle-state/{id}", h.getVehicleState).Methods(http.MethodGet)
	r.HandleFunc("/api/vehicle/get-vehicle-directions/{id}", h.getVehicleDirections).Methods(http.MethodGet)
	r.HandleFunc("/api/vehicle/get-all-vehicle-states", h.getAllVehicleStates).Methods(http.MethodGet)
	r.HandleFunc("/api/vehicle/reset-server", h.resetServer).Methods(http.MethodGet)
	r.HandleFunc("/api/trips/get-directions", h.getDirections).Methods(http.MethodPost)
	r.HandleFunc("/api/position/get-position", h.getPosition).Methods(http.MethodPost)

	return &http.Server{
		Addr:         addr,
		Handler:      r,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Run starts srv and blocks until shutdownSignal fires, then gracefully shuts down
// with a 5 second timeout (spec.md §6, grounded on the teacher's runWebService).
func Run(log *logger.Logger, srv *http.Server, shutdownSignal chan os.Signal) error {
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("restapi: ListenAndServe ended: %v", err)
		}
	}()
	log.Printf("restapi: listening on %s", srv.Addr)

	<-shutdownSignal
	log.Printf("restapi: shutting down on signal")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// defaultHandler answers the root path with a liveness check, matching the
// teacher's defaultHttpHandler.
type defaultHandler struct{}

func (h *defaultHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Add("Application-Status", "OK")
}

func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func queryBool(r *http.Request, name string) bool {
	return r.URL.Query().Get(name) == "true"
}
