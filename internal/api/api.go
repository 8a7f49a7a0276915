// Package api implements the central router's control plane (C8, spec
// §4.8): the /api/status and /api/nodes REST surface, the embedded
// static UI bundle, and a /metrics endpoint. Grounded on
// original_source/central-router/src/web/{mod,status,nodes}.rs for the
// exact routes/JSON shapes, routed with github.com/gorilla/mux per the
// other_examples manifests pairing raw capture with gorilla/mux.
package api

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TimeToogo/chain-net/internal/state"
)

//go:embed web/*
var webFS embed.FS

// Server is the central router's HTTP control plane.
type Server struct {
	central *state.Central
	log     logr.Logger
	http    *http.Server
}

// New builds the control-plane HTTP server, bound to 0.0.0.0:port (spec
// §6: "Binds 0.0.0.0:<port>").
func New(central *state.Central, reg *prometheus.Registry, port uint16, log logr.Logger) (*Server, error) {
	static, err := fs.Sub(webFS, "web")
	if err != nil {
		return nil, err
	}

	s := &Server{central: central, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/api/status", s.getStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/status", s.postStatus).Methods(http.MethodPost)
	r.HandleFunc("/api/nodes", s.getNodes).Methods(http.MethodGet)
	r.HandleFunc("/api/nodes", s.postNodes).Methods(http.MethodPost)
	r.HandleFunc("/api/nodes", s.putNodes).Methods(http.MethodPut)
	r.HandleFunc("/api/nodes", s.deleteNodes).Methods(http.MethodDelete)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.PathPrefix("/").Handler(http.FileServer(http.FS(static))).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:    bindAddr(port),
		Handler: r,
	}
	return s, nil
}

func bindAddr(port uint16) string {
	return fmt.Sprintf("0.0.0.0:%d", port)
}

// ListenAndServe runs the HTTP server until Shutdown is called.
func (s *Server) ListenAndServe() error {
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server, the Go-native rendering of
// the spec's 500ms termination-flag poll (an idiomatic http.Server
// already cooperates with context cancellation instead of needing a
// manual poll loop).
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusDTO{On: s.central.On()})
}

func (s *Server) postStatus(w http.ResponseWriter, r *http.Request) {
	var body statusDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.central.SetOn(body.On)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) getNodes(w http.ResponseWriter, r *http.Request) {
	you, _ := peerIP(r) // a non-IPv4/loopback peer simply gets you=false for every node

	nodes := s.central.Nodes()
	out := make([]nodeDTO, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, toNodeDTO(n, you != nil && n.IP.Equal(you)))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) postNodes(w http.ResponseWriter, r *http.Request) {
	ip, err := peerIP(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var body newNodeDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.central.UpsertByIP(ip, body.Name, time.Now())
	w.WriteHeader(http.StatusOK)
}

func (s *Server) putNodes(w http.ResponseWriter, r *http.Request) {
	var body reorderDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if ok := s.central.Reorder(body.CurI, body.NewI); !ok {
		s.log.V(1).Info("reorder: index out of range", "cur_i", body.CurI, "new_i", body.NewI)
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) deleteNodes(w http.ResponseWriter, r *http.Request) {
	ip, err := peerIP(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.central.DeleteByIP(ip)
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
