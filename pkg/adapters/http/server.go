// Package http exposes the engine over a REST surface for visual editor
// frontends: graph editing, execution and inspection.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weftlabs/weft"
	"github.com/weftlabs/weft/pkg/domain"
	"github.com/weftlabs/weft/pkg/registry"
)

// Engine defines what the HTTP surface needs from the workflow engine.
type Engine interface {
	AddNode(kind string, fields map[string]string) (string, error)
	RemoveNode(id string) error
	Connect(sourceNode, sourcePort, targetNode, targetPort string) (string, error)
	Disconnect(edgeID string) error
	SetField(nodeID, port, value string) error
	Execute(ctx context.Context, nodeID string, mode domain.ExecutionMode) error
	NodeState(nodeID string) domain.RunState
	Node(id string) (domain.Node, bool)
	Workflow() *domain.Workflow
	Registry() *registry.Registry
}

// Ensure the facade satisfies the surface.
var _ Engine = (*weft.Engine)(nil)

// Server wires the engine into chi routes.
type Server struct {
	engine Engine
	logger *slog.Logger
}

// NewHandler creates the HTTP handler for the engine. A nil metrics
// gatherer disables the /metrics endpoint.
func NewHandler(engine Engine, logger *slog.Logger, gatherer prometheus.Gatherer) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{engine: engine, logger: logger}

	r := chi.NewRouter()
	r.Get("/healthz", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Get("/workflow", s.getWorkflow)
	r.Get("/kinds", s.getKinds)
	r.Post("/nodes", s.postNode)
	r.Delete("/nodes/{id}", s.deleteNode)
	r.Get("/nodes/{id}", s.getNode)
	r.Get("/nodes/{id}/state", s.getNodeState)
	r.Post("/nodes/{id}/fields", s.postNodeField)
	r.Post("/nodes/{id}/execute", s.postNodeExecute)
	r.Post("/edges", s.postEdge)
	r.Delete("/edges/{id}", s.deleteEdge)

	if gatherer != nil {
		r.Get("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}).ServeHTTP)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrEdgeNotFound),
		errors.Is(err, domain.ErrWorkflowNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrExecutionInFlight),
		errors.Is(err, domain.ErrDuplicateNode):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrCycleDetected):
		status = http.StatusUnprocessableEntity
	default:
		var integrity *domain.GraphIntegrityError
		if errors.As(err, &integrity) {
			status = http.StatusUnprocessableEntity
		}
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "weft-http",
		"version": weft.Version,
	})
}

func (s *Server) getWorkflow(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Workflow())
}

func (s *Server) getKinds(w http.ResponseWriter, r *http.Request) {
	reg := s.engine.Registry()
	specs := make([]registry.KindSpec, 0)
	for _, kind := range reg.Kinds() {
		if spec, ok := reg.Lookup(kind); ok {
			specs = append(specs, spec)
		}
	}
	s.writeJSON(w, http.StatusOK, specs)
}

type addNodeRequest struct {
	Kind   string            `json:"kind"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Server) postNode(w http.ResponseWriter, r *http.Request) {
	var body addNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("postNode: invalid request body", "error", err)
		return
	}
	if body.Kind == "" {
		http.Error(w, "Field 'kind' is required", http.StatusBadRequest)
		return
	}

	id, err := s.engine.AddNode(body.Kind, body.Fields)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.RemoveNode(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getNode(w http.ResponseWriter, r *http.Request) {
	node, ok := s.engine.Node(chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, domain.ErrNodeNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, node)
}

func (s *Server) getNodeState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.engine.Node(id); !ok {
		s.writeError(w, domain.ErrNodeNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"id":    id,
		"state": string(s.engine.NodeState(id)),
	})
}

type setFieldRequest struct {
	Port  string `json:"port"`
	Value string `json:"value"`
}

func (s *Server) postNodeField(w http.ResponseWriter, r *http.Request) {
	var body setFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("postNodeField: invalid request body", "error", err)
		return
	}

	if err := s.engine.SetField(chi.URLParam(r, "id"), body.Port, body.Value); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postNodeExecute(w http.ResponseWriter, r *http.Request) {
	mode := domain.ModeTriggered
	if r.URL.Query().Get("mode") == "manual" {
		mode = domain.ModeManual
	}

	if err := s.engine.Execute(r.Context(), chi.URLParam(r, "id"), mode); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}

type addEdgeRequest struct {
	SourceNode string `json:"sourceNode"`
	SourcePort string `json:"sourcePort"`
	TargetNode string `json:"targetNode"`
	TargetPort string `json:"targetPort"`
}

func (s *Server) postEdge(w http.ResponseWriter, r *http.Request) {
	var body addEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("postEdge: invalid request body", "error", err)
		return
	}
	if body.SourceNode == "" || body.TargetNode == "" {
		http.Error(w, "Fields 'sourceNode' and 'targetNode' are required", http.StatusBadRequest)
		return
	}

	id, err := s.engine.Connect(body.SourceNode, body.SourcePort, body.TargetNode, body.TargetPort)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) deleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Disconnect(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
