package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/stackplan/pkg/cache"
	stackerrors "github.com/example/stackplan/pkg/errors"
	"github.com/example/stackplan/pkg/history"
	"github.com/example/stackplan/pkg/pipeline"
)

const (
	// maxOrderBody bounds the request body for POST /api/v1/order.
	maxOrderBody = 1 << 20 // 1 MiB

	// defaultHistoryLimit is how many records GET /api/v1/history returns
	// when no limit is given.
	defaultHistoryLimit = 20

	shutdownTimeout = 10 * time.Second
)

// serveCommand creates the serve command, which runs the ordering HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		redisAddr string
		mongoURI  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the stack ordering HTTP API",
		Long: `Run the stack ordering HTTP API.

Endpoints:
  POST /api/v1/order     Compute an order for submitted stack declarations
  GET  /api/v1/history   List recently computed orders (requires --mongo-uri)
  GET  /healthz          Liveness probe

With --redis-addr, computed orders are cached in Redis. With --mongo-uri,
every successful order is recorded in MongoDB.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, redisAddr, mongoURI)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address for the plan cache (e.g. localhost:6379)")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB URI for run history (e.g. mongodb://localhost:27017)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, redisAddr, mongoURI string) error {
	planCache := cache.NewNullCache()
	if redisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, redisAddr)
		if err != nil {
			return err
		}
		planCache = rc
		c.Logger.Info("connected plan cache", "redis", redisAddr)
	}
	defer planCache.Close()

	store := history.NewNullStore()
	if mongoURI != "" {
		ms, err := history.NewMongoStore(ctx, mongoURI)
		if err != nil {
			return err
		}
		store = ms
		c.Logger.Info("connected run history", "mongodb", mongoURI)
	}
	defer store.Close(context.Background())

	srv := &server{
		runner: pipeline.NewRunner(planCache, c.Logger),
		store:  store,
		logger: c.Logger,
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// server holds the API's dependencies.
type server struct {
	runner *pipeline.Runner
	store  history.Store
	logger *log.Logger
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/order", s.handleOrder)
		r.Get("/history", s.handleHistory)
	})

	return r
}

// logRequests logs one structured line per request.
func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// orderRequest is the POST /api/v1/order body.
type orderRequest struct {
	Stacks []pipeline.StackSpec `json:"stacks"`
}

// orderResponse is the success body for POST /api/v1/order.
type orderResponse struct {
	RunID string   `json:"run_id"`
	Order []string `json:"order"`
}

// errorResponse is the body for all error statuses.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// handleOrder computes a deployment order for the submitted declarations.
// Validation failures in the declared graph (unknown dependencies, cycles)
// are 422; malformed requests are 400.
func (s *server) handleOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxOrderBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if len(req.Stacks) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no stacks declared"})
		return
	}

	order, err := pipeline.OrderSpecs(req.Stacks)
	if err != nil {
		status := http.StatusBadRequest
		code := stackerrors.GetCode(err)
		if code == stackerrors.ErrCodeUnknownDependency || code == stackerrors.ErrCodeCircularDependency {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, errorResponse{Error: stackerrors.UserMessage(err), Code: string(code)})
		return
	}

	rec := history.Record{
		ID:        uuid.NewString(),
		Order:     order,
		Stacks:    len(req.Stacks),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Save(r.Context(), rec); err != nil {
		s.logger.Warn("failed to record run", "err", err)
	}

	writeJSON(w, http.StatusOK, orderResponse{RunID: rec.ID, Order: order})
}

// handleHistory lists recently computed orders, newest first.
func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &limit); err != nil || limit < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
	}

	records, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("history query failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "history unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string][]history.Record{"records": records})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
