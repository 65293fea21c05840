package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/portal-cli/internal/dedupe"
	"github.com/sells-group/portal-cli/internal/franchisee"
	"github.com/sells-group/portal-cli/internal/model"
	"github.com/sells-group/portal-cli/internal/store"
	"github.com/sells-group/portal-cli/internal/valuation"
)

var servePort int

// apiServer bundles the dependencies of the HTTP API. registry and merger
// are nil on the sqlite driver; the registry endpoints then answer 503.
type apiServer struct {
	valuations store.Store
	registry   franchisee.Store
	merger     *franchisee.Merger
	detector   *dedupe.Detector
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portal HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initValuationStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		api := &apiServer{
			valuations: st,
			detector: dedupe.NewDetector(dedupe.Options{
				NameThreshold:    cfg.Dedupe.NameThreshold,
				CompanyThreshold: cfg.Dedupe.CompanyThreshold,
			}),
		}

		if cfg.Store.Driver == "postgres" {
			pool, closePool, err := initFranchiseePool(ctx)
			if err != nil {
				return err
			}
			defer closePool()
			api.registry = franchisee.NewPostgresStore(pool)
			api.merger = franchisee.NewMerger(pool)
		} else {
			zap.L().Warn("registry endpoints disabled without postgres",
				zap.String("driver", cfg.Store.Driver))
		}

		handler := cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		})(api.routes())

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: handler,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/valuations/project", s.handleProject)
		r.Post("/valuations", s.handleCreateValuation)
		r.Get("/valuations", s.handleListValuations)
		r.Get("/valuations/{id}", s.handleGetValuation)
		r.Get("/duplicates", s.handleDuplicates)
		r.Post("/merges", s.handleMerge)
	})

	return r
}

// valuationRequest is the JSON shape shared by the project and create
// endpoints.
type valuationRequest struct {
	FranchiseeID string                `json:"franchisee_id"`
	Label        string                `json:"label"`
	Inputs       model.ValuationInputs `json:"inputs"`
	YearlyData   []model.YearlyData    `json:"yearly_data"`
}

func (s *apiServer) project(req *valuationRequest) (*model.Valuation, error) {
	if req.Inputs.RemainingYears == 0 && req.Inputs.ChangeDate != nil && req.Inputs.EndDate != nil {
		req.Inputs.RemainingYears = valuation.RemainingYears(*req.Inputs.ChangeDate, *req.Inputs.EndDate)
	}
	if err := valuation.ValidateInputs(req.Inputs); err != nil {
		return nil, err
	}

	yearly := valuation.DeriveYearSlots(req.Inputs.RemainingYears, req.YearlyData)
	res := valuation.Project(req.Inputs, yearly)

	return &model.Valuation{
		FranchiseeID: req.FranchiseeID,
		Label:        req.Label,
		Inputs:       req.Inputs,
		YearlyData:   yearly,
		Projections:  res.Projections,
		TotalPrice:   res.TotalPrice,
	}, nil
}

func (s *apiServer) handleProject(w http.ResponseWriter, r *http.Request) {
	var req valuationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	v, err := s.project(&req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *apiServer) handleCreateValuation(w http.ResponseWriter, r *http.Request) {
	var req valuationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	v, err := s.project(&req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.valuations.CreateValuation(r.Context(), v); err != nil {
		zap.L().Error("create valuation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save valuation")
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *apiServer) handleGetValuation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	v, err := s.valuations.GetValuation(r.Context(), id)
	if err != nil {
		zap.L().Error("get valuation failed", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load valuation")
		return
	}
	if v == nil {
		writeError(w, http.StatusNotFound, "valuation not found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *apiServer) handleListValuations(w http.ResponseWriter, r *http.Request) {
	list, err := s.valuations.ListValuations(r.Context(), store.ValuationFilter{
		FranchiseeID: r.URL.Query().Get("franchisee_id"),
	})
	if err != nil {
		zap.L().Error("list valuations failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list valuations")
		return
	}
	if list == nil {
		list = []model.Valuation{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *apiServer) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeError(w, http.StatusServiceUnavailable, "registry requires the postgres driver")
		return
	}

	records, err := s.registry.ListFranchisees(r.Context(), franchisee.ListFilter{
		City:  r.URL.Query().Get("city"),
		State: r.URL.Query().Get("state"),
	})
	if err != nil {
		zap.L().Error("list franchisees failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list franchisees")
		return
	}

	groups := s.detector.Detect(records)
	if groups == nil {
		groups = []model.DuplicateGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *apiServer) handleMerge(w http.ResponseWriter, r *http.Request) {
	if s.merger == nil {
		writeError(w, http.StatusServiceUnavailable, "registry requires the postgres driver")
		return
	}

	var req struct {
		PrimaryID    string   `json:"primary_id"`
		DuplicateIDs []string `json:"duplicate_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	merged, err := s.merger.Merge(r.Context(), req.PrimaryID, req.DuplicateIDs)

	result := model.MergeResult{Success: err == nil, MergedFranchisee: merged}
	if err != nil {
		result.Error = err.Error()
		zap.L().Error("merge failed",
			zap.String("primary_id", req.PrimaryID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
