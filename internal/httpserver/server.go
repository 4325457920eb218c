package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/liljb23/promotrack/internal/attribution"
	"github.com/liljb23/promotrack/internal/config"
	"github.com/liljb23/promotrack/internal/directory"
	"github.com/liljb23/promotrack/internal/docstore"
	"github.com/liljb23/promotrack/internal/metrics"
	"github.com/liljb23/promotrack/internal/models"
	"github.com/liljb23/promotrack/internal/subscription"
	"go.uber.org/zap"
)

// notAvailable is the explicit sentinel the presenter shows for metadata
// that no reconciliation pass could resolve. Never an empty string, so the
// client cannot mistake it for real data.
const notAvailable = "N/A"

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	Store  docstore.Store
	Config *config.Config
	Logger *zap.Logger
	// StoreHealth pings the configured backend; nil for the memory store,
	// which has nothing to reach.
	StoreHealth func(ctx context.Context) error
	Metrics     *metrics.Metrics
}

// Server wires the attribution core and its collaborators behind HTTP.
type Server struct {
	dispatcher    *attribution.Dispatcher
	aggregator    *attribution.Aggregator
	reconciler    *attribution.Reconciler
	subscriptions *subscription.Service
	feed          *directory.Feed
	storeHealth   func(ctx context.Context) error
	logger        *zap.Logger
	config        *config.Config
	metrics       *metrics.Metrics
	mux           *http.ServeMux
}

// NewServer constructs the server and starts the event dispatch workers.
// Call Close on shutdown to drain queued events.
func NewServer(deps *Dependencies) *Server {
	recorder := attribution.NewRecorder(deps.Store, deps.Logger, deps.Metrics)
	dispatcher := attribution.NewDispatcher(
		recorder,
		deps.Config.Events.QueueSize,
		deps.Config.Events.Workers,
		deps.Logger,
		deps.Metrics,
	)

	s := &Server{
		dispatcher:    dispatcher,
		aggregator:    attribution.NewAggregator(deps.Store, deps.Logger, deps.Metrics),
		reconciler:    attribution.NewReconciler(deps.Store, deps.Logger, deps.Metrics),
		subscriptions: subscription.NewService(deps.Store, deps.Logger, deps.Metrics),
		feed:          directory.NewFeed(deps.Store, deps.Logger),
		storeHealth:   deps.StoreHealth,
		logger:        deps.Logger,
		config:        deps.Config,
		metrics:       deps.Metrics,
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	if deps.Config.Metrics.Enabled {
		mux.Handle(deps.Config.Metrics.Path, metrics.Handler())
	}

	// Attribution events (fire-and-forget ingestion)
	mux.HandleFunc("/events", s.handleEvents)

	// Campaign report
	mux.HandleFunc("/reports/", s.handleReportByService)

	// Promoted feed
	mux.HandleFunc("/feed/promoted", s.handlePromotedFeed)

	// Subscriptions
	mux.HandleFunc("/subscriptions", s.handleSubscriptions)
	mux.HandleFunc("/subscriptions/", s.handleSubscriptionByID)

	// Campaign tiers
	mux.HandleFunc("/tiers", s.handleTiers)

	s.mux = mux
	return s
}

// Start launches the background dispatch workers.
func (s *Server) Start(ctx context.Context) {
	s.dispatcher.Start(ctx)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close drains and stops the event dispatcher.
func (s *Server) Close() {
	s.dispatcher.Close()
}

// ---- Health Check ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.storeHealth != nil {
		if err := s.storeHealth(r.Context()); err != nil {
			s.logger.Warn("store health check failed", zap.Error(err))
			s.errorResponse(w, "store unreachable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ---- Attribution Events ----

// handleEvents accepts an attribution event and returns immediately. The
// event is handed to the dispatch queue; validation and storage failures are
// telemetry-grade and never surface to the client.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var ev models.CampaignEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}

	s.dispatcher.Enqueue(ev)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

// ---- Campaign Report ----

func (s *Server) handleReportByService(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	serviceID := strings.TrimPrefix(r.URL.Path, "/reports/")
	if serviceID == "" || strings.Contains(serviceID, "/") {
		http.NotFound(w, r)
		return
	}

	report, err := s.aggregator.Aggregate(r.Context(), serviceID)
	if err != nil {
		s.logger.Error("failed to aggregate report",
			zap.Error(err),
			zap.String("service_id", serviceID),
		)
		s.errorResponse(w, "failed to fetch report", http.StatusInternalServerError)
		return
	}
	if report == nil {
		// Valid empty state: no campaign activity for this service yet.
		s.jsonResponse(w, map[string]any{"report": nil})
		return
	}

	report.Summary = s.reconciler.Reconcile(r.Context(), serviceID, report.Summary)
	s.jsonResponse(w, map[string]any{"report": presentReport(report)})
}

// reportView is the presenter contract: counters plus campaign summary with
// explicit "not available" markers for unresolved metadata.
type reportView struct {
	Impressions int64       `json:"impressions"`
	Clicks      int64       `json:"clicks"`
	Conversions int64       `json:"conversions"`
	Summary     summaryView `json:"summary"`
}

type summaryView struct {
	CampaignID   string `json:"campaign_id"`
	CampaignName string `json:"campaign_name"`
	Price        string `json:"price"`
	Duration     string `json:"duration"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

func presentReport(r *models.ReportSummary) reportView {
	view := reportView{
		Impressions: r.Impressions,
		Clicks:      r.Clicks,
		Conversions: r.Conversions,
		Summary: summaryView{
			CampaignID:   notAvailable,
			CampaignName: notAvailable,
			Price:        notAvailable,
			Duration:     notAvailable,
			StartDate:    notAvailable,
			EndDate:      notAvailable,
		},
	}
	m := r.Summary
	if m == nil {
		return view
	}
	if m.CampaignID != "" {
		view.Summary.CampaignID = m.CampaignID
	}
	if m.CampaignName != nil {
		view.Summary.CampaignName = *m.CampaignName
	}
	if m.Price != nil {
		view.Summary.Price = strconv.FormatFloat(*m.Price, 'f', -1, 64)
	}
	if m.Duration != nil {
		view.Summary.Duration = *m.Duration
	}
	if m.StartDate != nil {
		view.Summary.StartDate = m.StartDate.UTC().Format(time.RFC3339)
	}
	if m.EndDate != nil {
		view.Summary.EndDate = m.EndDate.UTC().Format(time.RFC3339)
	}
	return view
}

// ---- Promoted Feed ----

func (s *Server) handlePromotedFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	feed, err := s.feed.Promoted(r.Context())
	if err != nil {
		s.logger.Error("failed to build promoted feed", zap.Error(err))
		s.errorResponse(w, "failed to fetch feed", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, map[string]any{"services": feed})
}

// ---- Subscriptions ----

func (s *Server) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var p subscription.PurchaseParams
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			s.errorResponse(w, "invalid json", http.StatusBadRequest)
			return
		}
		sub, err := s.subscriptions.Purchase(r.Context(), p)
		if err != nil {
			if errors.Is(err, subscription.ErrUnknownTier) {
				s.errorResponse(w, err.Error(), http.StatusBadRequest)
				return
			}
			s.logger.Error("failed to create subscription", zap.Error(err))
			s.errorResponse(w, "failed to create subscription", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(sub)

	case http.MethodGet:
		entrepreneurID := r.URL.Query().Get("entrepreneur_id")
		if entrepreneurID == "" {
			s.errorResponse(w, "entrepreneur_id is required", http.StatusBadRequest)
			return
		}
		subs, err := s.subscriptions.ListByEntrepreneur(r.Context(), entrepreneurID)
		if err != nil {
			s.logger.Error("failed to list subscriptions", zap.Error(err))
			s.errorResponse(w, "failed to list subscriptions", http.StatusInternalServerError)
			return
		}
		s.jsonResponse(w, map[string]any{"subscriptions": subs})

	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSubscriptionByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/subscriptions/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if r.Method != http.MethodPost || action != "activate" {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.subscriptions.Activate(r.Context(), id); err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to activate subscription",
			zap.Error(err),
			zap.String("subscription_id", id),
		)
		s.errorResponse(w, "failed to activate subscription", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, map[string]string{"status": models.SubscriptionActive})
}

// ---- Tiers ----

func (s *Server) handleTiers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.jsonResponse(w, map[string]any{"tiers": models.Tiers()})
}

// ---- Helpers ----

func (s *Server) jsonResponse(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
