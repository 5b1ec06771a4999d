package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/provider-matching/internal/config"
	"github.com/example/provider-matching/internal/dispatch"
	"github.com/example/provider-matching/internal/geo"
	"github.com/example/provider-matching/internal/ingest"
	"github.com/example/provider-matching/internal/logging"
	"github.com/example/provider-matching/internal/matcher"
	"github.com/example/provider-matching/internal/models"
	"github.com/example/provider-matching/internal/observability"
	"github.com/example/provider-matching/internal/storage"
)

type Server struct {
	Matcher *matcher.Service
	Feed    geo.Feed
	Kafka   *ingest.KafkaProducer
	WSReg   *dispatch.WSRegistry

	logger *slog.Logger
	mux    *mux.Router
}

// NewServer wires the matching service from config, falling back to
// in-memory stores and feeds when Postgres/Redis are not configured.
func NewServer(cfg config.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewLogger(cfg.LogLevel)
	}

	var feed geo.Feed
	if cfg.RedisAddr != "" {
		feed = geo.NewRedisFeed(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisGeoKey)
	} else {
		feed = geo.NewMemoryFeed()
	}

	var history storage.HistoryStore
	var providers storage.ProviderDirectory
	if cfg.PGDSN != "" {
		if ps, err := storage.NewPostgresStore(cfg.PGDSN); err == nil {
			history, providers = ps, ps
		} else {
			logger.Error("postgres unavailable, using memory store", "error", err)
		}
	}
	if history == nil {
		mem := storage.NewMemoryStore()
		history, providers = mem, mem
	}

	var kp *ingest.KafkaProducer
	if len(cfg.KafkaBrokers) > 0 {
		kp = ingest.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	wsreg := dispatch.NewWSRegistry()
	m := &matcher.Service{
		History:        history,
		Providers:      providers,
		Locations:      feed,
		Dispatch:       dispatch.NewWebhookDispatcher(cfg.OfferWebhookURL, wsreg),
		MinScore:       cfg.MinMatchScore,
		MaxMatches:     cfg.MaxMatches,
		LocationMaxAge: cfg.LocationMaxAge,
	}

	s := &Server{Matcher: m, Feed: feed, Kafka: kp, WSReg: wsreg, logger: logger, mux: mux.NewRouter()}
	s.registerMiddleware()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/v1/matches", s.handleMatch).Methods("POST")
	s.mux.HandleFunc("/internal/provider/locations", s.handleProviderLocation).Methods("POST")
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) }).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/ws/{provider_id}", s.handleWS)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

type matchRequest struct {
	ClientID string          `json:"client_id"`
	Criteria models.Criteria `json:"criteria"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validateCriteria(req.Criteria); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	requestID := uuid.NewString()
	resp, err := s.Matcher.Match(r.Context(), requestID, req.ClientID, req.Criteria)
	if err != nil {
		s.logger.Error("match failed", "request_id", requestID, "client_id", req.ClientID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleProviderLocation(w http.ResponseWriter, r *http.Request) {
	var p models.LocationPing
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validatePing(p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if s.Kafka != nil {
		if err := s.Kafka.PublishPing(p); err != nil {
			s.logger.Warn("kafka publish failed", "provider_id", p.ProviderID, "error", err)
		}
	}
	if err := s.Feed.Upsert(r.Context(), p); err != nil {
		s.logger.Error("feed upsert failed", "provider_id", p.ProviderID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	observability.LocationPings.Inc()
	w.WriteHeader(http.StatusNoContent)
}

var upgrader = websocket.Upgrader{}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["provider_id"]
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the handshake error response
		s.logger.Warn("ws upgrade failed", "provider_id", id, "error", err)
		return
	}
	s.WSReg.Add(id, conn)
	go s.readPump(id, conn)
}

// readPump drains inbound frames so a dropped connection is noticed and its
// session removed. Providers only receive offers; anything they send is
// discarded.
func (s *Server) readPump(id string, conn *websocket.Conn) {
	defer func() {
		s.WSReg.Remove(id, conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
