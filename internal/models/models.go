package models

import "time"

type Coord struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyNormal Urgency = "NORMAL"
	UrgencyHigh   Urgency = "HIGH"
	UrgencyUrgent Urgency = "URGENT"
)

// Request statuses as stored by the marketplace.
const (
	StatusPending   = "PENDING"
	StatusMatched   = "MATCHED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// Criteria describes one client request to be matched against providers.
type Criteria struct {
	ServiceTypeID string            `json:"service_type_id"`
	Description   string            `json:"description"`
	Location      *Coord            `json:"location,omitempty"`
	Budget        *float64          `json:"budget,omitempty"`
	Urgency       Urgency           `json:"urgency,omitempty"`
	Preferences   map[string]string `json:"preferences,omitempty"`
}

type Review struct {
	Rating float64 `json:"rating"`
}

// HistoryRecord is one past request of a client, newest-first when listed.
type HistoryRecord struct {
	ServiceTypeID string    `json:"service_type_id"`
	ProviderID    string    `json:"provider_id,omitempty"` // empty when never assigned
	Price         *float64  `json:"price,omitempty"`
	Status        string    `json:"status"`
	Review        *Review   `json:"review,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// UserPatterns is a behavioral summary derived from a client's history.
// It is recomputed per matching call and never persisted.
type UserPatterns struct {
	PreferredPriceRange  PriceRange     `json:"preferred_price_range"`
	AverageRatingGiven   float64        `json:"average_rating_given"`
	MostUsedServiceTypes []string       `json:"most_used_service_types"`
	LoyaltyToProviders   map[string]int `json:"loyalty_to_providers"`
	CompletionRate       float64        `json:"completion_rate"`
}

// ServiceOffering is one service a provider sells.
type ServiceOffering struct {
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

// CandidateProvider is a provider eligible for one matching call.
// Candidates are filtered by service type and availability upstream.
type CandidateProvider struct {
	UserID        string            `json:"user_id"`
	Rating        float64           `json:"rating"` // 0..5
	IsAvailable   bool              `json:"is_available"`
	CompletedJobs int               `json:"completed_jobs_count"`
	Services      []ServiceOffering `json:"services"`
}

// ScoreBreakdown holds the per-factor scores in [0,1] plus the weighted total.
type ScoreBreakdown struct {
	Rating         float64  `json:"rating"`
	Experience     float64  `json:"experience"`
	Availability   float64  `json:"availability"`
	PriceMatch     float64  `json:"price_match"`
	Location       float64  `json:"location"`
	Specialization float64  `json:"specialization"`
	UserHistory    float64  `json:"user_history"`
	Total          float64  `json:"total"`
	Reasons        []string `json:"reasons"`
}

// ProviderLocation is the most recent known position of a provider.
type ProviderLocation struct {
	Lat        float64   `json:"latitude"`
	Lon        float64   `json:"longitude"`
	LastUpdate time.Time `json:"last_update"`
}

// LocationPing is one position report flowing through the ingest pipeline.
type LocationPing struct {
	ProviderID string    `json:"provider_id"`
	Lat        float64   `json:"latitude"`
	Lon        float64   `json:"longitude"`
	Timestamp  time.Time `json:"timestamp"`
}

type MatchResult struct {
	Provider      CandidateProvider `json:"provider"`
	MatchingScore float64           `json:"matching_score"`
	Breakdown     ScoreBreakdown    `json:"score_breakdown"`
	Reasons       []string          `json:"reasons"`
	Location      *ProviderLocation `json:"location,omitempty"`
	DistanceKm    *float64          `json:"distance_km,omitempty"`
}

type PriceAnalysis struct {
	AveragePrice float64    `json:"average_price"`
	PriceRange   PriceRange `json:"price_range"`
}

// MatchingInsights aggregates over the final ranked match list.
type MatchingInsights struct {
	TotalMatches      int           `json:"total_matches"`
	AverageMatchScore float64       `json:"average_match_score"`
	TopReasons        []string      `json:"top_reasons"`
	Recommendations   []string      `json:"recommendations"`
	PriceAnalysis     PriceAnalysis `json:"price_analysis"`
}

type MatchResponse struct {
	Matches      []MatchResult    `json:"matches"`
	Insights     MatchingInsights `json:"insights"`
	UserPatterns UserPatterns     `json:"user_patterns"`
}

// MatchOffer is pushed to the top-ranked provider after a match completes.
type MatchOffer struct {
	RequestID     string  `json:"request_id"`
	ProviderID    string  `json:"provider_id"`
	ServiceTypeID string  `json:"service_type_id"`
	Score         float64 `json:"score"`
}
