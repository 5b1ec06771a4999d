package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/example/provider-matching/internal/models"
)

// PostgresStore implements HistoryStore and ProviderDirectory over the
// marketplace schema (service_requests, reviews, providers, services).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Close() error { return p.db.Close() }

func (p *PostgresStore) RecentHistory(ctx context.Context, clientID string, limit int) ([]models.HistoryRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT sr.service_type_id, sr.provider_id, sr.price, sr.status, rv.rating, sr.created_at
		FROM service_requests sr
		LEFT JOIN reviews rv ON rv.request_id = sr.id
		WHERE sr.client_id = $1
		ORDER BY sr.created_at DESC
		LIMIT $2`, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []models.HistoryRecord
	for rows.Next() {
		var (
			h          models.HistoryRecord
			providerID sql.NullString
			price      sql.NullFloat64
			rating     sql.NullFloat64
		)
		if err := rows.Scan(&h.ServiceTypeID, &providerID, &price, &h.Status, &rating, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if providerID.Valid {
			h.ProviderID = providerID.String
		}
		if price.Valid {
			v := price.Float64
			h.Price = &v
		}
		if rating.Valid {
			h.Review = &models.Review{Rating: rating.Float64}
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (p *PostgresStore) Candidates(ctx context.Context, serviceTypeID string) ([]models.CandidateProvider, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT pr.user_id, pr.rating, pr.is_available,
		       (SELECT count(*) FROM service_requests c
		        WHERE c.provider_id = pr.user_id AND c.status = 'COMPLETED'),
		       sv.price, sv.description, sv.tags
		FROM providers pr
		JOIN services sv ON sv.provider_id = pr.user_id
		WHERE sv.service_type_id = $1 AND pr.is_available
		ORDER BY pr.user_id`, serviceTypeID)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*models.CandidateProvider)
	order := []string{}
	for rows.Next() {
		var (
			userID    string
			rating    float64
			available bool
			completed int
			svc       models.ServiceOffering
			tags      pq.StringArray
		)
		if err := rows.Scan(&userID, &rating, &available, &completed, &svc.Price, &svc.Description, &tags); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		svc.Tags = []string(tags)
		cand, ok := byID[userID]
		if !ok {
			cand = &models.CandidateProvider{
				UserID:        userID,
				Rating:        rating,
				IsAvailable:   available,
				CompletedJobs: completed,
			}
			byID[userID] = cand
			order = append(order, userID)
		}
		cand.Services = append(cand.Services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]models.CandidateProvider, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}
