package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/internal/domain"
)

//go:generate mockgen -source=insight.go -destination=mocks/insight.go -package=mocks

const insightsTable = "insights"

type InsightRepository interface {
	Upsert(ctx context.Context, campaignID string, date time.Time, metrics domain.InsightMetrics) error
	FindByCampaignAndRange(ctx context.Context, campaignID string, dateRange domain.DateRange) ([]*domain.Insight, error)
}

type insightRepository struct {
	conn *postgres.Connection
}

func NewInsightRepository(conn *postgres.Connection) InsightRepository {
	return &insightRepository{
		conn: conn,
	}
}

// Upsert sobrescreve as métricas do dia: o valor guardado é sempre o último observado, nunca a soma
func (r *insightRepository) Upsert(ctx context.Context, campaignID string, date time.Time, metrics domain.InsightMetrics) error {
	day := date.Format(time.DateOnly)

	query, args, err := squirrel.
		Insert(insightsTable).
		Columns("campaign_id", "date", "date_end", "impressions", "clicks", "spend", "conversions", "currency").
		Values(
			campaignID,
			day,
			day,
			metrics.Impressions,
			metrics.Clicks,
			metrics.Spend,
			metrics.Conversions,
			metrics.Currency,
		).
		Suffix(`
			ON CONFLICT (campaign_id, date) DO UPDATE SET
				date_end = EXCLUDED.date_end,
				impressions = EXCLUDED.impressions,
				clicks = EXCLUDED.clicks,
				spend = EXCLUDED.spend,
				conversions = EXCLUDED.conversions,
				currency = EXCLUDED.currency,
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return dbError("upsert insight", err)
	}

	return nil
}

func (r *insightRepository) FindByCampaignAndRange(ctx context.Context, campaignID string, dateRange domain.DateRange) ([]*domain.Insight, error) {
	query, args, err := squirrel.
		Select("id, campaign_id, date, date_end, impressions, clicks, spend, conversions, currency, created_at, updated_at").
		From(insightsTable).
		Where(squirrel.Eq{"campaign_id": campaignID}).
		Where(squirrel.GtOrEq{"date": dateRange.Start.Format(time.DateOnly)}).
		Where(squirrel.LtOrEq{"date": dateRange.End.Format(time.DateOnly)}).
		OrderBy("date ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError("list insights", err)
	}
	defer rows.Close()

	insights := make([]*domain.Insight, 0)
	for rows.Next() {
		var in domain.Insight
		if err := rows.Scan(
			&in.ID,
			&in.CampaignID,
			&in.Date,
			&in.DateEnd,
			&in.Metrics.Impressions,
			&in.Metrics.Clicks,
			&in.Metrics.Spend,
			&in.Metrics.Conversions,
			&in.Metrics.Currency,
			&in.CreatedAt,
			&in.UpdatedAt,
		); err != nil {
			return nil, dbError("scan insight", err)
		}
		insights = append(insights, &in)
	}

	if err := rows.Err(); err != nil {
		return nil, dbError("iterate insights", err)
	}

	return insights, nil
}
