package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InsightMetrics guarda os valores como a plataforma informou, na moeda da conta
type InsightMetrics struct {
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	Spend       decimal.Decimal `json:"spend"`
	Conversions decimal.Decimal `json:"conversions"`
	Currency    string          `json:"currency,omitempty"`
}

// Equal compara métricas pelo valor numérico (1.50 == 1.5)
func (m InsightMetrics) Equal(o InsightMetrics) bool {
	return m.Impressions == o.Impressions &&
		m.Clicks == o.Clicks &&
		m.Spend.Equal(o.Spend) &&
		m.Conversions.Equal(o.Conversions) &&
		m.Currency == o.Currency
}

type Insight struct {
	ID         int64          `json:"id"`
	CampaignID string         `json:"campaign_id"`
	Date       time.Time      `json:"date"`
	DateEnd    time.Time      `json:"date_end"`
	Metrics    InsightMetrics `json:"metrics"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// NormalizedInsight é uma linha diária devolvida pelo adaptador.
// ParseError é preenchido quando a linha remota não pôde ser interpretada.
type NormalizedInsight struct {
	Date       time.Time      `json:"date"`
	DateEnd    time.Time      `json:"date_end"`
	Metrics    InsightMetrics `json:"metrics"`
	RawDate    string         `json:"raw_date,omitempty"`
	ParseError string         `json:"parse_error,omitempty"`
}

type InsightQuery struct {
	AccountExternalID  string
	CampaignExternalID string
	Range              DateRange
}

type InsightSyncResult struct {
	Synced int        `json:"synced"`
	Errors []RowError `json:"errors"`
}
