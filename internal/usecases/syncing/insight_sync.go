package syncing

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/internal/cache"
	"github.com/vfg2006/adsync-api/internal/domain"
)

// SyncInsights grava uma linha por (campanha, dia). Reexecutar o mesmo intervalo sobrescreve as métricas.
func (s *Service) SyncInsights(ctx context.Context, campaignID, startDate, endDate string) (*domain.InsightSyncResult, error) {
	dateRange, err := domain.ParseDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.detach(ctx)
	defer cancel()

	campaign, err := s.campaignRepository.FindByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.ValidationError{Field: "campaign_id", Reason: "not found"}
		}
		return nil, err
	}

	account, adapter, unlock, err := s.prepare(ctx, campaign.AccountID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	started := time.Now()
	log := logrus.WithFields(logrus.Fields{
		"account_id":  account.ID,
		"campaign_id": campaign.ID,
		"platform":    account.Platform,
		"range":       dateRange.String(),
	})

	token, err := s.accessToken(ctx, account, adapter)
	if err != nil {
		log.WithError(err).Warn("sync: cannot obtain credential for insight sync")
		return nil, err
	}

	query := domain.InsightQuery{
		AccountExternalID:  account.ExternalID,
		CampaignExternalID: campaign.ExternalID,
		Range:              dateRange,
	}

	rows, err := s.cache.GetOrFetch(ctx, cache.InsightKey(account.ID, account.Platform, campaign.ExternalID, dateRange), s.cfg.CacheTTL,
		func(ctx context.Context) ([]domain.NormalizedInsight, error) {
			return adapter.ListInsights(ctx, token, query)
		})
	if err != nil {
		log.WithError(err).Error("sync: failed to fetch insights")
		return nil, s.failed(ctx, account, err)
	}

	result := &domain.InsightSyncResult{Errors: make([]domain.RowError, 0)}
	for _, row := range rows {
		if rowErr := validRow(row, dateRange); rowErr != "" {
			result.Errors = append(result.Errors, domain.RowError{
				ExternalID: campaign.ExternalID,
				Date:       row.RawDate,
				Message:    rowErr,
			})
			continue
		}

		day := domain.TruncateDay(row.Date)
		if err := s.insightRepository.Upsert(ctx, campaign.ID, day, row.Metrics); err != nil {
			result.Errors = append(result.Errors, domain.RowError{
				ExternalID: campaign.ExternalID,
				Date:       day.Format(time.DateOnly),
				Message:    err.Error(),
			})
			continue
		}
		result.Synced++
	}

	log.WithFields(logrus.Fields{
		"rows":     len(rows),
		"synced":   result.Synced,
		"errors":   len(result.Errors),
		"duration": time.Since(started).String(),
	}).Info("sync: insights synchronized")

	return result, nil
}

func validRow(row domain.NormalizedInsight, r domain.DateRange) string {
	switch {
	case row.ParseError != "":
		return row.ParseError
	case row.Date.IsZero():
		return "missing date"
	case !r.Contains(row.Date):
		return "date outside requested range"
	}
	return ""
}
