package syncing

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/utils"
)

// SyncCampaigns traz as campanhas remotas da conta e reconcilia com as gravadas.
// Campanhas que sumiram da plataforma ficam como estão.
func (s *Service) SyncCampaigns(ctx context.Context, accountID string) (*domain.CampaignSyncResult, error) {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	account, adapter, unlock, err := s.prepare(ctx, accountID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	started := time.Now()
	log := logrus.WithFields(logrus.Fields{
		"account_id":  account.ID,
		"platform":    account.Platform,
		"external_id": account.ExternalID,
	})

	token, err := s.accessToken(ctx, account, adapter)
	if err != nil {
		log.WithError(err).Warn("sync: cannot obtain credential for campaign sync")
		return nil, err
	}

	remote, err := adapter.ListCampaigns(ctx, token, account.ExternalID)
	if err != nil {
		log.WithError(err).Error("sync: failed to list campaigns")
		return nil, s.failed(ctx, account, err)
	}

	result := &domain.CampaignSyncResult{Errors: make([]domain.RowError, 0)}
	for _, n := range remote {
		result.Synced++

		if err := s.reconcileCampaign(ctx, account.ID, n, result); err != nil {
			result.Errors = append(result.Errors, domain.RowError{
				ExternalID: n.ExternalID,
				Message:    err.Error(),
			})
		}
	}

	now := s.now()
	if err := s.accountRepository.TouchLastSynced(ctx, account.ID, now); err != nil {
		log.WithError(err).Error("sync: failed to update last synced at")
	} else {
		account.LastSyncedAt = &now
	}

	log.WithFields(logrus.Fields{
		"synced":    result.Synced,
		"created":   result.Created,
		"updated":   result.Updated,
		"unchanged": result.Unchanged,
		"errors":    len(result.Errors),
		"duration":  time.Since(started).String(),
	}).Info("sync: campaigns synchronized")

	return result, nil
}

func (s *Service) reconcileCampaign(ctx context.Context, accountID string, n domain.NormalizedCampaign, result *domain.CampaignSyncResult) error {
	if n.ExternalID == "" {
		return &domain.ValidationError{Field: "external_id", Reason: "is empty"}
	}

	existing, err := s.campaignRepository.FindByExternalID(ctx, accountID, n.ExternalID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		campaign := &domain.Campaign{
			ID:         utils.NewID(),
			AccountID:  accountID,
			ExternalID: n.ExternalID,
		}
		campaign.Apply(n)

		if err := s.campaignRepository.Save(ctx, campaign); err != nil {
			return err
		}
		result.Created++
		return nil

	case err != nil:
		return err
	}

	if !existing.Differs(n) {
		result.Unchanged++
		return nil
	}

	existing.Apply(n)
	if err := s.campaignRepository.Save(ctx, existing); err != nil {
		return err
	}
	result.Updated++
	return nil
}
