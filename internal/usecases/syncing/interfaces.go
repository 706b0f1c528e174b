package syncing

import (
	"context"

	"github.com/vfg2006/adsync-api/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/interfaces.go -package=mocks

// CampaignSyncer reconcilia as campanhas remotas de uma conta conectada com as armazenadas
type CampaignSyncer interface {
	SyncCampaigns(ctx context.Context, accountID string) (*domain.CampaignSyncResult, error)
}

// InsightSyncer busca e grava métricas diárias de uma campanha num intervalo de datas
type InsightSyncer interface {
	SyncInsights(ctx context.Context, campaignID, startDate, endDate string) (*domain.InsightSyncResult, error)
}

type Syncer interface {
	CampaignSyncer
	InsightSyncer
}
