package tiktok

import (
	"context"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/integrator"
	tiktokdomain "github.com/vfg2006/adsync-api/infrastructure/integrator/tiktok/domain"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/tiktok/tiktokclient"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
)

type TikTokIntegrator struct {
	cfg    config.TikTok
	Client tiktokclient.Client
}

var _ integrator.Adapter = (*TikTokIntegrator)(nil)

func New(cfg config.TikTok, client tiktokclient.Client) *TikTokIntegrator {
	return &TikTokIntegrator{
		cfg:    cfg,
		Client: client,
	}
}

func (s *TikTokIntegrator) Platform() domain.Platform {
	return domain.PlatformTikTok
}

func (s *TikTokIntegrator) AuthorizationURL(state, redirectURI string) (string, error) {
	if s.cfg.AppID == "" {
		return "", &domain.ConfigurationError{Field: "tiktok_app_id", Reason: "is not set"}
	}

	params := url.Values{}
	params.Add("app_id", s.cfg.AppID)
	params.Add("state", state)
	params.Add("redirect_uri", redirectURI)

	return s.cfg.AuthURL + "?" + params.Encode(), nil
}

// ExchangeAuthorizationCode devolve credenciais sem expiração: o token da TikTok vale até ser revogado
func (s *TikTokIntegrator) ExchangeAuthorizationCode(ctx context.Context, code, _ string) (*domain.Credentials, error) {
	data, err := s.Client.ExchangeCode(ctx, code)
	if err != nil {
		logrus.WithError(err).Warn("tiktok: failed to exchange authorization code")
		return nil, err
	}

	logrus.WithField("advertisers", len(data.AdvertiserIDs)).Info("tiktok: access token obtained")

	return &domain.Credentials{AccessToken: data.AccessToken}, nil
}

func (s *TikTokIntegrator) ListAdAccounts(ctx context.Context, accessToken string) ([]domain.NormalizedAccount, error) {
	advertisers, err := s.Client.GetAdvertisers(ctx, accessToken)
	if err != nil {
		logrus.WithError(err).Error("tiktok: failed to list advertisers")
		return nil, err
	}

	out := make([]domain.NormalizedAccount, 0, len(advertisers))
	for _, a := range advertisers {
		out = append(out, domain.NormalizedAccount{
			ExternalID: a.AdvertiserID,
			Name:       a.AdvertiserName,
		})
	}

	return out, nil
}

func (s *TikTokIntegrator) ListCampaigns(ctx context.Context, accessToken, externalAccountID string) ([]domain.NormalizedCampaign, error) {
	campaigns, err := s.Client.GetCampaigns(ctx, accessToken, externalAccountID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"advertiser_id": externalAccountID,
			"error":         err.Error(),
		}).Error("tiktok: failed to get campaigns")
		return nil, err
	}

	out := make([]domain.NormalizedCampaign, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, domain.NormalizedCampaign{
			ExternalID: c.CampaignID,
			Name:       c.CampaignName,
			Status:     c.OperationStatus,
			State:      CampaignState(c.OperationStatus, c.SecondaryStatus),
		})
	}

	return out, nil
}

func (s *TikTokIntegrator) ListInsights(ctx context.Context, accessToken string, query domain.InsightQuery) ([]domain.NormalizedInsight, error) {
	if query.AccountExternalID == "" {
		return nil, &domain.ValidationError{Field: "account_id", Reason: "is required"}
	}
	if query.CampaignExternalID == "" {
		return nil, &domain.ValidationError{Field: "campaign_id", Reason: "is required"}
	}

	rows, err := s.Client.GetCampaignReport(ctx, accessToken, query.AccountExternalID, query.CampaignExternalID, query.Range.Start, query.Range.End)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"advertiser_id": query.AccountExternalID,
			"campaign_id":   query.CampaignExternalID,
			"range":         query.Range.String(),
			"error":         err.Error(),
		}).Error("tiktok: failed to get campaign report")
		return nil, err
	}

	out := make([]domain.NormalizedInsight, 0, len(rows))
	for i := range rows {
		out = append(out, FactoryInsight(&rows[i]))
	}

	return out, nil
}

func FactoryInsight(row *tiktokdomain.ReportRow) domain.NormalizedInsight {
	raw := row.Dimensions.StatTimeDay

	day, err := integrator.ParseDay(raw)
	if err != nil {
		return integrator.InvalidRow(raw, err)
	}

	impressions, err := integrator.ParseCount("impressions", row.Metrics.Impressions)
	if err != nil {
		return integrator.InvalidRow(raw, err)
	}

	clicks, err := integrator.ParseCount("clicks", row.Metrics.Clicks)
	if err != nil {
		return integrator.InvalidRow(raw, err)
	}

	spend, err := integrator.ParseAmount("spend", row.Metrics.Spend)
	if err != nil {
		return integrator.InvalidRow(raw, err)
	}

	conversions, err := integrator.ParseAmount("conversion", row.Metrics.Conversion)
	if err != nil {
		return integrator.InvalidRow(raw, err)
	}

	return integrator.DailyRow(day, raw, domain.InsightMetrics{
		Impressions: impressions,
		Clicks:      clicks,
		Spend:       spend,
		Conversions: conversions,
		Currency:    row.Metrics.Currency,
	})
}

// CampaignState usa secondary_status só para detectar campanhas excluídas
func CampaignState(operationStatus, secondaryStatus string) domain.CampaignState {
	if strings.ToUpper(secondaryStatus) == "CAMPAIGN_STATUS_DELETE" {
		return domain.CampaignStateRemoved
	}

	switch strings.ToUpper(operationStatus) {
	case "ENABLE":
		return domain.CampaignStateActive
	case "DISABLE":
		return domain.CampaignStatePaused
	case "DELETE":
		return domain.CampaignStateRemoved
	}

	return domain.CampaignStateUnknown
}
