package meta

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/integrator"
	metadomain "github.com/vfg2006/adsync-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
)

type MetaIntegrator struct {
	cfg    config.Meta
	Client metaclient.Client
	now    func() time.Time
}

var (
	_ integrator.Adapter        = (*MetaIntegrator)(nil)
	_ integrator.TokenRefresher = (*MetaIntegrator)(nil)
)

func New(cfg config.Meta, client metaclient.Client) *MetaIntegrator {
	return &MetaIntegrator{
		cfg:    cfg,
		Client: client,
		now:    time.Now,
	}
}

func (s *MetaIntegrator) Platform() domain.Platform {
	return domain.PlatformMeta
}

func (s *MetaIntegrator) AuthorizationURL(state, redirectURI string) (string, error) {
	if s.cfg.AppID == "" {
		return "", &domain.ConfigurationError{Field: "meta_app_id", Reason: "is not set"}
	}

	params := url.Values{}
	params.Add("client_id", s.cfg.AppID)
	params.Add("redirect_uri", redirectURI)
	params.Add("state", state)
	params.Add("response_type", "code")
	params.Add("scope", s.cfg.Scopes)

	return strings.TrimRight(s.cfg.DialogURL, "/") + "/" + s.cfg.Version + "/dialog/oauth?" + params.Encode(), nil
}

// ExchangeAuthorizationCode troca o code por um token curto e em seguida por um de longa duração.
// O Meta não emite refresh token: a renovação reaproveita o próprio token de acesso.
func (s *MetaIntegrator) ExchangeAuthorizationCode(ctx context.Context, code, redirectURI string) (*domain.Credentials, error) {
	short, err := s.Client.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		logrus.WithError(err).Warn("meta: failed to exchange authorization code")
		return nil, err
	}

	long, err := s.Client.ExchangeLongLivedToken(ctx, short.AccessToken)
	if err != nil {
		logrus.WithError(err).Warn("meta: failed to obtain long-lived token")
		return nil, err
	}

	logrus.WithField("expires_in", metaclient.FormatDuration(long.ExpiresIn)).Info("meta: long-lived token obtained")

	return &domain.Credentials{
		AccessToken: long.AccessToken,
		ExpiresAt:   metaclient.TokenExpiration(s.now(), long.ExpiresIn),
	}, nil
}

// RefreshCredentials estende o token atual via fb_exchange_token
func (s *MetaIntegrator) RefreshCredentials(ctx context.Context, token string) (*domain.Credentials, error) {
	long, err := s.Client.ExchangeLongLivedToken(ctx, token)
	if err != nil {
		return nil, err
	}

	return &domain.Credentials{
		AccessToken: long.AccessToken,
		ExpiresAt:   metaclient.TokenExpiration(s.now(), long.ExpiresIn),
	}, nil
}

func (s *MetaIntegrator) ListAdAccounts(ctx context.Context, accessToken string) ([]domain.NormalizedAccount, error) {
	accounts, err := s.Client.GetAdAccounts(ctx, accessToken)
	if err != nil {
		logrus.WithError(err).Error("meta: failed to list ad accounts")
		return nil, err
	}

	out := make([]domain.NormalizedAccount, 0, len(accounts))
	for _, a := range accounts {
		id := a.AccountID
		if id == "" {
			id = strings.TrimPrefix(a.ID, "act_")
		}
		out = append(out, domain.NormalizedAccount{
			ExternalID: id,
			Name:       a.Name,
			Currency:   a.Currency,
		})
	}

	logrus.WithField("total_accounts", len(out)).Debug("meta: ad accounts listed")

	return out, nil
}

func (s *MetaIntegrator) ListCampaigns(ctx context.Context, accessToken, externalAccountID string) ([]domain.NormalizedCampaign, error) {
	campaigns, err := s.Client.GetAdCampaignByAccountID(ctx, accessToken, externalAccountID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"account_id": externalAccountID,
			"error":      err.Error(),
		}).Error("meta: failed to get campaigns for ad account")
		return nil, err
	}

	out := make([]domain.NormalizedCampaign, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, domain.NormalizedCampaign{
			ExternalID: c.ID,
			Name:       c.Name,
			Status:     c.Status,
			State:      CampaignState(c.Status, c.EffectiveStatus),
		})
	}

	return out, nil
}

func (s *MetaIntegrator) ListInsights(ctx context.Context, accessToken string, query domain.InsightQuery) ([]domain.NormalizedInsight, error) {
	if query.CampaignExternalID == "" {
		return nil, &domain.ValidationError{Field: "campaign_id", Reason: "is required"}
	}

	rows, err := s.Client.GetAdCampaignInsightsByID(ctx, accessToken, query.CampaignExternalID, query.Range.Start, query.Range.End)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"campaign_id": query.CampaignExternalID,
			"range":       query.Range.String(),
			"error":       err.Error(),
		}).Error("meta: failed to get campaign insights")
		return nil, err
	}

	out := make([]domain.NormalizedInsight, 0, len(rows))
	for i := range rows {
		out = append(out, FactoryInsight(&rows[i]))
	}

	return out, nil
}

// FactoryInsight normaliza uma linha diária. Falhas de conversão viram ParseError, nunca zero silencioso.
func FactoryInsight(row *metadomain.CampaignInsight) domain.NormalizedInsight {
	day, err := integrator.ParseDay(row.DateStart)
	if err != nil {
		return integrator.InvalidRow(row.DateStart, err)
	}

	impressions, err := integrator.ParseCount("impressions", row.Impressions)
	if err != nil {
		return integrator.InvalidRow(row.DateStart, err)
	}

	clicks, err := integrator.ParseCount("clicks", row.Clicks)
	if err != nil {
		return integrator.InvalidRow(row.DateStart, err)
	}

	spend, err := integrator.ParseAmount("spend", row.Spend)
	if err != nil {
		return integrator.InvalidRow(row.DateStart, err)
	}

	conversions, err := conversionsFor(row)
	if err != nil {
		return integrator.InvalidRow(row.DateStart, err)
	}

	return integrator.DailyRow(day, row.DateStart, domain.InsightMetrics{
		Impressions: impressions,
		Clicks:      clicks,
		Spend:       spend,
		Conversions: conversions,
		Currency:    row.AccountCurrency,
	})
}

func conversionsFor(row *metadomain.CampaignInsight) (decimal.Decimal, error) {
	actionType, ok := row.ConversionActionType()
	if !ok {
		return decimal.Zero, nil
	}

	for _, a := range row.Actions {
		if a.ActionType == actionType {
			return integrator.ParseAmount("conversions", a.Value)
		}
	}

	return decimal.Zero, nil
}

// CampaignState mapeia o status do Meta para o vocabulário canônico.
// effective_status tem precedência porque reflete pausas herdadas da conta.
func CampaignState(status, effectiveStatus string) domain.CampaignState {
	s := effectiveStatus
	if s == "" {
		s = status
	}

	switch strings.ToUpper(s) {
	case "ACTIVE", "IN_PROCESS", "WITH_ISSUES":
		return domain.CampaignStateActive
	case "PAUSED", "CAMPAIGN_PAUSED", "ADSET_PAUSED":
		return domain.CampaignStatePaused
	case "DELETED", "ARCHIVED":
		return domain.CampaignStateRemoved
	}

	return domain.CampaignStateUnknown
}
