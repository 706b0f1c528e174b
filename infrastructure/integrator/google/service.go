package google

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/integrator"
	googledomain "github.com/vfg2006/adsync-api/infrastructure/integrator/google/domain"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/google/googleclient"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
)

const adwordsScope = "https://www.googleapis.com/auth/adwords"

const (
	customerQuery = "SELECT customer.id, customer.descriptive_name, customer.currency_code FROM customer LIMIT 1"
	campaignQuery = "SELECT campaign.id, campaign.name, campaign.status FROM campaign ORDER BY campaign.id"
	insightQuery  = "SELECT segments.date, customer.currency_code, metrics.impressions, metrics.clicks, " +
		"metrics.cost_micros, metrics.conversions FROM campaign " +
		"WHERE campaign.id = %s AND segments.date BETWEEN '%s' AND '%s' ORDER BY segments.date"
)

type GoogleIntegrator struct {
	cfg    config.Google
	Client googleclient.Client
	now    func() time.Time
}

var (
	_ integrator.Adapter        = (*GoogleIntegrator)(nil)
	_ integrator.TokenRefresher = (*GoogleIntegrator)(nil)
)

func New(cfg config.Google, client googleclient.Client) *GoogleIntegrator {
	return &GoogleIntegrator{
		cfg:    cfg,
		Client: client,
		now:    time.Now,
	}
}

func (s *GoogleIntegrator) Platform() domain.Platform {
	return domain.PlatformGoogle
}

// AuthorizationURL pede access_type=offline e prompt=consent para garantir o refresh token
func (s *GoogleIntegrator) AuthorizationURL(state, redirectURI string) (string, error) {
	if s.cfg.ClientID == "" {
		return "", &domain.ConfigurationError{Field: "google_client_id", Reason: "is not set"}
	}

	params := url.Values{}
	params.Add("client_id", s.cfg.ClientID)
	params.Add("redirect_uri", redirectURI)
	params.Add("response_type", "code")
	params.Add("scope", adwordsScope)
	params.Add("access_type", "offline")
	params.Add("prompt", "consent")
	params.Add("state", state)

	return s.cfg.AuthURL + "?" + params.Encode(), nil
}

func (s *GoogleIntegrator) ExchangeAuthorizationCode(ctx context.Context, code, redirectURI string) (*domain.Credentials, error) {
	tok, err := s.Client.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		logrus.WithError(err).Warn("google: failed to exchange authorization code")
		return nil, err
	}

	return s.credentials(tok, ""), nil
}

// RefreshCredentials mantém o refresh token atual quando a resposta não traz um novo
func (s *GoogleIntegrator) RefreshCredentials(ctx context.Context, refreshToken string) (*domain.Credentials, error) {
	tok, err := s.Client.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	return s.credentials(tok, refreshToken), nil
}

func (s *GoogleIntegrator) credentials(tok *googledomain.TokenResponse, fallbackRefresh string) *domain.Credentials {
	creds := &domain.Credentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if creds.RefreshToken == "" {
		creds.RefreshToken = fallbackRefresh
	}
	if tok.ExpiresIn > 0 {
		t := s.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
		creds.ExpiresAt = &t
	}
	return creds
}

func (s *GoogleIntegrator) ListAdAccounts(ctx context.Context, accessToken string) ([]domain.NormalizedAccount, error) {
	ids, err := s.Client.ListAccessibleCustomers(ctx, accessToken)
	if err != nil {
		logrus.WithError(err).Error("google: failed to list accessible customers")
		return nil, err
	}

	out := make([]domain.NormalizedAccount, 0, len(ids))
	for _, id := range ids {
		account := domain.NormalizedAccount{ExternalID: id, Name: id}

		rows, err := s.Client.Search(ctx, accessToken, id, customerQuery)
		switch {
		case errors.Is(err, domain.ErrCredentialInvalid) || errors.Is(err, domain.ErrRateLimited):
			return nil, err
		case err != nil:
			// contas gerenciadoras sem acesso direto ainda aparecem, só sem nome
			logrus.WithFields(logrus.Fields{
				"customer_id": id,
				"error":       err.Error(),
			}).Warn("google: failed to describe customer")
		case len(rows) > 0 && rows[0].Customer != nil:
			if rows[0].Customer.DescriptiveName != "" {
				account.Name = rows[0].Customer.DescriptiveName
			}
			account.Currency = rows[0].Customer.CurrencyCode
		}

		out = append(out, account)
	}

	return out, nil
}

func (s *GoogleIntegrator) ListCampaigns(ctx context.Context, accessToken, externalAccountID string) ([]domain.NormalizedCampaign, error) {
	customerID, err := numericID("account_id", externalAccountID)
	if err != nil {
		return nil, err
	}

	rows, err := s.Client.Search(ctx, accessToken, customerID, campaignQuery)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"customer_id": customerID,
			"error":       err.Error(),
		}).Error("google: failed to get campaigns")
		return nil, err
	}

	out := make([]domain.NormalizedCampaign, 0, len(rows))
	for _, r := range rows {
		if r.Campaign == nil {
			continue
		}
		out = append(out, domain.NormalizedCampaign{
			ExternalID: r.Campaign.ID.String(),
			Name:       r.Campaign.Name,
			Status:     r.Campaign.Status,
			State:      CampaignState(r.Campaign.Status),
		})
	}

	return out, nil
}

func (s *GoogleIntegrator) ListInsights(ctx context.Context, accessToken string, query domain.InsightQuery) ([]domain.NormalizedInsight, error) {
	customerID, err := numericID("account_id", query.AccountExternalID)
	if err != nil {
		return nil, err
	}
	campaignID, err := numericID("campaign_id", query.CampaignExternalID)
	if err != nil {
		return nil, err
	}

	gaql := fmt.Sprintf(insightQuery, campaignID,
		query.Range.Start.Format(time.DateOnly), query.Range.End.Format(time.DateOnly))

	rows, err := s.Client.Search(ctx, accessToken, customerID, gaql)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"customer_id": customerID,
			"campaign_id": campaignID,
			"range":       query.Range.String(),
			"error":       err.Error(),
		}).Error("google: failed to get campaign insights")
		return nil, err
	}

	out := make([]domain.NormalizedInsight, 0, len(rows))
	for i := range rows {
		out = append(out, FactoryInsight(&rows[i]))
	}

	return out, nil
}

// FactoryInsight converte cost_micros em valor monetário (micros / 1e6)
func FactoryInsight(row *googledomain.Row) domain.NormalizedInsight {
	if row.Segments == nil {
		return integrator.InvalidRow("", errors.New("missing segments.date"))
	}
	raw := row.Segments.Date

	day, err := integrator.ParseDay(raw)
	if err != nil {
		return integrator.InvalidRow(raw, err)
	}

	m := row.Metrics
	if m == nil {
		m = &googledomain.Metrics{}
	}

	impressions, err := integrator.ParseCount("impressions", m.Impressions.String())
	if err != nil {
		return integrator.InvalidRow(raw, err)
	}

	clicks, err := integrator.ParseCount("clicks", m.Clicks.String())
	if err != nil {
		return integrator.InvalidRow(raw, err)
	}

	micros, err := integrator.ParseAmount("cost_micros", m.CostMicros.String())
	if err != nil {
		return integrator.InvalidRow(raw, err)
	}

	conversions, err := integrator.ParseAmount("conversions", m.Conversions.String())
	if err != nil {
		return integrator.InvalidRow(raw, err)
	}

	currency := ""
	if row.Customer != nil {
		currency = row.Customer.CurrencyCode
	}

	return integrator.DailyRow(day, raw, domain.InsightMetrics{
		Impressions: impressions,
		Clicks:      clicks,
		Spend:       micros.Shift(-6),
		Conversions: conversions,
		Currency:    currency,
	})
}

func CampaignState(status string) domain.CampaignState {
	switch strings.ToUpper(status) {
	case "ENABLED":
		return domain.CampaignStateActive
	case "PAUSED":
		return domain.CampaignStatePaused
	case "REMOVED":
		return domain.CampaignStateRemoved
	}
	return domain.CampaignStateUnknown
}

// numericID impede injeção em GAQL: ids do Google Ads são só dígitos (hífens do painel são aceitos)
func numericID(field, value string) (string, error) {
	id := strings.ReplaceAll(strings.TrimSpace(value), "-", "")
	if id == "" {
		return "", &domain.ValidationError{Field: field, Reason: "is required"}
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", &domain.ValidationError{Field: field, Reason: "must be numeric"}
		}
	}
	return id, nil
}
