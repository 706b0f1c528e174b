package naver

import (
	"context"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/integrator"
	naverdomain "github.com/vfg2006/adsync-api/infrastructure/integrator/naver/domain"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/naver/naverclient"
	"github.com/vfg2006/adsync-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Currency da Naver Search Ad é sempre won
const Currency = "KRW"

type NaverIntegrator struct {
	Client naverclient.Client
}

var _ integrator.Adapter = (*NaverIntegrator)(nil)

func New(client naverclient.Client) *NaverIntegrator {
	return &NaverIntegrator{Client: client}
}

func (s *NaverIntegrator) Platform() domain.Platform {
	return domain.PlatformNaver
}

// AuthorizationURL não existe: a Naver só aceita credencial direta
func (s *NaverIntegrator) AuthorizationURL(_, _ string) (string, error) {
	return "", &domain.OAuthExchangeError{Platform: domain.PlatformNaver, Reason: "unsupported"}
}

func (s *NaverIntegrator) ExchangeAuthorizationCode(_ context.Context, _, _ string) (*domain.Credentials, error) {
	return nil, &domain.OAuthExchangeError{Platform: domain.PlatformNaver, Reason: "unsupported"}
}

// EncodeCredential serializa a credencial direta no formato guardado como access token
func EncodeCredential(cred naverdomain.Credential) (string, error) {
	return json.MarshalToString(cred)
}

// ParseCredential falha como credencial inválida: um valor corrompido exige reconexão
func ParseCredential(accessToken string) (naverdomain.Credential, error) {
	var cred naverdomain.Credential
	if err := json.UnmarshalFromString(accessToken, &cred); err != nil {
		return cred, &domain.CredentialInvalidError{Platform: domain.PlatformNaver, Reason: "malformed credential"}
	}
	if cred.APIKey == "" || cred.SecretKey == "" || cred.CustomerID == "" {
		return cred, &domain.CredentialInvalidError{Platform: domain.PlatformNaver, Reason: "incomplete credential"}
	}
	return cred, nil
}

// ListAdAccounts devolve o próprio cliente da chave seguido dos clientes vinculados
func (s *NaverIntegrator) ListAdAccounts(ctx context.Context, accessToken string) ([]domain.NormalizedAccount, error) {
	cred, err := ParseCredential(accessToken)
	if err != nil {
		return nil, err
	}

	links, err := s.Client.GetCustomerLinks(ctx, cred)
	if err != nil {
		logrus.WithError(err).Error("naver: failed to list customer links")
		return nil, err
	}

	out := []domain.NormalizedAccount{{ExternalID: cred.CustomerID, Name: cred.CustomerID, Currency: Currency}}
	for _, l := range links {
		id := strconv.FormatInt(l.ClientCustomerID, 10)
		if id == cred.CustomerID {
			continue
		}
		name := l.ClientLoginID
		if name == "" {
			name = id
		}
		out = append(out, domain.NormalizedAccount{ExternalID: id, Name: name, Currency: Currency})
	}

	return out, nil
}

func (s *NaverIntegrator) ListCampaigns(ctx context.Context, accessToken, externalAccountID string) ([]domain.NormalizedCampaign, error) {
	cred, err := ParseCredential(accessToken)
	if err != nil {
		return nil, err
	}

	campaigns, err := s.Client.GetCampaigns(ctx, cred, externalAccountID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"customer_id": externalAccountID,
			"error":       err.Error(),
		}).Error("naver: failed to get campaigns")
		return nil, err
	}

	out := make([]domain.NormalizedCampaign, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, domain.NormalizedCampaign{
			ExternalID: c.NccCampaignID,
			Name:       c.Name,
			Status:     c.Status,
			State:      CampaignState(c),
		})
	}

	return out, nil
}

func (s *NaverIntegrator) ListInsights(ctx context.Context, accessToken string, query domain.InsightQuery) ([]domain.NormalizedInsight, error) {
	if query.CampaignExternalID == "" {
		return nil, &domain.ValidationError{Field: "campaign_id", Reason: "is required"}
	}

	cred, err := ParseCredential(accessToken)
	if err != nil {
		return nil, err
	}

	customerID := query.AccountExternalID
	if customerID == "" {
		customerID = cred.CustomerID
	}

	rows, err := s.Client.GetDailyStats(ctx, cred, customerID, query.CampaignExternalID, query.Range.Start, query.Range.End)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"customer_id": customerID,
			"campaign_id": query.CampaignExternalID,
			"range":       query.Range.String(),
			"error":       err.Error(),
		}).Error("naver: failed to get campaign stats")
		return nil, err
	}

	out := make([]domain.NormalizedInsight, 0, len(rows))
	for i := range rows {
		out = append(out, FactoryInsight(&rows[i]))
	}

	return out, nil
}

func FactoryInsight(row *naverdomain.StatRow) domain.NormalizedInsight {
	raw := row.DateStart

	day, err := integrator.ParseDay(raw)
	if err != nil {
		return integrator.InvalidRow(raw, err)
	}

	impressions, err := integrator.ParseCount("impCnt", row.ImpCnt.String())
	if err != nil {
		return integrator.InvalidRow(raw, err)
	}

	clicks, err := integrator.ParseCount("clkCnt", row.ClkCnt.String())
	if err != nil {
		return integrator.InvalidRow(raw, err)
	}

	spend, err := integrator.ParseAmount("salesAmt", row.SalesAmt.String())
	if err != nil {
		return integrator.InvalidRow(raw, err)
	}

	conversions, err := integrator.ParseAmount("ccnt", row.Ccnt.String())
	if err != nil {
		return integrator.InvalidRow(raw, err)
	}

	return integrator.DailyRow(day, raw, domain.InsightMetrics{
		Impressions: impressions,
		Clicks:      clicks,
		Spend:       spend,
		Conversions: conversions,
		Currency:    Currency,
	})
}

// CampaignState considera delFlag e userLock antes do status de veiculação
func CampaignState(c naverdomain.Campaign) domain.CampaignState {
	if c.DelFlag {
		return domain.CampaignStateRemoved
	}
	if c.UserLock {
		return domain.CampaignStatePaused
	}

	switch strings.ToUpper(c.Status) {
	case "ELIGIBLE", "LIMITEDBYBUDGET":
		return domain.CampaignStateActive
	case "PAUSED", "UNELIGIBLE":
		return domain.CampaignStatePaused
	case "DELETED":
		return domain.CampaignStateRemoved
	}

	return domain.CampaignStateUnknown
}
