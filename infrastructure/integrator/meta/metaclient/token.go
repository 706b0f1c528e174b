package metaclient

import (
	"context"
	"fmt"
	"net/url"
	"time"

	metadomain "github.com/vfg2006/adsync-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/utils"
)

// ExchangeCode troca o code do diálogo OAuth por um token de curta duração
func (c *MetaClient) ExchangeCode(ctx context.Context, code, redirectURI string) (*metadomain.TokenResponse, error) {
	if code == "" {
		return nil, &domain.OAuthExchangeError{Platform: domain.PlatformMeta, Reason: "authorization code is empty"}
	}

	params := url.Values{}
	params.Add("client_id", c.Cfg.AppID)
	params.Add("client_secret", c.Cfg.AppSecret)
	params.Add("redirect_uri", redirectURI)
	params.Add("code", code)

	return c.requestToken(ctx, params)
}

// ExchangeLongLivedToken obtém um token de longa duração (~60 dias) a partir de outro token
func (c *MetaClient) ExchangeLongLivedToken(ctx context.Context, token string) (*metadomain.TokenResponse, error) {
	if token == "" {
		return nil, &domain.OAuthExchangeError{Platform: domain.PlatformMeta, Reason: "token is empty"}
	}

	params := url.Values{}
	params.Add("grant_type", "fb_exchange_token")
	params.Add("client_id", c.Cfg.AppID)
	params.Add("client_secret", c.Cfg.AppSecret)
	params.Add("fb_exchange_token", token)

	return c.requestToken(ctx, params)
}

func (c *MetaClient) requestToken(ctx context.Context, params url.Values) (*metadomain.TokenResponse, error) {
	resp, err := c.get(ctx, c.endpoint("/oauth/access_token", params), "")
	if err != nil {
		return nil, &domain.OAuthExchangeError{Platform: domain.PlatformMeta, Reason: "request failed", Err: err}
	}

	if !resp.OK() {
		reason := fmt.Sprintf("status %d", resp.StatusCode)
		if errResp, err := ParseErrorResponse(resp.Body); err == nil && errResp.Error.Message != "" {
			// um token revogado na renovação exige reconexão, não é falha de troca
			if errResp.IsTokenExpired() {
				return nil, &domain.CredentialInvalidError{Platform: domain.PlatformMeta, Reason: utils.Truncate(errResp.Error.Message, 200)}
			}
			reason = utils.Truncate(errResp.Error.Message, 200)
		}
		return nil, &domain.OAuthExchangeError{Platform: domain.PlatformMeta, Reason: reason}
	}

	var tokenResp metadomain.TokenResponse
	if err := json.Unmarshal(resp.Body, &tokenResp); err != nil {
		return nil, &domain.OAuthExchangeError{Platform: domain.PlatformMeta, Reason: "invalid token response"}
	}

	if tokenResp.AccessToken == "" {
		return nil, &domain.OAuthExchangeError{Platform: domain.PlatformMeta, Reason: "empty access token"}
	}

	return &tokenResp, nil
}

// TokenExpiration converte expires_in em data absoluta; zero significa sem expiração conhecida
func TokenExpiration(now time.Time, expiresIn int64) *time.Time {
	if expiresIn <= 0 {
		return nil
	}
	t := now.Add(time.Duration(expiresIn) * time.Second)
	return &t
}

// FormatDuration formata a duração em segundos para um formato legível
func FormatDuration(seconds int64) string {
	duration := time.Duration(seconds) * time.Second
	days := duration / (24 * time.Hour)
	hours := (duration % (24 * time.Hour)) / time.Hour
	minutes := (duration % time.Hour) / time.Minute

	return fmt.Sprintf("%d dias, %d horas e %d minutos", days, hours, minutes)
}
