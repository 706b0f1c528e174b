package googleclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	googledomain "github.com/vfg2006/adsync-api/infrastructure/integrator/google/domain"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/utils"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxPages protege contra um nextPageToken que nunca termina
var maxPages = 1000

type Client interface {
	ExchangeCode(ctx context.Context, code, redirectURI string) (*googledomain.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*googledomain.TokenResponse, error)
	ListAccessibleCustomers(ctx context.Context, token string) ([]string, error)
	Search(ctx context.Context, token, customerID, query string) ([]googledomain.Row, error)
}

type GoogleClient struct {
	Cfg     config.Google
	HTTP    utils.Doer
	Limiter *rate.Limiter
	Now     func() time.Time
}

var _ Client = (*GoogleClient)(nil)

func NewClient(cfg config.Google, httpClient utils.Doer, limiter *rate.Limiter) *GoogleClient {
	return &GoogleClient{
		Cfg:     cfg,
		HTTP:    httpClient,
		Limiter: limiter,
		Now:     time.Now,
	}
}

func (c *GoogleClient) ExchangeCode(ctx context.Context, code, redirectURI string) (*googledomain.TokenResponse, error) {
	if code == "" {
		return nil, &domain.OAuthExchangeError{Platform: domain.PlatformGoogle, Reason: "authorization code is empty"}
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", c.Cfg.ClientID)
	form.Set("client_secret", c.Cfg.ClientSecret)
	form.Set("redirect_uri", redirectURI)

	tok, tokErr, err := c.postToken(ctx, form)
	if err != nil {
		return nil, &domain.OAuthExchangeError{Platform: domain.PlatformGoogle, Reason: "request failed", Err: err}
	}
	if tokErr != nil {
		return nil, &domain.OAuthExchangeError{Platform: domain.PlatformGoogle, Reason: tokenErrorReason(tokErr)}
	}

	return tok, nil
}

// Refresh usa o grant refresh_token. invalid_grant significa que o usuário revogou o acesso.
func (c *GoogleClient) Refresh(ctx context.Context, refreshToken string) (*googledomain.TokenResponse, error) {
	if refreshToken == "" {
		return nil, &domain.CredentialInvalidError{Platform: domain.PlatformGoogle, Reason: "no refresh token"}
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", c.Cfg.ClientID)
	form.Set("client_secret", c.Cfg.ClientSecret)

	tok, tokErr, err := c.postToken(ctx, form)
	if err != nil {
		return nil, err
	}
	if tokErr != nil {
		if tokErr.Error == "invalid_grant" || tokErr.Error == "unauthorized_client" {
			return nil, &domain.CredentialInvalidError{Platform: domain.PlatformGoogle, Reason: tokenErrorReason(tokErr)}
		}
		return nil, &domain.OAuthExchangeError{Platform: domain.PlatformGoogle, Reason: tokenErrorReason(tokErr)}
	}

	return tok, nil
}

func (c *GoogleClient) postToken(ctx context.Context, form url.Values) (*googledomain.TokenResponse, *googledomain.TokenError, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, nil, errors.Wrap(err, "google: build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := utils.Do(ctx, c.HTTP, c.Limiter, req)
	if err != nil {
		return nil, nil, err
	}

	if !resp.OK() {
		tokErr := &googledomain.TokenError{}
		if json.Unmarshal(resp.Body, tokErr) != nil || tokErr.Error == "" {
			tokErr.Error = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, tokErr, nil
	}

	var tok googledomain.TokenResponse
	if err := json.Unmarshal(resp.Body, &tok); err != nil || tok.AccessToken == "" {
		return nil, &googledomain.TokenError{Error: "invalid token response"}, nil
	}

	return &tok, nil, nil
}

func tokenErrorReason(e *googledomain.TokenError) string {
	if e.ErrorDescription != "" {
		return e.Error + ": " + utils.Truncate(e.ErrorDescription, 200)
	}
	return e.Error
}

func (c *GoogleClient) ListAccessibleCustomers(ctx context.Context, token string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Cfg.AdsURL+"/customers:listAccessibleCustomers", nil)
	if err != nil {
		return nil, errors.Wrap(err, "google: build request")
	}
	c.authorize(req, token)

	resp, err := utils.Do(ctx, c.HTTP, c.Limiter, req)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, c.classify(resp)
	}

	var out googledomain.ListAccessibleCustomersResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, errors.Wrap(err, "google: decode customers")
	}

	ids := make([]string, 0, len(out.ResourceNames))
	for _, rn := range out.ResourceNames {
		ids = append(ids, googledomain.CustomerID(rn))
	}

	return ids, nil
}

// Search executa uma consulta GAQL consumindo todas as páginas via nextPageToken
func (c *GoogleClient) Search(ctx context.Context, token, customerID, query string) ([]googledomain.Row, error) {
	endpoint := fmt.Sprintf("%s/customers/%s/googleAds:search", c.Cfg.AdsURL, customerID)

	rows := make([]googledomain.Row, 0)
	pageToken := ""

	for i := 0; i < maxPages; i++ {
		payload, err := json.Marshal(googledomain.SearchRequest{Query: query, PageToken: pageToken})
		if err != nil {
			return nil, errors.Wrap(err, "google: encode search")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, errors.Wrap(err, "google: build request")
		}
		req.Header.Set("Content-Type", "application/json")
		c.authorize(req, token)

		resp, err := utils.Do(ctx, c.HTTP, c.Limiter, req)
		if err != nil {
			return nil, err
		}
		if !resp.OK() {
			return nil, c.classify(resp)
		}

		var page googledomain.SearchResponse
		if err := json.Unmarshal(resp.Body, &page); err != nil {
			return nil, errors.Wrap(err, "google: decode search page")
		}

		rows = append(rows, page.Results...)

		logrus.WithFields(logrus.Fields{
			"customer_id": customerID,
			"page":        i + 1,
			"rows":        len(page.Results),
		}).Debug("google: page fetched")

		if page.NextPageToken == "" {
			return rows, nil
		}
		pageToken = page.NextPageToken
	}

	// devolver o que já veio esconderia linhas da consulta
	return nil, errors.Errorf("google: pagination exceeded %d pages", maxPages)
}

func (c *GoogleClient) authorize(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("developer-token", c.Cfg.DeveloperToken)
	if c.Cfg.LoginCustomer != "" {
		req.Header.Set("login-customer-id", c.Cfg.LoginCustomer)
	}
}

func (c *GoogleClient) classify(resp *utils.Response) error {
	var errResp googledomain.ErrorResponse
	parsed := json.Unmarshal(resp.Body, &errResp) == nil && errResp.Error.Status != ""

	if (parsed && errResp.IsAuthError()) || resp.StatusCode == http.StatusUnauthorized {
		return &domain.CredentialInvalidError{
			Platform: domain.PlatformGoogle,
			Reason:   utils.Truncate(errResp.Error.Message, 200),
		}
	}

	if (parsed && errResp.IsRateLimited()) || resp.StatusCode == http.StatusTooManyRequests {
		retry := time.Duration(0)
		if parsed {
			if d, err := time.ParseDuration(errResp.RetryDelay()); err == nil && d > 0 {
				retry = d
			}
		}
		if retry == 0 {
			retry = utils.ParseRetryAfter(resp.Header.Get("Retry-After"), c.Now())
		}
		return &domain.RateLimitedError{
			Platform:   domain.PlatformGoogle,
			RetryAfter: retry,
			Reason:     utils.Truncate(errResp.Error.Message, 200),
		}
	}

	if parsed {
		return fmt.Errorf("google: %s (status %d): %s", errResp.Error.Status, resp.StatusCode, utils.Truncate(errResp.Error.Message, 200))
	}

	return fmt.Errorf("google: unexpected status %d", resp.StatusCode)
}
