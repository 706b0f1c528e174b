package tiktokclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	tiktokdomain "github.com/vfg2006/adsync-api/infrastructure/integrator/tiktok/domain"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/utils"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	campaignPage   = 100
	reportPageSize = 1000
)

// maxPages protege contra um total_page que nunca termina
var maxPages = 1000

type Client interface {
	ExchangeCode(ctx context.Context, code string) (*tiktokdomain.AccessTokenData, error)
	GetAdvertisers(ctx context.Context, token string) ([]tiktokdomain.Advertiser, error)
	GetCampaigns(ctx context.Context, token, advertiserID string) ([]tiktokdomain.Campaign, error)
	GetCampaignReport(ctx context.Context, token, advertiserID, campaignID string, since, until time.Time) ([]tiktokdomain.ReportRow, error)
}

type TikTokClient struct {
	Cfg     config.TikTok
	HTTP    utils.Doer
	Limiter *rate.Limiter
	Now     func() time.Time
}

var _ Client = (*TikTokClient)(nil)

func NewClient(cfg config.TikTok, httpClient utils.Doer, limiter *rate.Limiter) *TikTokClient {
	return &TikTokClient{
		Cfg:     cfg,
		HTTP:    httpClient,
		Limiter: limiter,
		Now:     time.Now,
	}
}

// ExchangeCode troca o auth_code por um token de longa duração. A TikTok não emite refresh token.
func (c *TikTokClient) ExchangeCode(ctx context.Context, code string) (*tiktokdomain.AccessTokenData, error) {
	if code == "" {
		return nil, &domain.OAuthExchangeError{Platform: domain.PlatformTikTok, Reason: "authorization code is empty"}
	}

	payload, err := json.Marshal(tiktokdomain.AccessTokenRequest{
		AppID:    c.Cfg.AppID,
		Secret:   c.Cfg.Secret,
		AuthCode: code,
	})
	if err != nil {
		return nil, errors.Wrap(err, "tiktok: encode token request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Cfg.URL+"/oauth2/access_token/", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "tiktok: build token request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := utils.Do(ctx, c.HTTP, c.Limiter, req)
	if err != nil {
		return nil, &domain.OAuthExchangeError{Platform: domain.PlatformTikTok, Reason: "request failed", Err: err}
	}

	env, err := decodeEnvelope(resp)
	if err != nil || !resp.OK() || env.Code != tiktokdomain.CodeOK {
		reason := fmt.Sprintf("status %d", resp.StatusCode)
		if env != nil && env.Message != "" {
			reason = fmt.Sprintf("%d: %s", env.Code, utils.Truncate(env.Message, 200))
		}
		return nil, &domain.OAuthExchangeError{Platform: domain.PlatformTikTok, Reason: reason}
	}

	var data tiktokdomain.AccessTokenData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.AccessToken == "" {
		return nil, &domain.OAuthExchangeError{Platform: domain.PlatformTikTok, Reason: "invalid token response"}
	}

	return &data, nil
}

func (c *TikTokClient) GetAdvertisers(ctx context.Context, token string) ([]tiktokdomain.Advertiser, error) {
	params := url.Values{}
	params.Add("app_id", c.Cfg.AppID)
	params.Add("secret", c.Cfg.Secret)

	var data tiktokdomain.AdvertiserData
	if err := c.get(ctx, token, "/oauth2/advertiser/get/", params, &data); err != nil {
		return nil, err
	}

	return data.List, nil
}

func (c *TikTokClient) GetCampaigns(ctx context.Context, token, advertiserID string) ([]tiktokdomain.Campaign, error) {
	out := make([]tiktokdomain.Campaign, 0)

	for page := 1; page <= maxPages; page++ {
		params := url.Values{}
		params.Add("advertiser_id", advertiserID)
		params.Add("page", strconv.Itoa(page))
		params.Add("page_size", strconv.Itoa(campaignPage))

		var data tiktokdomain.CampaignData
		if err := c.get(ctx, token, "/campaign/get/", params, &data); err != nil {
			return nil, err
		}

		out = append(out, data.List...)

		if page >= data.PageInfo.TotalPage {
			return out, nil
		}
	}

	return nil, errors.Errorf("tiktok: pagination exceeded %d pages", maxPages)
}

// GetCampaignReport consulta o relatório integrado com granularidade diária (stat_time_day)
func (c *TikTokClient) GetCampaignReport(ctx context.Context, token, advertiserID, campaignID string, since, until time.Time) ([]tiktokdomain.ReportRow, error) {
	dimensions, _ := json.MarshalToString([]string{"campaign_id", "stat_time_day"})
	metrics, _ := json.MarshalToString([]string{"spend", "impressions", "clicks", "conversion", "currency"})
	ids, _ := json.MarshalToString([]string{campaignID})
	filtering, _ := json.MarshalToString([]map[string]string{{
		"field_name":   "campaign_ids",
		"filter_type":  "IN",
		"filter_value": ids,
	}})

	out := make([]tiktokdomain.ReportRow, 0)

	for page := 1; page <= maxPages; page++ {
		params := url.Values{}
		params.Add("advertiser_id", advertiserID)
		params.Add("report_type", "BASIC")
		params.Add("data_level", "AUCTION_CAMPAIGN")
		params.Add("dimensions", dimensions)
		params.Add("metrics", metrics)
		params.Add("filtering", filtering)
		params.Add("start_date", since.Format(time.DateOnly))
		params.Add("end_date", until.Format(time.DateOnly))
		params.Add("page", strconv.Itoa(page))
		params.Add("page_size", strconv.Itoa(reportPageSize))

		var data tiktokdomain.ReportData
		if err := c.get(ctx, token, "/report/integrated/get/", params, &data); err != nil {
			return nil, err
		}

		out = append(out, data.List...)

		logrus.WithFields(logrus.Fields{
			"advertiser_id": advertiserID,
			"campaign_id":   campaignID,
			"page":          page,
			"total_page":    data.PageInfo.TotalPage,
		}).Debug("tiktok: report page fetched")

		if page >= data.PageInfo.TotalPage {
			return out, nil
		}
	}

	return nil, errors.Errorf("tiktok: pagination exceeded %d pages", maxPages)
}

func (c *TikTokClient) get(ctx context.Context, token, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Cfg.URL+path+"?"+params.Encode(), nil)
	if err != nil {
		return errors.Wrap(err, "tiktok: build request")
	}
	req.Header.Set("Access-Token", token)

	resp, err := utils.Do(ctx, c.HTTP, c.Limiter, req)
	if err != nil {
		return err
	}

	env, err := decodeEnvelope(resp)
	if !resp.OK() || (env != nil && env.Code != tiktokdomain.CodeOK) {
		return c.classify(resp, env)
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.Wrapf(err, "tiktok: decode %s", path)
	}

	return nil
}

func decodeEnvelope(resp *utils.Response) (*tiktokdomain.Envelope, error) {
	var env tiktokdomain.Envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return nil, errors.Wrap(err, "tiktok: decode envelope")
	}
	return &env, nil
}

// classify considera o código do envelope antes do status HTTP, que costuma ser 200 mesmo em falhas
func (c *TikTokClient) classify(resp *utils.Response, env *tiktokdomain.Envelope) error {
	message := ""
	if env != nil {
		message = utils.Truncate(env.Message, 200)
	}

	if (env != nil && env.IsCredentialInvalid()) || resp.StatusCode == http.StatusUnauthorized {
		return &domain.CredentialInvalidError{Platform: domain.PlatformTikTok, Reason: message}
	}

	if (env != nil && env.IsRateLimited()) || resp.StatusCode == http.StatusTooManyRequests {
		return &domain.RateLimitedError{
			Platform:   domain.PlatformTikTok,
			RetryAfter: utils.ParseRetryAfter(resp.Header.Get("Retry-After"), c.Now()),
			Reason:     message,
		}
	}

	if env != nil && env.Code != tiktokdomain.CodeOK {
		return fmt.Errorf("tiktok: code %d: %s", env.Code, message)
	}

	return fmt.Errorf("tiktok: unexpected status %d", resp.StatusCode)
}
