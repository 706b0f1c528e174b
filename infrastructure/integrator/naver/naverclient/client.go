package naverclient

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	naverdomain "github.com/vfg2006/adsync-api/infrastructure/integrator/naver/domain"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/utils"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Client interface {
	GetCustomerLinks(ctx context.Context, cred naverdomain.Credential) ([]naverdomain.CustomerLink, error)
	GetCampaigns(ctx context.Context, cred naverdomain.Credential, customerID string) ([]naverdomain.Campaign, error)
	GetDailyStats(ctx context.Context, cred naverdomain.Credential, customerID, campaignID string, since, until time.Time) ([]naverdomain.StatRow, error)
}

type NaverClient struct {
	Cfg     config.Naver
	HTTP    utils.Doer
	Limiter *rate.Limiter
	Now     func() time.Time
}

var _ Client = (*NaverClient)(nil)

func NewClient(cfg config.Naver, httpClient utils.Doer, limiter *rate.Limiter) *NaverClient {
	return &NaverClient{
		Cfg:     cfg,
		HTTP:    httpClient,
		Limiter: limiter,
		Now:     time.Now,
	}
}

// GetCustomerLinks lista os clientes gerenciados pela conta dona da chave
func (c *NaverClient) GetCustomerLinks(ctx context.Context, cred naverdomain.Credential) ([]naverdomain.CustomerLink, error) {
	params := url.Values{}
	params.Add("type", "MYCLIENTS")

	var out []naverdomain.CustomerLink
	if err := c.get(ctx, cred, cred.CustomerID, "/customer-links", params, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// GetCampaigns não é paginado: a API devolve todas as campanhas do cliente de uma vez
func (c *NaverClient) GetCampaigns(ctx context.Context, cred naverdomain.Credential, customerID string) ([]naverdomain.Campaign, error) {
	var out []naverdomain.Campaign
	if err := c.get(ctx, cred, customerID, "/ncc/campaigns", url.Values{}, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *NaverClient) GetDailyStats(ctx context.Context, cred naverdomain.Credential, customerID, campaignID string, since, until time.Time) ([]naverdomain.StatRow, error) {
	fields, _ := json.MarshalToString([]string{"impCnt", "clkCnt", "salesAmt", "ccnt"})
	timeRange, _ := json.MarshalToString(map[string]string{
		"since": since.Format(time.DateOnly),
		"until": until.Format(time.DateOnly),
	})

	params := url.Values{}
	params.Add("id", campaignID)
	params.Add("fields", fields)
	params.Add("timeRange", timeRange)
	params.Add("timeIncrement", "1")

	var out naverdomain.StatsResponse
	if err := c.get(ctx, cred, customerID, "/stats", params, &out); err != nil {
		return nil, err
	}

	return out.Data, nil
}

func (c *NaverClient) get(ctx context.Context, cred naverdomain.Credential, customerID, path string, params url.Values, out any) error {
	endpoint := strings.TrimRight(c.Cfg.URL, "/") + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "naver: build request")
	}
	c.sign(req, cred, customerID, path)

	resp, err := utils.Do(ctx, c.HTTP, c.Limiter, req)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return c.classify(resp)
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return errors.Wrapf(err, "naver: decode %s", path)
	}

	return nil
}

// sign assina "<timestamp>.<METHOD>.<uri>" com HMAC-SHA256; a uri não inclui a query string
func (c *NaverClient) sign(req *http.Request, cred naverdomain.Credential, customerID, path string) {
	timestamp := strconv.FormatInt(c.Now().UnixMilli(), 10)

	req.Header.Set("X-Timestamp", timestamp)
	req.Header.Set("X-API-KEY", cred.APIKey)
	req.Header.Set("X-Customer", customerID)
	req.Header.Set("X-Signature", Signature(cred.SecretKey, timestamp, req.Method, path))
}

func Signature(secret, timestamp, method, uri string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "." + method + "." + uri))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (c *NaverClient) classify(resp *utils.Response) error {
	var errResp naverdomain.ErrorResponse
	parsed := json.Unmarshal(resp.Body, &errResp) == nil && (errResp.Code != 0 || errResp.Title != "")
	message := ""
	if parsed {
		message = utils.Truncate(errResp.Message(), 200)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &domain.CredentialInvalidError{Platform: domain.PlatformNaver, Reason: message}
	}

	if resp.StatusCode == http.StatusTooManyRequests || (parsed && errResp.Code == naverdomain.CodeTooManyRequests) {
		return &domain.RateLimitedError{
			Platform:   domain.PlatformNaver,
			RetryAfter: utils.ParseRetryAfter(resp.Header.Get("Retry-After"), c.Now()),
			Reason:     message,
		}
	}

	if parsed {
		return fmt.Errorf("naver: code %d (status %d): %s", errResp.Code, resp.StatusCode, message)
	}

	return fmt.Errorf("naver: unexpected status %d", resp.StatusCode)
}
