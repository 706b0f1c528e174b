package metaclient

import (
	"context"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/adsync-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/pkg/utils"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxPages protege contra um cursor que nunca termina
var maxPages = 1000

type Client interface {
	ExchangeCode(ctx context.Context, code, redirectURI string) (*metadomain.TokenResponse, error)
	ExchangeLongLivedToken(ctx context.Context, token string) (*metadomain.TokenResponse, error)
	GetAdAccounts(ctx context.Context, token string) ([]metadomain.AdAccount, error)
	GetAdCampaignByAccountID(ctx context.Context, token, accountID string) ([]metadomain.Campaign, error)
	GetAdCampaignInsightsByID(ctx context.Context, token, campaignID string, since, until time.Time) ([]metadomain.CampaignInsight, error)
}

type MetaClient struct {
	Cfg     config.Meta
	HTTP    utils.Doer
	Limiter *rate.Limiter
	Now     func() time.Time
}

func NewClient(cfg config.Meta, httpClient utils.Doer, limiter *rate.Limiter) *MetaClient {
	return &MetaClient{
		Cfg:     cfg,
		HTTP:    httpClient,
		Limiter: limiter,
		Now:     time.Now,
	}
}

var _ Client = (*MetaClient)(nil)

func (c *MetaClient) get(ctx context.Context, rawURL, token string) (*utils.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "meta: build request")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return utils.Do(ctx, c.HTTP, c.Limiter, req)
}

// fetchAll percorre paging.next até a última página, decodificando cada uma em page
func fetchAll[T any](ctx context.Context, c *MetaClient, firstURL, token string, page func(body []byte) ([]T, metadomain.Paging, error)) ([]T, error) {
	out := make([]T, 0)
	next := firstURL

	for i := 0; next != "" && i < maxPages; i++ {
		resp, err := c.get(ctx, next, token)
		if err != nil {
			return nil, err
		}

		if !resp.OK() {
			return nil, c.classify(resp)
		}

		items, paging, err := page(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "meta: decode page")
		}

		out = append(out, items...)
		next = paging.Next

		logrus.WithFields(logrus.Fields{
			"page":  i + 1,
			"items": len(items),
		}).Debug("meta: page fetched")
	}

	if next != "" {
		return nil, errors.Errorf("meta: pagination exceeded %d pages", maxPages)
	}

	return out, nil
}

func (c *MetaClient) endpoint(path string, params url.Values) string {
	u := c.Cfg.URL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}
