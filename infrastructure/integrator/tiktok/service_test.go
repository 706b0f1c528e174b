package tiktok

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/tiktok/tiktokclient"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
)

func newTestIntegrator(t *testing.T, handler http.HandlerFunc) *TikTokIntegrator {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.TikTok{
		AuthURL: "https://business-api.tiktok.com/portal/auth",
		URL:     srv.URL + "/open_api/v1.3",
		AppID:   "app",
		Secret:  "secret",
	}

	return New(cfg, tiktokclient.NewClient(cfg, srv.Client(), nil))
}

func TestTikTokIntegrator_AuthorizationURL(t *testing.T) {
	s := New(config.TikTok{AuthURL: "https://business-api.tiktok.com/portal/auth", AppID: "app"}, nil)

	raw, err := s.AuthorizationURL("st", "https://api.example.com/cb")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "app", u.Query().Get("app_id"))
	assert.Equal(t, "st", u.Query().Get("state"))
	assert.Equal(t, "https://api.example.com/cb", u.Query().Get("redirect_uri"))

	_, err = New(config.TikTok{}, nil).AuthorizationURL("st", "x")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestTikTokIntegrator_ExchangeAuthorizationCode(t *testing.T) {
	s := newTestIntegrator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/open_api/v1.3/oauth2/access_token/", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		body, _ := io.ReadAll(r.Body)
		var req map[string]string
		assert.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "code-1", req["auth_code"])
		assert.Equal(t, "app", req["app_id"])

		_, _ = w.Write([]byte(`{"code":0,"message":"OK","data":{"access_token":"tt-token","advertiser_ids":["1","2"]}}`))
	})

	creds, err := s.ExchangeAuthorizationCode(context.Background(), "code-1", "https://api.example.com/cb")
	require.NoError(t, err)
	assert.Equal(t, "tt-token", creds.AccessToken)
	assert.Empty(t, creds.RefreshToken)
	assert.Nil(t, creds.ExpiresAt)
}

func TestTikTokIntegrator_ExchangeAuthorizationCode_Rejected(t *testing.T) {
	s := newTestIntegrator(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":40110,"message":"auth_code is invalid","data":{}}`))
	})

	_, err := s.ExchangeAuthorizationCode(context.Background(), "bad", "")

	var exErr *domain.OAuthExchangeError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "40110: auth_code is invalid", exErr.Reason)
}

func TestTikTokIntegrator_ListAdAccounts(t *testing.T) {
	s := newTestIntegrator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/open_api/v1.3/oauth2/advertiser/get/", r.URL.Path)
		assert.Equal(t, "tok", r.Header.Get("Access-Token"))
		_, _ = w.Write([]byte(`{"code":0,"message":"OK","data":{"list":[{"advertiser_id":"700","advertiser_name":"Loja"}]}}`))
	})

	accounts, err := s.ListAdAccounts(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, []domain.NormalizedAccount{{ExternalID: "700", Name: "Loja"}}, accounts)
}

func TestTikTokIntegrator_ListCampaigns_DrainsPages(t *testing.T) {
	s := newTestIntegrator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "700", r.URL.Query().Get("advertiser_id"))

		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`{"code":0,"data":{"list":[{"campaign_id":"1","campaign_name":"A","operation_status":"ENABLE"}],"page_info":{"page":1,"total_page":2}}}`))
		case "2":
			_, _ = w.Write([]byte(`{"code":0,"data":{"list":[{"campaign_id":"2","campaign_name":"B","operation_status":"DISABLE","secondary_status":"CAMPAIGN_STATUS_DELETE"}],"page_info":{"page":2,"total_page":2}}}`))
		default:
			http.NotFound(w, r)
		}
	})

	campaigns, err := s.ListCampaigns(context.Background(), "tok", "700")
	require.NoError(t, err)
	require.Len(t, campaigns, 2)
	assert.Equal(t, domain.NormalizedCampaign{ExternalID: "1", Name: "A", Status: "ENABLE", State: domain.CampaignStateActive}, campaigns[0])
	assert.Equal(t, domain.CampaignStateRemoved, campaigns[1].State)
}

func TestTikTokIntegrator_ListInsights(t *testing.T) {
	s := newTestIntegrator(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/open_api/v1.3/report/integrated/get/", r.URL.Path)
		assert.Equal(t, "2024-01-01", q.Get("start_date"))
		assert.Equal(t, "2024-01-02", q.Get("end_date"))
		assert.Contains(t, q.Get("filtering"), "campaign_ids")
		assert.Contains(t, q.Get("dimensions"), "stat_time_day")

		_, _ = w.Write([]byte(`{"code":0,"data":{"list":[
			{"dimensions":{"campaign_id":"9","stat_time_day":"2024-01-01 00:00:00"},"metrics":{"spend":"12.30","impressions":"500","clicks":"7","conversion":"2","currency":"USD"}},
			{"dimensions":{"campaign_id":"9","stat_time_day":"2024-01-02 00:00:00"},"metrics":{"spend":"abc","impressions":"1"}}
		],"page_info":{"page":1,"total_page":1}}}`))
	})

	rows, err := s.ListInsights(context.Background(), "tok", domain.InsightQuery{
		AccountExternalID:  "700",
		CampaignExternalID: "9",
		Range: domain.DateRange{
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Empty(t, rows[0].ParseError)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, int64(500), rows[0].Metrics.Impressions)
	assert.True(t, decimal.RequireFromString("12.3").Equal(rows[0].Metrics.Spend))
	assert.Equal(t, "USD", rows[0].Metrics.Currency)

	assert.NotEmpty(t, rows[1].ParseError)
	assert.Equal(t, "2024-01-02 00:00:00", rows[1].RawDate)
}

func TestTikTokIntegrator_ListInsights_RequiresIDs(t *testing.T) {
	s := New(config.TikTok{}, nil)

	_, err := s.ListInsights(context.Background(), "tok", domain.InsightQuery{CampaignExternalID: "9"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTikTokIntegrator_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "token expirado com http 200", status: http.StatusOK, body: `{"code":40102,"message":"Access token has expired"}`, want: domain.ErrCredentialInvalid},
		{name: "token revogado", status: http.StatusOK, body: `{"code":40105,"message":"revoked"}`, want: domain.ErrCredentialInvalid},
		{name: "limite de requisições", status: http.StatusOK, body: `{"code":40100,"message":"Too many requests"}`, want: domain.ErrRateLimited},
		{name: "qpm excedido", status: http.StatusOK, body: `{"code":40133,"message":"QPM"}`, want: domain.ErrRateLimited},
		{name: "http 429 sem envelope", status: http.StatusTooManyRequests, body: `slow down`, want: domain.ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestIntegrator(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := s.ListCampaigns(context.Background(), "tok", "700")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("código desconhecido é erro genérico", func(t *testing.T) {
		s := newTestIntegrator(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"code":50000,"message":"system error"}`))
		})

		_, err := s.ListCampaigns(context.Background(), "tok", "700")
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrRateLimited)
		assert.NotErrorIs(t, err, domain.ErrCredentialInvalid)
		assert.Contains(t, err.Error(), "50000")
	})
}

func TestCampaignState(t *testing.T) {
	assert.Equal(t, domain.CampaignStateActive, CampaignState("ENABLE", ""))
	assert.Equal(t, domain.CampaignStatePaused, CampaignState("DISABLE", "CAMPAIGN_STATUS_DISABLE"))
	assert.Equal(t, domain.CampaignStateRemoved, CampaignState("ENABLE", "CAMPAIGN_STATUS_DELETE"))
	assert.Equal(t, domain.CampaignStateUnknown, CampaignState("FROZEN", ""))
}
