package naver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	naverdomain "github.com/vfg2006/adsync-api/infrastructure/integrator/naver/domain"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/naver/naverclient"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
)

var fixedNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

var testCredential = naverdomain.Credential{APIKey: "api-key", SecretKey: "secret-key", CustomerID: "1001"}

func encoded(t *testing.T) string {
	t.Helper()
	token, err := EncodeCredential(testCredential)
	require.NoError(t, err)
	return token
}

func newTestIntegrator(t *testing.T, handler http.HandlerFunc) *NaverIntegrator {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := naverclient.NewClient(config.Naver{URL: srv.URL}, srv.Client(), nil)
	client.Now = func() time.Time { return fixedNow }

	return New(client)
}

func TestNaverIntegrator_OAuthUnsupported(t *testing.T) {
	s := New(nil)

	_, err := s.AuthorizationURL("st", "cb")
	var exErr *domain.OAuthExchangeError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "unsupported", exErr.Reason)

	_, err = s.ExchangeAuthorizationCode(context.Background(), "code", "cb")
	assert.ErrorIs(t, err, domain.ErrOAuthExchange)
}

func TestParseCredential(t *testing.T) {
	cred, err := ParseCredential(encoded(t))
	require.NoError(t, err)
	assert.Equal(t, testCredential, cred)

	_, err = ParseCredential("not json")
	assert.ErrorIs(t, err, domain.ErrCredentialInvalid)

	_, err = ParseCredential(`{"apiKey":"a"}`)
	assert.ErrorIs(t, err, domain.ErrCredentialInvalid)
}

func TestNaverIntegrator_SignsRequests(t *testing.T) {
	s := newTestIntegrator(t, func(w http.ResponseWriter, r *http.Request) {
		ts := r.Header.Get("X-Timestamp")
		assert.Equal(t, "1704110400000", ts)
		assert.Equal(t, "api-key", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "2002", r.Header.Get("X-Customer"))
		assert.Equal(t, naverclient.Signature("secret-key", ts, http.MethodGet, "/ncc/campaigns"), r.Header.Get("X-Signature"))

		_, _ = w.Write([]byte(`[
			{"nccCampaignId":"cmp-1","name":"Marca","status":"ELIGIBLE"},
			{"nccCampaignId":"cmp-2","name":"Busca","status":"ELIGIBLE","userLock":true},
			{"nccCampaignId":"cmp-3","name":"Antiga","status":"PAUSED","delFlag":true}
		]`))
	})

	campaigns, err := s.ListCampaigns(context.Background(), encoded(t), "2002")
	require.NoError(t, err)
	require.Len(t, campaigns, 3)
	assert.Equal(t, domain.NormalizedCampaign{ExternalID: "cmp-1", Name: "Marca", Status: "ELIGIBLE", State: domain.CampaignStateActive}, campaigns[0])
	assert.Equal(t, domain.CampaignStatePaused, campaigns[1].State)
	assert.Equal(t, domain.CampaignStateRemoved, campaigns[2].State)
}

func TestSignature_Deterministic(t *testing.T) {
	a := naverclient.Signature("s", "1", http.MethodGet, "/ncc/campaigns")
	assert.Equal(t, a, naverclient.Signature("s", "1", http.MethodGet, "/ncc/campaigns"))
	assert.NotEqual(t, a, naverclient.Signature("s", "2", http.MethodGet, "/ncc/campaigns"))
}

func TestNaverIntegrator_ListAdAccounts(t *testing.T) {
	s := newTestIntegrator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customer-links", r.URL.Path)
		assert.Equal(t, "MYCLIENTS", r.URL.Query().Get("type"))
		_, _ = w.Write([]byte(`[{"clientCustomerId":2002,"clientLoginId":"cliente"},{"clientCustomerId":1001}]`))
	})

	accounts, err := s.ListAdAccounts(context.Background(), encoded(t))
	require.NoError(t, err)
	assert.Equal(t, []domain.NormalizedAccount{
		{ExternalID: "1001", Name: "1001", Currency: "KRW"},
		{ExternalID: "2002", Name: "cliente", Currency: "KRW"},
	}, accounts)
}

func TestNaverIntegrator_ListInsights(t *testing.T) {
	s := newTestIntegrator(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/stats", r.URL.Path)
		assert.Equal(t, "cmp-1", q.Get("id"))
		assert.Equal(t, "1", q.Get("timeIncrement"))
		assert.Contains(t, q.Get("timeRange"), `"since":"2024-01-01"`)
		assert.Equal(t, "1001", r.Header.Get("X-Customer"))

		_, _ = w.Write([]byte(`{"data":[
			{"id":"cmp-1","dateStart":"2024-01-01","dateEnd":"2024-01-01","impCnt":300,"clkCnt":12,"salesAmt":15400,"ccnt":1.5},
			{"id":"cmp-1","dateStart":"??","impCnt":1}
		]}`))
	})

	rows, err := s.ListInsights(context.Background(), encoded(t), domain.InsightQuery{
		CampaignExternalID: "cmp-1",
		Range: domain.DateRange{
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Empty(t, rows[0].ParseError)
	assert.Equal(t, int64(300), rows[0].Metrics.Impressions)
	assert.Equal(t, int64(12), rows[0].Metrics.Clicks)
	assert.True(t, decimal.NewFromInt(15400).Equal(rows[0].Metrics.Spend))
	assert.True(t, decimal.RequireFromString("1.5").Equal(rows[0].Metrics.Conversions))
	assert.Equal(t, "KRW", rows[0].Metrics.Currency)

	assert.NotEmpty(t, rows[1].ParseError)
}

func TestNaverIntegrator_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "assinatura inválida", status: http.StatusUnauthorized, body: `{"code":1018,"title":"Invalid signature"}`, want: domain.ErrCredentialInvalid},
		{name: "sem permissão", status: http.StatusForbidden, body: `{"code":1019,"title":"Forbidden"}`, want: domain.ErrCredentialInvalid},
		{name: "cota excedida por código", status: http.StatusBadRequest, body: `{"code":1016,"title":"Too many requests"}`, want: domain.ErrRateLimited},
		{name: "http 429", status: http.StatusTooManyRequests, body: ``, want: domain.ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestIntegrator(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := s.ListCampaigns(context.Background(), encoded(t), "1001")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCampaignState(t *testing.T) {
	assert.Equal(t, domain.CampaignStateActive, CampaignState(naverdomain.Campaign{Status: "LIMITEDBYBUDGET"}))
	assert.Equal(t, domain.CampaignStateUnknown, CampaignState(naverdomain.Campaign{Status: "NEW"}))
}
