package metaclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/adsync-api/internal/config"
)

func newTestClient(t *testing.T, handler func(srv *httptest.Server) http.HandlerFunc) *MetaClient {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(srv)(w, r)
	}))
	t.Cleanup(srv.Close)

	return NewClient(config.Meta{URL: srv.URL + "/v22.0"}, srv.Client(), nil)
}

func limitPages(t *testing.T, n int) {
	t.Helper()

	previous := maxPages
	maxPages = n
	t.Cleanup(func() { maxPages = previous })
}

func TestGetAdCampaignByAccountID_FollowsPaging(t *testing.T) {
	c := newTestClient(t, func(srv *httptest.Server) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("after") == "" {
				_, _ = w.Write([]byte(`{"data":[{"id":"1"}],"paging":{"next":"` + srv.URL + `/v22.0/act_1/campaigns?after=c1"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"data":[{"id":"2"}],"paging":{}}`))
		}
	})

	campaigns, err := c.GetAdCampaignByAccountID(context.Background(), "EAAB", "1")
	require.NoError(t, err)
	require.Len(t, campaigns, 2)
	assert.Equal(t, "2", campaigns[1].ID)
}

func TestGetAdCampaignByAccountID_FailsWhenPageLimitIsReached(t *testing.T) {
	limitPages(t, 2)

	var calls int32
	c := newTestClient(t, func(srv *httptest.Server) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			_, _ = w.Write([]byte(`{"data":[{"id":"1"}],"paging":{"next":"` + srv.URL + `/v22.0/act_1/campaigns?after=again"}}`))
		}
	})

	campaigns, err := c.GetAdCampaignByAccountID(context.Background(), "EAAB", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pagination exceeded 2 pages")
	assert.Nil(t, campaigns)
	assert.EqualValues(t, 2, calls)
}
