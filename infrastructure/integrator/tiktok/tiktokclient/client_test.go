package tiktokclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/adsync-api/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *TikTokClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.TikTok{URL: srv.URL + "/open_api/v1.3", AppID: "app", Secret: "secret"}, srv.Client(), nil)
}

func limitPages(t *testing.T, n int) {
	t.Helper()

	previous := maxPages
	maxPages = n
	t.Cleanup(func() { maxPages = previous })
}

func TestGetCampaigns_DrainsEveryPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		_, _ = w.Write([]byte(`{"code":0,"message":"OK","data":{"list":[{"campaign_id":"c` + page + `"}],"page_info":{"page":` + page + `,"total_page":2}}}`))
	})

	campaigns, err := c.GetCampaigns(context.Background(), "tt-token", "adv-1")
	require.NoError(t, err)
	require.Len(t, campaigns, 2)
	assert.Equal(t, "c2", campaigns[1].CampaignID)
}

func TestGetCampaigns_FailsWhenPageLimitIsReached(t *testing.T) {
	limitPages(t, 3)

	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"code":0,"message":"OK","data":{"list":[{"campaign_id":"c"}],"page_info":{"total_page":1500}}}`))
	})

	campaigns, err := c.GetCampaigns(context.Background(), "tt-token", "adv-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pagination exceeded 3 pages")
	assert.Nil(t, campaigns)
	assert.EqualValues(t, 3, calls)
}

func TestGetCampaignReport_FailsWhenPageLimitIsReached(t *testing.T) {
	limitPages(t, 2)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":0,"message":"OK","data":{"list":[],"page_info":{"total_page":1500}}}`))
	})

	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows, err := c.GetCampaignReport(context.Background(), "tt-token", "adv-1", "c1", day, day)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pagination exceeded 2 pages")
	assert.Nil(t, rows)
}
