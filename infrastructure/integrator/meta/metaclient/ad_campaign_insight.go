package metaclient

import (
	"context"
	"fmt"
	"net/url"
	"time"

	metadomain "github.com/vfg2006/adsync-api/infrastructure/integrator/meta/domain"
)

// GetAdCampaignInsightsByID devolve uma linha por dia do intervalo
func (c *MetaClient) GetAdCampaignInsightsByID(ctx context.Context, token, campaignID string, since, until time.Time) ([]metadomain.CampaignInsight, error) {
	timeRange := fmt.Sprintf("{\"since\":\"%s\",\"until\":\"%s\"}", since.Format(time.DateOnly), until.Format(time.DateOnly))

	params := url.Values{}
	params.Add("level", "campaign")
	params.Add("fields", "campaign_id,account_currency,spend,impressions,clicks,objective,actions")
	params.Add("time_range", timeRange)
	params.Add("time_increment", "1")
	params.Add("limit", "100")

	path := fmt.Sprintf("/%s/insights", campaignID)

	return fetchAll(ctx, c, c.endpoint(path, params), token,
		func(body []byte) ([]metadomain.CampaignInsight, metadomain.Paging, error) {
			var response metadomain.ResponseCampaignInsight
			err := json.Unmarshal(body, &response)
			return response.Data, response.Paging, err
		})
}
