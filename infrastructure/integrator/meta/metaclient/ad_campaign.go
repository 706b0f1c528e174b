package metaclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	metadomain "github.com/vfg2006/adsync-api/infrastructure/integrator/meta/domain"
)

// GetAdCampaignByAccountID lista as campanhas da conta em todos os status
func (c *MetaClient) GetAdCampaignByAccountID(ctx context.Context, token, accountID string) ([]metadomain.Campaign, error) {
	params := url.Values{}
	params.Add("fields", "id,name,status,effective_status")
	params.Add("limit", "100")

	path := fmt.Sprintf("/%s/campaigns", ActID(accountID))

	return fetchAll(ctx, c, c.endpoint(path, params), token,
		func(body []byte) ([]metadomain.Campaign, metadomain.Paging, error) {
			var response metadomain.ResponseAdCampaign
			err := json.Unmarshal(body, &response)
			return response.Data, response.Paging, err
		})
}

// ActID garante o prefixo act_ exigido pelos endpoints de conta
func ActID(accountID string) string {
	if strings.HasPrefix(accountID, "act_") {
		return accountID
	}
	return "act_" + accountID
}
