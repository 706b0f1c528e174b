package metaclient

import (
	"context"
	"net/url"

	metadomain "github.com/vfg2006/adsync-api/infrastructure/integrator/meta/domain"
)

// GetAdAccounts lista todas as contas de anúncio acessíveis pelo token
func (c *MetaClient) GetAdAccounts(ctx context.Context, token string) ([]metadomain.AdAccount, error) {
	params := url.Values{}
	params.Add("fields", "id,account_id,name,currency,account_status")
	params.Add("limit", "100")

	return fetchAll(ctx, c, c.endpoint("/me/adaccounts", params), token,
		func(body []byte) ([]metadomain.AdAccount, metadomain.Paging, error) {
			var response metadomain.ResponseAdAccount
			err := json.Unmarshal(body, &response)
			return response.Data, response.Paging, err
		})
}
