package metaclient

import (
	"fmt"
	"net/http"
	"time"

	metadomain "github.com/vfg2006/adsync-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/utils"
)

// ParseErrorResponse tenta parsear um erro da API do Meta
func ParseErrorResponse(body []byte) (*metadomain.ErrorResponse, error) {
	var errorResp metadomain.ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil {
		return nil, err
	}
	return &errorResp, nil
}

// classify traduz uma resposta de erro do Graph para a taxonomia de domain
func (c *MetaClient) classify(resp *utils.Response) error {
	errResp, parseErr := ParseErrorResponse(resp.Body)

	if parseErr == nil && errResp.IsTokenExpired() {
		return &domain.CredentialInvalidError{
			Platform: domain.PlatformMeta,
			Reason:   utils.Truncate(errResp.Error.Message, 200),
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests || (parseErr == nil && errResp.IsRateLimited()) {
		reason := ""
		if parseErr == nil {
			reason = utils.Truncate(errResp.Error.Message, 200)
		}
		return &domain.RateLimitedError{
			Platform:   domain.PlatformMeta,
			RetryAfter: c.retryAfter(resp),
			Reason:     reason,
		}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return &domain.CredentialInvalidError{Platform: domain.PlatformMeta, Reason: "unauthorized"}
	}

	if parseErr == nil && errResp.Error.Message != "" {
		return fmt.Errorf("meta: graph error code %d (status %d): %s",
			errResp.Error.Code, resp.StatusCode, utils.Truncate(errResp.Error.Message, 200))
	}

	return fmt.Errorf("meta: unexpected status %d", resp.StatusCode)
}

// retryAfter usa o maior estimated_time_to_regain_access (em minutos) do header de uso,
// caindo para Retry-After quando ausente
func (c *MetaClient) retryAfter(resp *utils.Response) time.Duration {
	if raw := resp.Header.Get("X-Business-Use-Case-Usage"); raw != "" {
		var usage metadomain.BusinessUseCaseUsage
		if err := json.Unmarshal([]byte(raw), &usage); err == nil {
			longest := 0
			for _, entries := range usage {
				for _, e := range entries {
					if e.EstimatedTimeToRegainAccess > longest {
						longest = e.EstimatedTimeToRegainAccess
					}
				}
			}
			if longest > 0 {
				return time.Duration(longest) * time.Minute
			}
		}
	}

	return utils.ParseRetryAfter(resp.Header.Get("Retry-After"), c.Now())
}
