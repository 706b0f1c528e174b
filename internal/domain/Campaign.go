package domain

import "time"

// CampaignState é o vocabulário canônico. O status nativo da plataforma é
// guardado sem recodificação em Campaign.Status.
type CampaignState string

const (
	CampaignStateActive  CampaignState = "ACTIVE"
	CampaignStatePaused  CampaignState = "PAUSED"
	CampaignStateRemoved CampaignState = "REMOVED"
	CampaignStateUnknown CampaignState = "UNKNOWN"
)

type Campaign struct {
	ID         string        `json:"id"`
	AccountID  string        `json:"account_id"`
	ExternalID string        `json:"external_id"`
	Name       string        `json:"name"`
	Status     string        `json:"status"`
	State      CampaignState `json:"state"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

type NormalizedCampaign struct {
	ExternalID string        `json:"external_id"`
	Name       string        `json:"name"`
	Status     string        `json:"status"`
	State      CampaignState `json:"state"`
}

// Differs compara apenas os campos mutáveis
func (c *Campaign) Differs(n NormalizedCampaign) bool {
	return c.Name != n.Name || c.Status != n.Status || c.State != n.State
}

// Apply copia os campos mutáveis da forma normalizada
func (c *Campaign) Apply(n NormalizedCampaign) {
	c.Name = n.Name
	c.Status = n.Status
	c.State = n.State
}

type CampaignSyncResult struct {
	Synced    int        `json:"synced"`
	Created   int        `json:"created"`
	Updated   int        `json:"updated"`
	Unchanged int        `json:"unchanged"`
	Errors    []RowError `json:"errors"`
}
