package naverdomain

type Campaign struct {
	NccCampaignID string `json:"nccCampaignId"`
	CustomerID    int64  `json:"customerId"`
	Name          string `json:"name"`
	CampaignTp    string `json:"campaignTp"`
	Status        string `json:"status"`
	StatusReason  string `json:"statusReason"`
	UserLock      bool   `json:"userLock"`
	DelFlag       bool   `json:"delFlag"`
}

type CustomerLink struct {
	ClientCustomerID int64  `json:"clientCustomerId"`
	ClientLoginID    string `json:"clientLoginId"`
	ManagerLoginID   string `json:"managerLoginId"`
}
