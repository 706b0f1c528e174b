package tiktokdomain

type Campaign struct {
	CampaignID      string `json:"campaign_id"`
	CampaignName    string `json:"campaign_name"`
	OperationStatus string `json:"operation_status"`
	SecondaryStatus string `json:"secondary_status"`
}

type CampaignData struct {
	List     []Campaign `json:"list"`
	PageInfo PageInfo   `json:"page_info"`
}
