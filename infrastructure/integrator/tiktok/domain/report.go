package tiktokdomain

type ReportRow struct {
	Dimensions ReportDimensions `json:"dimensions"`
	Metrics    ReportMetrics    `json:"metrics"`
}

type ReportDimensions struct {
	CampaignID  string `json:"campaign_id"`
	StatTimeDay string `json:"stat_time_day"`
}

// ReportMetrics vem todo como string na resposta do relatório integrado
type ReportMetrics struct {
	Spend       string `json:"spend"`
	Impressions string `json:"impressions"`
	Clicks      string `json:"clicks"`
	Conversion  string `json:"conversion"`
	Currency    string `json:"currency"`
}

type ReportData struct {
	List     []ReportRow `json:"list"`
	PageInfo PageInfo    `json:"page_info"`
}
