package metadomain

type Action struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// CampaignInsight é uma linha diária (time_increment=1). O Graph devolve números como string.
type CampaignInsight struct {
	AccountCurrency string   `json:"account_currency"`
	Actions         []Action `json:"actions"`
	CampaignID      string   `json:"campaign_id"`
	Clicks          string   `json:"clicks"`
	DateStart       string   `json:"date_start"`
	DateStop        string   `json:"date_stop"`
	Impressions     string   `json:"impressions"`
	Objective       string   `json:"objective"`
	Spend           string   `json:"spend"`
}

type ResponseCampaignInsight struct {
	Data   []CampaignInsight `json:"data"`
	Paging Paging            `json:"paging"`
}

// ConversionActionType devolve o action_type que conta como conversão para o objetivo.
// Objetivos não mapeados não têm conversão.
func (c *CampaignInsight) ConversionActionType() (string, bool) {
	t, ok := MetaObjectiveToActionType[c.Objective]
	return t, ok
}

// Mapeamento de "objective" -> "action_type"
var MetaObjectiveToActionType = map[string]string{
	"LINK_CLICKS":           "link_click",
	"POST_ENGAGEMENT":       "post_engagement",
	"PAGE_LIKES":            "like",
	"VIDEO_VIEWS":           "video_view",
	"LEAD_GENERATION":       "lead",
	"CONVERSIONS":           "offsite_conversion",
	"APP_INSTALLS":          "app_install",
	"PRODUCT_CATALOG_SALES": "offsite_conversion.fb_pixel_purchase",
	"MESSAGES":              "onsite_conversion.messaging_first_reply",
	"STORE_TRAFFIC":         "store_visit",
	"EVENT_RESPONSES":       "rsvp",
	"OUTCOME_ENGAGEMENT":    "onsite_conversion.messaging_conversation_started_7d",
	"OUTCOME_LEADS":         "lead",
	"OUTCOME_SALES":         "offsite_conversion.fb_pixel_purchase",
	"OUTCOME_TRAFFIC":       "link_click",
	"OUTCOME_APP_PROMOTION": "app_install",
}
