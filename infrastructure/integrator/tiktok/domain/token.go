package tiktokdomain

type AccessTokenRequest struct {
	AppID    string `json:"app_id"`
	Secret   string `json:"secret"`
	AuthCode string `json:"auth_code"`
}

type AccessTokenData struct {
	AccessToken   string   `json:"access_token"`
	AdvertiserIDs []string `json:"advertiser_ids"`
	Scope         []int    `json:"scope"`
}
