package tiktokdomain

type Advertiser struct {
	AdvertiserID   string `json:"advertiser_id"`
	AdvertiserName string `json:"advertiser_name"`
}

type AdvertiserData struct {
	List []Advertiser `json:"list"`
}
