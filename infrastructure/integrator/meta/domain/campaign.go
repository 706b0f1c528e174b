package metadomain

type Campaign struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	EffectiveStatus string `json:"effective_status"`
}

type Cursors struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// Paging segue o formato do Graph: Next é a URL absoluta da próxima página
type Paging struct {
	Cursors Cursors `json:"cursors"`
	Next    string  `json:"next"`
}

type ResponseAdCampaign struct {
	Data   []Campaign `json:"data"`
	Paging Paging     `json:"paging"`
}
