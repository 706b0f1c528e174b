package googledomain

import "strings"

type ListAccessibleCustomersResponse struct {
	ResourceNames []string `json:"resourceNames"`
}

// CustomerID extrai o id de "customers/1234567890"
func CustomerID(resourceName string) string {
	return strings.TrimPrefix(resourceName, "customers/")
}

type SearchRequest struct {
	Query     string `json:"query"`
	PageToken string `json:"pageToken,omitempty"`
}

type SearchResponse struct {
	Results       []Row  `json:"results"`
	NextPageToken string `json:"nextPageToken"`
}

// Row é uma linha GAQL; apenas os recursos selecionados vêm preenchidos
type Row struct {
	Customer *Customer `json:"customer,omitempty"`
	Campaign *Campaign `json:"campaign,omitempty"`
	Segments *Segments `json:"segments,omitempty"`
	Metrics  *Metrics  `json:"metrics,omitempty"`
}

type Customer struct {
	ID              FlexNumber `json:"id"`
	DescriptiveName string     `json:"descriptiveName"`
	CurrencyCode    string     `json:"currencyCode"`
}

type Campaign struct {
	ResourceName string     `json:"resourceName"`
	ID           FlexNumber `json:"id"`
	Name         string     `json:"name"`
	Status       string     `json:"status"`
}

type Segments struct {
	Date string `json:"date"`
}

// Metrics: a API serializa int64 como string e double como número
type Metrics struct {
	Impressions FlexNumber `json:"impressions"`
	Clicks      FlexNumber `json:"clicks"`
	CostMicros  FlexNumber `json:"costMicros"`
	Conversions FlexNumber `json:"conversions"`
}

// FlexNumber aceita números com ou sem aspas
type FlexNumber string

func (n *FlexNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*n = FlexNumber(s)
	return nil
}

func (n FlexNumber) String() string {
	return string(n)
}
