package naverdomain

import jsoniter "github.com/json-iterator/go"

type StatsResponse struct {
	Data []StatRow `json:"data"`
}

// StatRow traz os números sem aspas; Number preserva o texto para conversão em decimal
type StatRow struct {
	ID        string          `json:"id"`
	DateStart string          `json:"dateStart"`
	DateEnd   string          `json:"dateEnd"`
	ImpCnt    jsoniter.Number `json:"impCnt"`
	ClkCnt    jsoniter.Number `json:"clkCnt"`
	SalesAmt  jsoniter.Number `json:"salesAmt"`
	Ccnt      jsoniter.Number `json:"ccnt"`
}
