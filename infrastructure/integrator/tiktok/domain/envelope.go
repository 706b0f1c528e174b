package tiktokdomain

import jsoniter "github.com/json-iterator/go"

// Envelope é o formato de todas as respostas. HTTP 200 não garante sucesso: Code != 0 é erro.
type Envelope struct {
	Code      int                 `json:"code"`
	Message   string              `json:"message"`
	RequestID string              `json:"request_id"`
	Data      jsoniter.RawMessage `json:"data"`
}

// Códigos documentados da Business API
const (
	CodeOK                = 0
	CodeInvalidAuth       = 40001
	CodeTooManyRequests   = 40100
	CodeAccessTokenExpire = 40102
	CodeInvalidToken      = 40104
	CodeTokenRevoked      = 40105
	CodeQPMExceeded       = 40133
)

func (e *Envelope) IsRateLimited() bool {
	return e.Code == CodeTooManyRequests || e.Code == CodeQPMExceeded
}

func (e *Envelope) IsCredentialInvalid() bool {
	switch e.Code {
	case CodeInvalidAuth, CodeAccessTokenExpire, CodeInvalidToken, CodeTokenRevoked:
		return true
	}
	return false
}

type PageInfo struct {
	Page        int `json:"page"`
	PageSize    int `json:"page_size"`
	TotalNumber int `json:"total_number"`
	TotalPage   int `json:"total_page"`
}
