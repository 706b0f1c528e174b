package apiErrors

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/adsync-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// Erros de autenticação (1000-1999)
	ErrInvalidToken          = "AUTH_006" // Token inválido
	ErrExpiredToken          = "AUTH_007" // Token expirado
	ErrInsufficientPrivilege = "AUTH_008" // Privilégios insuficientes
	ErrReconnectRequired     = "AUTH_011" // Credencial da plataforma revogada ou expirada
	ErrOAuthExchange         = "AUTH_012" // Troca de código OAuth recusada

	// Erros de validação (2000-2999)
	ErrInvalidRequest      = "VAL_001" // Requisição inválida
	ErrMissingRequiredData = "VAL_002" // Dados obrigatórios ausentes
	ErrInvalidFormat       = "VAL_003" // Formato de dados inválido
	ErrNotFound            = "VAL_004" // Recurso inexistente
	ErrMethodNotAllowed    = "VAL_005" // Método HTTP não suportado na rota

	// Erros de sincronização (3000-3999)
	ErrSyncInProgress = "SYNC_001" // Já existe sincronização para a conta
	ErrRateLimited    = "SYNC_002" // Plataforma limitou as requisições

	// Erros do servidor (5000-5999)
	ErrInternalServer  = "SRV_001" // Erro interno do servidor
	ErrExternalService = "SRV_003" // Erro em serviço externo
)

var httpStatusMap = map[string]int{
	ErrInvalidToken:          http.StatusUnauthorized,
	ErrExpiredToken:          http.StatusUnauthorized,
	ErrInsufficientPrivilege: http.StatusForbidden,
	ErrReconnectRequired:     http.StatusConflict,
	ErrOAuthExchange:         http.StatusBadRequest,
	ErrInvalidRequest:        http.StatusBadRequest,
	ErrMissingRequiredData:   http.StatusBadRequest,
	ErrInvalidFormat:         http.StatusBadRequest,
	ErrNotFound:              http.StatusNotFound,
	ErrMethodNotAllowed:      http.StatusMethodNotAllowed,
	ErrSyncInProgress:        http.StatusConflict,
	ErrRateLimited:           http.StatusTooManyRequests,
	ErrInternalServer:        http.StatusInternalServerError,
	ErrExternalService:       http.StatusBadGateway,
}

// APIError representa um erro de API padronizado
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

func Status(code string) int {
	status, exists := httpStatusMap[code]
	if !exists {
		return http.StatusInternalServerError
	}
	return status
}

// WriteError escreve o erro padronizado para a resposta HTTP
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	apiErr := APIError{
		Code:    code,
		Message: message,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(Status(code))
	_ = json.NewEncoder(w).Encode(apiErr)
}

// FromError traduz a taxonomia do domínio. Erros desconhecidos não expõem a mensagem original.
func FromError(err error) APIError {
	var (
		validation *domain.ValidationError
		credential *domain.CredentialInvalidError
		rateLimit  *domain.RateLimitedError
		inProgress *domain.SyncInProgressError
		exchange   *domain.OAuthExchangeError
	)

	switch {
	case errors.As(err, &validation):
		return APIError{Code: ErrInvalidRequest, Message: validation.Error(), Details: map[string]string{"field": validation.Field}}
	case errors.As(err, &credential):
		return APIError{Code: ErrReconnectRequired, Message: "reconnect required", Details: map[string]string{"platform": credential.Platform.String()}}
	case errors.As(err, &rateLimit):
		return APIError{Code: ErrRateLimited, Message: rateLimit.Error(), Details: map[string]any{"retry_after_seconds": retryAfterSeconds(rateLimit)}}
	case errors.As(err, &inProgress):
		return APIError{Code: ErrSyncInProgress, Message: inProgress.Error()}
	case errors.As(err, &exchange):
		return APIError{Code: ErrOAuthExchange, Message: exchange.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return APIError{Code: ErrNotFound, Message: "resource not found"}
	}

	return APIError{Code: ErrInternalServer, Message: "Erro interno no servidor"}
}

// WriteDomainError escreve o erro já traduzido, com Retry-After quando a plataforma informou
func WriteDomainError(w http.ResponseWriter, err error) {
	var rateLimit *domain.RateLimitedError
	if errors.As(err, &rateLimit) {
		if secs := retryAfterSeconds(rateLimit); secs > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(secs))
		}
	}

	apiErr := FromError(err)
	WriteError(w, apiErr.Code, apiErr.Message, apiErr.Details)
}

func retryAfterSeconds(e *domain.RateLimitedError) int {
	return int(math.Ceil(e.RetryAfter.Seconds()))
}
