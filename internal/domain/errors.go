package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinelas da taxonomia compartilhada. Adaptadores e o serviço de criptografia
// traduzem seus erros para os tipos abaixo antes de chegar aos orquestradores.
var (
	ErrConfiguration     = errors.New("configuration error")
	ErrOAuthExchange     = errors.New("oauth exchange failed")
	ErrCredentialInvalid = errors.New("credential invalid")
	ErrRateLimited       = errors.New("rate limited")
	ErrValidation        = errors.New("validation error")
	ErrDecryption        = errors.New("decryption failed")
	ErrSyncInProgress    = errors.New("sync in progress")
	ErrNotFound          = errors.New("not found")
)

// ConfigurationError indica chave ou segredo ausente. Só ocorre na inicialização.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// OAuthExchangeError carrega apenas o motivo informado pela plataforma, nunca o corpo bruto.
type OAuthExchangeError struct {
	Platform Platform
	Reason   string
	Err      error
}

func (e *OAuthExchangeError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: oauth exchange failed", e.Platform.Lower())
	}
	return fmt.Sprintf("%s: oauth exchange failed: %s", e.Platform.Lower(), e.Reason)
}

func (e *OAuthExchangeError) Is(target error) bool { return target == ErrOAuthExchange }

func (e *OAuthExchangeError) Unwrap() error { return e.Err }

// CredentialInvalidError significa token revogado/expirado: a conta precisa ser reconectada.
type CredentialInvalidError struct {
	Platform Platform
	Reason   string
	Err      error
}

func (e *CredentialInvalidError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: credential invalid, reconnect required", e.Platform.Lower())
	}
	return fmt.Sprintf("%s: credential invalid, reconnect required: %s", e.Platform.Lower(), e.Reason)
}

func (e *CredentialInvalidError) Is(target error) bool { return target == ErrCredentialInvalid }

func (e *CredentialInvalidError) Unwrap() error { return e.Err }

// RateLimitedError é transitório. RetryAfter é zero quando a plataforma não informa.
type RateLimitedError struct {
	Platform   Platform
	RetryAfter time.Duration
	Reason     string
}

func (e *RateLimitedError) Error() string {
	msg := fmt.Sprintf("%s: rate limited", e.Platform.Lower())
	if e.RetryAfter > 0 {
		msg = fmt.Sprintf("%s, retry after %s", msg, e.RetryAfter)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	return msg
}

func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }

// ValidationError rejeita entrada malformada antes de qualquer acesso à rede.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// DecryptionError nunca carrega nenhum pedaço do texto cifrado ou do texto claro.
type DecryptionError struct {
	Reason string
}

func (e *DecryptionError) Error() string {
	return "decryption failed: " + e.Reason
}

func (e *DecryptionError) Is(target error) bool { return target == ErrDecryption }

type SyncInProgressError struct {
	AccountID string
}

func (e *SyncInProgressError) Error() string {
	return fmt.Sprintf("sync already in progress for account %s", e.AccountID)
}

func (e *SyncInProgressError) Is(target error) bool { return target == ErrSyncInProgress }

// RowError registra a falha de uma única linha sem abortar o lote
type RowError struct {
	ExternalID string `json:"external_id,omitempty"`
	Date       string `json:"date,omitempty"`
	Message    string `json:"message"`
}

func (e RowError) Error() string {
	switch {
	case e.ExternalID != "" && e.Date != "":
		return fmt.Sprintf("%s@%s: %s", e.ExternalID, e.Date, e.Message)
	case e.ExternalID != "":
		return fmt.Sprintf("%s: %s", e.ExternalID, e.Message)
	case e.Date != "":
		return fmt.Sprintf("%s: %s", e.Date, e.Message)
	}
	return e.Message
}
