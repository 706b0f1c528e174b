package domain

import (
	"time"
)

type ConnectedAccountStatus string

// Ciclo de vida da credencial: PENDING -> ACTIVE -> EXPIRED -> ACTIVE.
// EXPIRED só volta para ACTIVE por uma nova conexão ou renovação de token, nunca pela sincronização.
const (
	ConnectedAccountStatusPending ConnectedAccountStatus = "PENDING"
	ConnectedAccountStatusActive  ConnectedAccountStatus = "ACTIVE"
	ConnectedAccountStatusExpired ConnectedAccountStatus = "EXPIRED"
)

type ConnectedAccount struct {
	ID                     string                 `json:"id"`
	OrganizationID         string                 `json:"organization_id"`
	Platform               Platform               `json:"platform"`
	ExternalID             string                 `json:"external_id"`
	Name                   string                 `json:"name"`
	AccessTokenCiphertext  string                 `json:"-"`
	RefreshTokenCiphertext *string                `json:"-"`
	Status                 ConnectedAccountStatus `json:"status"`
	TokenExpiresAt         *time.Time             `json:"token_expires_at,omitempty"`
	LastSyncedAt           *time.Time             `json:"last_synced_at,omitempty"`
	CreatedAt              time.Time              `json:"created_at"`
	UpdatedAt              time.Time              `json:"updated_at"`
}

func (a *ConnectedAccount) Active() bool {
	return a != nil && a.Status == ConnectedAccountStatusActive
}

// LockKey identifica a conta externa para exclusão mútua entre sincronizações
func (a *ConnectedAccount) LockKey() string {
	return a.OrganizationID + ":" + string(a.Platform) + ":" + a.ExternalID
}

// TokenExpiringWithin indica se a credencial expira dentro da janela informada.
// Contas sem data de expiração (TikTok, Naver) nunca expiram por tempo.
func (a *ConnectedAccount) TokenExpiringWithin(now time.Time, window time.Duration) bool {
	if a.TokenExpiresAt == nil || a.TokenExpiresAt.IsZero() {
		return false
	}
	return a.TokenExpiresAt.Sub(now) < window
}

// Credentials é a forma em texto claro, existe apenas em memória
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}

type NormalizedAccount struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Currency   string `json:"currency,omitempty"`
}

type ConnectedAccountResponse struct {
	ID             string                 `json:"id"`
	Platform       Platform               `json:"platform"`
	ExternalID     string                 `json:"external_id"`
	Name           string                 `json:"name"`
	Status         ConnectedAccountStatus `json:"status"`
	HasRefresh     bool                   `json:"has_refresh_token"`
	TokenExpiresAt *time.Time             `json:"token_expires_at,omitempty"`
	LastSyncedAt   *time.Time             `json:"last_synced_at,omitempty"`
}

func NewConnectedAccountResponse(a *ConnectedAccount) *ConnectedAccountResponse {
	return &ConnectedAccountResponse{
		ID:             a.ID,
		Platform:       a.Platform,
		ExternalID:     a.ExternalID,
		Name:           a.Name,
		Status:         a.Status,
		HasRefresh:     a.RefreshTokenCiphertext != nil,
		TokenExpiresAt: a.TokenExpiresAt,
		LastSyncedAt:   a.LastSyncedAt,
	}
}
