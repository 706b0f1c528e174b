package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OAuthState é persistido entre o início do fluxo e o callback
type OAuthState struct {
	State          string    `json:"state"`
	OrganizationID string    `json:"organization_id"`
	Platform       Platform  `json:"platform"`
	ReturnContext  string    `json:"return_context"`
	RedirectURI    string    `json:"redirect_uri"`
	CreatedAt      time.Time `json:"created_at"`
}

type OAuthStart struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
}

// ConnectPayload cobre os dois caminhos de conexão: pós-OAuth e credencial direta (Naver)
type ConnectPayload struct {
	AccessToken       string     `json:"accessToken" validate:"required"`
	RefreshToken      string     `json:"refreshToken,omitempty"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
	ExternalAccountID string     `json:"externalAccountId,omitempty" validate:"omitempty,max=64"`
}

// Claims são produzidas pelo serviço de autorização externo
type Claims struct {
	OrganizationID string   `json:"organization_id"`
	UserID         string   `json:"user_id"`
	Permissions    []string `json:"permissions"`
	jwt.RegisteredClaims
}

func (c *Claims) HasPermission(permission string) bool {
	if c == nil {
		return false
	}
	for _, p := range c.Permissions {
		if p == permission || p == "*" {
			return true
		}
	}
	return false
}

const (
	PermissionAccountsRead    = "accounts:read"
	PermissionAccountsConnect = "accounts:connect"
	PermissionSyncRun         = "sync:run"
	PermissionSchedulerRun    = "scheduler:run"
)
