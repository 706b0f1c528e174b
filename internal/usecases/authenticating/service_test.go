package authenticating

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
)

func TestService_IssueAndValidate(t *testing.T) {
	s := NewService(config.Auth{Secret: "segredo-de-teste"})

	token, err := s.IssueToken(domain.Claims{
		OrganizationID: "org-1",
		UserID:         "user-1",
		Permissions:    []string{domain.PermissionSyncRun},
	}, time.Hour)
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "org-1", claims.OrganizationID)
	assert.True(t, claims.HasPermission(domain.PermissionSyncRun))
	assert.False(t, claims.HasPermission(domain.PermissionSchedulerRun))
}

func TestService_ValidateToken_Rejections(t *testing.T) {
	s := &Service{secret: []byte("segredo-de-teste"), now: time.Now}
	other := &Service{secret: []byte("outro-segredo"), now: time.Now}
	past := &Service{secret: []byte("segredo-de-teste"), now: func() time.Time { return time.Now().Add(-2 * time.Hour) }}

	signedElsewhere, err := other.IssueToken(domain.Claims{OrganizationID: "org-1"}, time.Hour)
	require.NoError(t, err)

	expired, err := past.IssueToken(domain.Claims{OrganizationID: "org-1"}, time.Hour)
	require.NoError(t, err)

	noOrg, err := s.IssueToken(domain.Claims{UserID: "user-1"}, time.Hour)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, domain.Claims{OrganizationID: "org-1"}).SignedString(s.secret)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, domain.Claims{
		OrganizationID:   "org-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "lixo", token: "not-a-jwt", want: ErrInvalidToken},
		{name: "segredo diferente", token: signedElsewhere, want: ErrInvalidToken},
		{name: "expirado", token: expired, want: ErrExpiredToken},
		{name: "sem organização", token: noOrg, want: ErrNoOrganization},
		{name: "sem expiração", token: noExpiry, want: ErrInvalidToken},
		{name: "alg none", token: unsigned, want: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
