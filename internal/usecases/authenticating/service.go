package authenticating

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
)

//go:generate mockgen -source=service.go -destination=mocks/service.go -package=mocks

// Authenticator valida os tokens emitidos pelo serviço de autorização da plataforma.
// Os tokens trazem a organização e as permissões do chamador.
type Authenticator interface {
	ValidateToken(tokenString string) (*domain.Claims, error)
	IssueToken(claims domain.Claims, ttl time.Duration) (string, error)
}

type Service struct {
	secret []byte
	now    func() time.Time
}

func NewService(cfg config.Auth) Authenticator {
	return &Service{
		secret: []byte(cfg.Secret),
		now:    time.Now,
	}
}

func (s *Service) ValidateToken(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.OrganizationID == "" {
		return nil, ErrNoOrganization
	}

	return claims, nil
}

// IssueToken assina com o mesmo segredo; usado por ferramentas internas e testes
func (s *Service) IssueToken(claims domain.Claims, ttl time.Duration) (string, error) {
	now := s.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
