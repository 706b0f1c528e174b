package authenticating

import "errors"

var (
	ErrInvalidToken   = errors.New("token inválido")
	ErrExpiredToken   = errors.New("token expirado")
	ErrNoOrganization = errors.New("token sem organização")
)
