package middleware

import (
	"net/http"

	"github.com/vfg2006/adsync-api/pkg/apiErrors"
	"github.com/vfg2006/adsync-api/pkg/log"
)

// RequirePermission restringe a rota às claims que carregam a permissão
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				log.ForContext(r.Context()).Warn("Tentativa de acesso sem autenticação")
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
				return
			}

			if !claims.HasPermission(permission) {
				log.ForContext(r.Context()).WithFields(log.Fields{
					"user_id":         claims.UserID,
					"organization_id": claims.OrganizationID,
					"permission":      permission,
				}).Warn("Acesso negado")
				apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Você não tem permissão para acessar este recurso", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
