package handler

import (
	"context"
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/apiErrors"
	"github.com/vfg2006/adsync-api/pkg/log"
	"github.com/vfg2006/adsync-api/pkg/middleware"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.L.WithError(err).Warn("Erro ao codificar resposta")
	}
}

// fail registra o erro com o ID de correlação e responde com o código da taxonomia
func fail(w http.ResponseWriter, r *http.Request, err error) {
	log.ForContext(r.Context()).WithFields(log.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).WithError(err).Warn("Requisição falhou")
	apiErrors.WriteDomainError(w, err)
}

func param(r *http.Request, name string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(name)
}

func platformParam(r *http.Request) (domain.Platform, error) {
	return domain.ParsePlatform(param(r, "platform"))
}

func claims(w http.ResponseWriter, r *http.Request) (*domain.Claims, bool) {
	c, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
	}
	return c, ok
}

// ownedAccount esconde contas de outras organizações como inexistentes
func ownedAccount(ctx context.Context, repo repository.AccountRepository, organizationID, id string) (*domain.ConnectedAccount, error) {
	account, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.OrganizationID != organizationID {
		return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	return account, nil
}

func ownedCampaign(ctx context.Context, accounts repository.AccountRepository, campaigns repository.CampaignRepository, organizationID, id string) (*domain.Campaign, error) {
	campaign, err := campaigns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := ownedAccount(ctx, accounts, organizationID, campaign.AccountID); err != nil {
		return nil, fmt.Errorf("campaign %s: %w", id, domain.ErrNotFound)
	}
	return campaign, nil
}
