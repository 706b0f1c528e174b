package handler

import (
	"io"
	"net/http"

	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/internal/usecases/connecting"
	"github.com/vfg2006/adsync-api/pkg/apiErrors"
)

const maxConnectBody = 64 << 10

func ListAccounts(service connecting.ConnectingService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := claims(w, r)
		if !ok {
			return
		}

		var platform domain.Platform
		if raw := r.URL.Query().Get("platform"); raw != "" {
			p, err := domain.ParsePlatform(raw)
			if err != nil {
				fail(w, r, err)
				return
			}
			platform = p
		}

		accounts, err := service.ListAccounts(r.Context(), c.OrganizationID, platform)
		if err != nil {
			fail(w, r, err)
			return
		}

		resp := make([]*domain.ConnectedAccountResponse, 0, len(accounts))
		for _, a := range accounts {
			resp = append(resp, domain.NewConnectedAccountResponse(a))
		}

		writeJSON(w, http.StatusOK, resp)
	})
}

// ConnectAccount recebe o corpo cru: o formato depende da plataforma
func ConnectAccount(service connecting.ConnectingService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := claims(w, r)
		if !ok {
			return
		}

		platform, err := platformParam(r)
		if err != nil {
			fail(w, r, err)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxConnectBody))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Corpo da requisição inválido", nil)
			return
		}

		account, err := service.ConnectAccount(r.Context(), c.OrganizationID, platform, body)
		if err != nil {
			fail(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, domain.NewConnectedAccountResponse(account))
	})
}

type connectableRequest struct {
	AccessToken string `json:"accessToken"`
}

func ListConnectableAccounts(service connecting.ConnectingService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := claims(w, r); !ok {
			return
		}

		platform, err := platformParam(r)
		if err != nil {
			fail(w, r, err)
			return
		}

		var req connectableRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxConnectBody)).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Corpo da requisição inválido", nil)
			return
		}

		accounts, err := service.ListConnectableAccounts(r.Context(), platform, req.AccessToken)
		if err != nil {
			fail(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, accounts)
	})
}

func ListCampaigns(accounts repository.AccountRepository, campaigns repository.CampaignRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := claims(w, r)
		if !ok {
			return
		}

		account, err := ownedAccount(r.Context(), accounts, c.OrganizationID, param(r, "id"))
		if err != nil {
			fail(w, r, err)
			return
		}

		list, err := campaigns.FindByAccount(r.Context(), account.ID)
		if err != nil {
			fail(w, r, err)
			return
		}
		if list == nil {
			list = []*domain.Campaign{}
		}

		writeJSON(w, http.StatusOK, list)
	})
}
