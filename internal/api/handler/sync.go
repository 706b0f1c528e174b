package handler

import (
	"net/http"

	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/internal/usecases/syncing"
)

func SyncCampaigns(syncer syncing.CampaignSyncer, accounts repository.AccountRepository) http.Handler {
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

		result, err := syncer.SyncCampaigns(r.Context(), account.ID)
		if err != nil {
			fail(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	})
}

func SyncInsights(syncer syncing.InsightSyncer, accounts repository.AccountRepository, campaigns repository.CampaignRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := claims(w, r)
		if !ok {
			return
		}

		campaign, err := ownedCampaign(r.Context(), accounts, campaigns, c.OrganizationID, param(r, "id"))
		if err != nil {
			fail(w, r, err)
			return
		}

		q := r.URL.Query()
		result, err := syncer.SyncInsights(r.Context(), campaign.ID, q.Get("start_date"), q.Get("end_date"))
		if err != nil {
			fail(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	})
}

// ListInsights lê apenas o que já foi gravado, sem chamar a plataforma
func ListInsights(accounts repository.AccountRepository, campaigns repository.CampaignRepository, insights repository.InsightRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := claims(w, r)
		if !ok {
			return
		}

		q := r.URL.Query()
		dateRange, err := domain.ParseDateRange(q.Get("start_date"), q.Get("end_date"))
		if err != nil {
			fail(w, r, err)
			return
		}

		campaign, err := ownedCampaign(r.Context(), accounts, campaigns, c.OrganizationID, param(r, "id"))
		if err != nil {
			fail(w, r, err)
			return
		}

		rows, err := insights.FindByCampaignAndRange(r.Context(), campaign.ID, dateRange)
		if err != nil {
			fail(w, r, err)
			return
		}
		if rows == nil {
			rows = []*domain.Insight{}
		}

		writeJSON(w, http.StatusOK, rows)
	})
}
