package handler

import (
	"context"
	"net/http"

	"github.com/vfg2006/adsync-api/pkg/apiErrors"
)

// SyncScheduler é o contrato do agendador usado pelas rotas de cron
type SyncScheduler interface {
	TriggerManualSync(ctx context.Context) bool
	GetStatus() map[string]any
}

// RunCronJob dispara a sincronização de todas as contas ativas em segundo plano
func RunCronJob(scheduler SyncScheduler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !scheduler.TriggerManualSync(r.Context()) {
			apiErrors.WriteError(w, apiErrors.ErrSyncInProgress, "Sincronização já está em execução", nil)
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]any{
			"message": "Sincronização iniciada com sucesso",
		})
	})
}

func GetCronStatus(scheduler SyncScheduler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, scheduler.GetStatus())
	})
}
