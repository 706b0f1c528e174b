package handler

import (
	"net/http"

	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/api/handler/router"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/internal/usecases/connecting"
	"github.com/vfg2006/adsync-api/internal/usecases/syncing"
	"github.com/vfg2006/adsync-api/pkg/middleware"
)

// Repositories agrupa as leituras feitas diretamente pelos handlers
type Repositories struct {
	Accounts  repository.AccountRepository
	Campaigns repository.CampaignRepository
	Insights  repository.InsightRepository
}

func permission(p string) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{middleware.RequirePermission(p)}
}

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Accounts(service connecting.ConnectingService, repos Repositories) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/accounts",
			Method:      http.MethodGet,
			Handler:     ListAccounts(service),
			Middlewares: permission(domain.PermissionAccountsRead),
		},
		{
			Path:        "/v1/accounts/:id/campaigns",
			Method:      http.MethodGet,
			Handler:     ListCampaigns(repos.Accounts, repos.Campaigns),
			Middlewares: permission(domain.PermissionAccountsRead),
		},
		{
			Path:        "/v1/campaigns/:id/insights",
			Method:      http.MethodGet,
			Handler:     ListInsights(repos.Accounts, repos.Campaigns, repos.Insights),
			Middlewares: permission(domain.PermissionAccountsRead),
		},
		{
			Path:        "/v1/platforms/:platform/connect",
			Method:      http.MethodPost,
			Handler:     ConnectAccount(service),
			Middlewares: permission(domain.PermissionAccountsConnect),
		},
		{
			Path:        "/v1/platforms/:platform/ad-accounts",
			Method:      http.MethodPost,
			Handler:     ListConnectableAccounts(service),
			Middlewares: permission(domain.PermissionAccountsConnect),
		},
	}
}

// OAuth deixa o callback sem permissão: o state gravado no início é o que autentica o retorno
func OAuth(service connecting.ConnectingService, cfg config.OAuth) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/oauth/:platform/authorize",
			Method:      http.MethodGet,
			Handler:     AuthorizeOAuth(service),
			Middlewares: permission(domain.PermissionAccountsConnect),
		},
		{
			Path:    "/v1/oauth/:platform/callback",
			Method:  http.MethodGet,
			Handler: OAuthCallback(service, cfg),
		},
	}
}

func Sync(syncer syncing.Syncer, repos Repositories) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/accounts/:id/sync/campaigns",
			Method:      http.MethodPost,
			Handler:     SyncCampaigns(syncer, repos.Accounts),
			Middlewares: permission(domain.PermissionSyncRun),
		},
		{
			Path:        "/v1/campaigns/:id/sync/insights",
			Method:      http.MethodPost,
			Handler:     SyncInsights(syncer, repos.Accounts, repos.Campaigns),
			Middlewares: permission(domain.PermissionSyncRun),
		},
	}
}

func CronJobs(scheduler SyncScheduler) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cron/sync/run",
			Method:      http.MethodPost,
			Handler:     RunCronJob(scheduler),
			Middlewares: permission(domain.PermissionSchedulerRun),
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(scheduler),
			Middlewares: permission(domain.PermissionSchedulerRun),
		},
	}
}
