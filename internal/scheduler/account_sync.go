package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/internal/usecases/syncing"
	"github.com/vfg2006/adsync-api/pkg/utils"
)

// RunSummary resume uma execução completa do agendador
type RunSummary struct {
	Accounts  int `json:"accounts"`
	Campaigns int `json:"campaigns"`
	Insights  int `json:"insights"`
	Failures  int `json:"failures"`
}

// AccountSyncService sincroniza periodicamente todas as contas ACTIVE:
// primeiro as campanhas, depois os insights de cada campanha na janela de lookback
type AccountSyncService struct {
	scheduler           *gocron.Scheduler
	config              config.Scheduler
	accountRepo         repository.AccountRepository
	campaignRepo        repository.CampaignRepository
	syncer              syncing.Syncer
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastSummary         RunSummary
	now                 func() time.Time
}

func NewAccountSyncService(
	accountRepo repository.AccountRepository,
	campaignRepo repository.CampaignRepository,
	syncer syncing.Syncer,
	cfg config.Scheduler,
) *AccountSyncService {
	if cfg.MaxConcurrentJobs < 1 {
		cfg.MaxConcurrentJobs = 1
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule":         cfg.CronSchedule,
		"lookback_days":         cfg.LookbackDays,
		"request_delay_seconds": cfg.RequestDelaySeconds,
		"max_concurrent_jobs":   cfg.MaxConcurrentJobs,
		"sync_enabled":          cfg.Enabled,
	}).Info("scheduler: account sync configuration loaded")

	return &AccountSyncService{
		scheduler:    gocron.NewScheduler(time.UTC),
		config:       cfg,
		accountRepo:  accountRepo,
		campaignRepo: campaignRepo,
		syncer:       syncer,
		now:          time.Now,
	}
}

func (s *AccountSyncService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("scheduler: account sync disabled by configuration")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("scheduler: starting account sync")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.syncAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule account sync: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("scheduler: stopping account sync")
		s.scheduler.Stop()
	}()

	return nil
}

// syncAll é ignorado se outra execução ainda estiver em andamento
func (s *AccountSyncService) syncAll(ctx context.Context) (RunSummary, bool) {
	startTime, ok := s.begin()
	if !ok {
		logrus.Info("scheduler: account sync already running, skipping")
		return RunSummary{}, false
	}

	return s.complete(ctx, startTime), true
}

// begin marca a execução como em andamento; false se já havia uma
func (s *AccountSyncService) begin() (time.Time, bool) {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	if s.syncRunning {
		return time.Time{}, false
	}
	s.syncRunning = true
	s.lastSyncStartedAt = s.now()

	return s.lastSyncStartedAt, true
}

func (s *AccountSyncService) complete(ctx context.Context, startTime time.Time) RunSummary {
	summary := s.run(ctx)

	s.syncMutex.Lock()
	s.syncRunning = false
	s.lastSyncCompletedAt = s.now()
	s.lastSummary = summary
	s.syncMutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"duration":  time.Since(startTime).String(),
		"accounts":  summary.Accounts,
		"campaigns": summary.Campaigns,
		"insights":  summary.Insights,
		"failures":  summary.Failures,
	}).Info("scheduler: account sync finished")

	return summary
}

func (s *AccountSyncService) run(ctx context.Context) RunSummary {
	accounts, err := s.accountRepo.ListActive(ctx)
	if err != nil {
		logrus.WithError(err).Error("scheduler: failed to list active accounts")
		return RunSummary{Failures: 1}
	}

	if len(accounts) == 0 {
		logrus.Info("scheduler: no active accounts to sync")
		return RunSummary{}
	}

	start, end := utils.LookbackRange(s.now(), s.config.LookbackDays)
	startDate, endDate := utils.FormatDate(start), utils.FormatDate(end)

	logrus.WithFields(logrus.Fields{
		"accounts":   len(accounts),
		"start_date": startDate,
		"end_date":   endDate,
	}).Info("scheduler: syncing active accounts")

	var (
		mu      sync.Mutex
		summary = RunSummary{Accounts: len(accounts)}
		wg      sync.WaitGroup
	)
	semaphore := make(chan struct{}, s.config.MaxConcurrentJobs)

	for _, account := range accounts {
		if !acquire(ctx, semaphore) {
			logrus.WithError(ctx.Err()).Warn("scheduler: run cancelled, remaining accounts skipped")
			break
		}

		wg.Add(1)
		go func(acc *domain.ConnectedAccount) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			partial := s.syncAccount(ctx, acc, startDate, endDate)

			mu.Lock()
			summary.Campaigns += partial.Campaigns
			summary.Insights += partial.Insights
			summary.Failures += partial.Failures
			mu.Unlock()
		}(account)
	}

	wg.Wait()

	return summary
}

// acquire ocupa uma vaga do semáforo, desistindo se ctx for cancelado
func acquire(ctx context.Context, semaphore chan struct{}) bool {
	if ctx.Err() != nil {
		return false
	}

	select {
	case <-ctx.Done():
		return false
	case semaphore <- struct{}{}:
		return true
	}
}

// syncAccount interrompe a conta ao primeiro erro de credencial ou de limite de requisições
func (s *AccountSyncService) syncAccount(ctx context.Context, acc *domain.ConnectedAccount, startDate, endDate string) RunSummary {
	log := logrus.WithFields(logrus.Fields{
		"account_id":  acc.ID,
		"platform":    acc.Platform,
		"external_id": acc.ExternalID,
	})

	var summary RunSummary

	result, err := s.syncer.SyncCampaigns(ctx, acc.ID)
	if err != nil {
		log.WithError(err).Warn("scheduler: campaign sync failed")
		summary.Failures++
		return summary
	}
	summary.Campaigns = result.Synced
	summary.Failures += len(result.Errors)

	campaigns, err := s.campaignRepo.FindByAccount(ctx, acc.ID)
	if err != nil {
		log.WithError(err).Error("scheduler: failed to load campaigns")
		summary.Failures++
		return summary
	}

	for i, c := range campaigns {
		if c.State == domain.CampaignStateRemoved {
			continue
		}

		if i > 0 && s.config.RequestDelaySeconds > 0 {
			select {
			case <-ctx.Done():
				log.WithError(ctx.Err()).Info("scheduler: run cancelled, stopping account")
				return summary
			case <-time.After(time.Duration(s.config.RequestDelaySeconds) * time.Second):
			}
		}

		insights, err := s.syncer.SyncInsights(ctx, c.ID, startDate, endDate)
		if err != nil {
			summary.Failures++

			var rl *domain.RateLimitedError
			if errors.As(err, &rl) || errors.Is(err, domain.ErrCredentialInvalid) {
				log.WithFields(logrus.Fields{
					"campaign_id": c.ID,
					"retry_after": rateLimitDelay(rl),
					"error":       err.Error(),
				}).Warn("scheduler: stopping account for this run")
				return summary
			}

			log.WithFields(logrus.Fields{
				"campaign_id": c.ID,
				"error":       err.Error(),
			}).Error("scheduler: insight sync failed")
			continue
		}

		summary.Insights += insights.Synced
		summary.Failures += len(insights.Errors)
	}

	return summary
}

func rateLimitDelay(rl *domain.RateLimitedError) string {
	if rl == nil {
		return ""
	}
	return rl.RetryAfter.String()
}

// TriggerManualSync devolve false quando já existe uma execução em andamento.
// A execução é reservada antes de retornar true, então nenhuma outra pode ocupar o lugar.
func (s *AccountSyncService) TriggerManualSync(ctx context.Context) bool {
	startTime, ok := s.begin()
	if !ok {
		logrus.Info("scheduler: account sync already running, ignoring manual request")
		return false
	}

	logrus.Info("scheduler: manual account sync requested")
	go s.complete(context.WithoutCancel(ctx), startTime)

	return true
}

func (s *AccountSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.Enabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_lookback_days":     s.config.LookbackDays,
		"sync_max_concurrent":    s.config.MaxConcurrentJobs,
		"sync_request_delay_s":   s.config.RequestDelaySeconds,
		"sync_running":           s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_sync_summary":      s.lastSummary,
	}
}
