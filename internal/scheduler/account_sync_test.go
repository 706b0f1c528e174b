package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/adsync-api/infrastructure/repository/mocks"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	syncmocks "github.com/vfg2006/adsync-api/internal/usecases/syncing/mocks"
	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T) (*AccountSyncService, *mocks.MockAccountRepository, *mocks.MockCampaignRepository, *syncmocks.MockSyncer) {
	t.Helper()

	ctrl := gomock.NewController(t)

	accountRepo := mocks.NewMockAccountRepository(ctrl)
	campaignRepo := mocks.NewMockCampaignRepository(ctrl)
	syncer := syncmocks.NewMockSyncer(ctrl)

	s := NewAccountSyncService(accountRepo, campaignRepo, syncer, config.Scheduler{
		CronSchedule:      "0 3 * * *",
		LookbackDays:      7,
		MaxConcurrentJobs: 2,
		Enabled:           true,
	})
	// referência: 16 de janeiro, janela de 9 a 15
	s.now = func() time.Time { return time.Date(2024, 1, 16, 3, 0, 0, 0, time.UTC) }

	return s, accountRepo, campaignRepo, syncer
}

func TestAccountSyncService_syncAll(t *testing.T) {
	s, accountRepo, campaignRepo, syncer := newTestService(t)

	accountRepo.EXPECT().ListActive(gomock.Any()).Return([]*domain.ConnectedAccount{
		{ID: "acc-1", Platform: domain.PlatformMeta, ExternalID: "act_1", Status: domain.ConnectedAccountStatusActive},
		{ID: "acc-2", Platform: domain.PlatformGoogle, ExternalID: "111", Status: domain.ConnectedAccountStatusActive},
	}, nil)

	// acc-1: duas campanhas, uma removida
	syncer.EXPECT().SyncCampaigns(gomock.Any(), "acc-1").Return(&domain.CampaignSyncResult{Synced: 2, Created: 2}, nil)
	campaignRepo.EXPECT().FindByAccount(gomock.Any(), "acc-1").Return([]*domain.Campaign{
		{ID: "camp-1", State: domain.CampaignStateActive},
		{ID: "camp-2", State: domain.CampaignStateRemoved},
	}, nil)
	syncer.EXPECT().SyncInsights(gomock.Any(), "camp-1", "2024-01-09", "2024-01-15").Return(&domain.InsightSyncResult{
		Synced: 7,
		Errors: []domain.RowError{{Date: "2024-01-10", Message: "invalid date"}},
	}, nil)

	// acc-2: credencial inválida já na sincronização de campanhas
	syncer.EXPECT().SyncCampaigns(gomock.Any(), "acc-2").Return(nil, &domain.CredentialInvalidError{Platform: domain.PlatformGoogle})

	summary, ran := s.syncAll(context.Background())
	require.True(t, ran)

	assert.Equal(t, RunSummary{Accounts: 2, Campaigns: 2, Insights: 7, Failures: 2}, summary)

	status := s.GetStatus()
	assert.Equal(t, false, status["sync_running"])
	assert.Equal(t, summary, status["last_sync_summary"])
}

func TestAccountSyncService_syncAll_StopsAccountWhenRateLimited(t *testing.T) {
	s, accountRepo, campaignRepo, syncer := newTestService(t)

	accountRepo.EXPECT().ListActive(gomock.Any()).Return([]*domain.ConnectedAccount{
		{ID: "acc-1", Platform: domain.PlatformTikTok, ExternalID: "7001"},
	}, nil)
	syncer.EXPECT().SyncCampaigns(gomock.Any(), "acc-1").Return(&domain.CampaignSyncResult{Synced: 3}, nil)
	campaignRepo.EXPECT().FindByAccount(gomock.Any(), "acc-1").Return([]*domain.Campaign{
		{ID: "camp-1", State: domain.CampaignStateActive},
		{ID: "camp-2", State: domain.CampaignStatePaused},
		{ID: "camp-3", State: domain.CampaignStateActive},
	}, nil)

	gomock.InOrder(
		syncer.EXPECT().SyncInsights(gomock.Any(), "camp-1", gomock.Any(), gomock.Any()).Return(nil, errors.New("tiktok: code 50000: internal")),
		syncer.EXPECT().SyncInsights(gomock.Any(), "camp-2", gomock.Any(), gomock.Any()).Return(nil, &domain.RateLimitedError{
			Platform:   domain.PlatformTikTok,
			RetryAfter: 30 * time.Second,
		}),
	)

	summary, ran := s.syncAll(context.Background())
	require.True(t, ran)
	assert.Equal(t, 2, summary.Failures)
	assert.Zero(t, summary.Insights)
}

func TestAccountSyncService_syncAll_NoActiveAccounts(t *testing.T) {
	s, accountRepo, _, _ := newTestService(t)

	accountRepo.EXPECT().ListActive(gomock.Any()).Return([]*domain.ConnectedAccount{}, nil)

	summary, ran := s.syncAll(context.Background())
	require.True(t, ran)
	assert.Equal(t, RunSummary{}, summary)
}

func TestAccountSyncService_syncAll_SkipsWhenRunning(t *testing.T) {
	s, _, _, _ := newTestService(t)

	s.syncRunning = true

	_, ran := s.syncAll(context.Background())
	assert.False(t, ran)
	assert.False(t, s.TriggerManualSync(context.Background()))
}

func TestAccountSyncService_TriggerManualSync_ReservesRun(t *testing.T) {
	s, accountRepo, _, _ := newTestService(t)

	release := make(chan struct{})
	accountRepo.EXPECT().ListActive(gomock.Any()).DoAndReturn(func(context.Context) ([]*domain.ConnectedAccount, error) {
		<-release
		return []*domain.ConnectedAccount{}, nil
	})

	require.True(t, s.TriggerManualSync(context.Background()))

	// a execução já está reservada, antes mesmo da goroutine começar
	assert.Equal(t, true, s.GetStatus()["sync_running"])
	assert.False(t, s.TriggerManualSync(context.Background()))
	_, ran := s.syncAll(context.Background())
	assert.False(t, ran)

	close(release)

	require.Eventually(t, func() bool {
		return s.GetStatus()["sync_running"] == false
	}, 5*time.Second, 10*time.Millisecond)
}

func TestAccountSyncService_syncAccount_DelayHonorsCancellation(t *testing.T) {
	s, _, campaignRepo, syncer := newTestService(t)
	s.config.RequestDelaySeconds = 3600

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	syncer.EXPECT().SyncCampaigns(gomock.Any(), "acc-1").Return(&domain.CampaignSyncResult{Synced: 2}, nil)
	campaignRepo.EXPECT().FindByAccount(gomock.Any(), "acc-1").Return([]*domain.Campaign{
		{ID: "camp-1", State: domain.CampaignStateActive},
		{ID: "camp-2", State: domain.CampaignStateActive},
	}, nil)
	syncer.EXPECT().SyncInsights(gomock.Any(), "camp-1", gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, string, string, string) (*domain.InsightSyncResult, error) {
			cancel()
			return &domain.InsightSyncResult{Synced: 7}, nil
		})

	done := make(chan RunSummary, 1)
	go func() {
		done <- s.syncAccount(ctx, &domain.ConnectedAccount{ID: "acc-1", Platform: domain.PlatformMeta}, "2024-01-09", "2024-01-15")
	}()

	select {
	case summary := <-done:
		assert.Equal(t, 2, summary.Campaigns)
		assert.Equal(t, 7, summary.Insights)
	case <-time.After(5 * time.Second):
		t.Fatal("syncAccount kept waiting after cancellation")
	}
}

func TestAccountSyncService_run_StopsLaunchingWhenCancelled(t *testing.T) {
	s, accountRepo, _, _ := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	accountRepo.EXPECT().ListActive(gomock.Any()).Return([]*domain.ConnectedAccount{
		{ID: "acc-1", Platform: domain.PlatformMeta},
		{ID: "acc-2", Platform: domain.PlatformMeta},
	}, nil)

	summary := s.run(ctx)
	assert.Equal(t, 2, summary.Accounts)
	assert.Zero(t, summary.Campaigns)
}

func TestAccountSyncService_Start_Disabled(t *testing.T) {
	s, _, _, _ := newTestService(t)
	s.config.Enabled = false

	require.NoError(t, s.Start(context.Background()))
	assert.Empty(t, s.scheduler.Jobs())
}

func TestAccountSyncService_Start_InvalidCron(t *testing.T) {
	s, _, _, _ := newTestService(t)
	s.config.CronSchedule = "not a cron"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.Error(t, s.Start(ctx))
}
