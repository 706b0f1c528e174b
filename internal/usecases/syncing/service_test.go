package syncing

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vfg2006/adsync-api/infrastructure/integrator"
	integratormocks "github.com/vfg2006/adsync-api/infrastructure/integrator/mocks"
	repomocks "github.com/vfg2006/adsync-api/infrastructure/repository/mocks"
	"github.com/vfg2006/adsync-api/internal/cache"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/tokencrypt"
	"go.uber.org/mock/gomock"
)

const testKey = "0123456789abcdef0123456789abcdef"

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type refreshingAdapter struct {
	*integratormocks.MockAdapter
	*integratormocks.MockTokenRefresher
}

type fixture struct {
	accounts  *repomocks.MockAccountRepository
	campaigns *repomocks.MockCampaignRepository
	insights  *repomocks.MockInsightRepository
	adapter   *integratormocks.MockAdapter
	refresher *integratormocks.MockTokenRefresher
	cipher    *tokencrypt.Cipher
	service   *Service
}

func newFixture(t *testing.T, refreshable bool) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cipher, err := tokencrypt.New(testKey)
	require.NoError(t, err)

	f := &fixture{
		accounts:  repomocks.NewMockAccountRepository(ctrl),
		campaigns: repomocks.NewMockCampaignRepository(ctrl),
		insights:  repomocks.NewMockInsightRepository(ctrl),
		adapter:   integratormocks.NewMockAdapter(ctrl),
		cipher:    cipher,
	}
	f.adapter.EXPECT().Platform().Return(domain.PlatformMeta).AnyTimes()

	var adapter integrator.Adapter = f.adapter
	if refreshable {
		f.refresher = integratormocks.NewMockTokenRefresher(ctrl)
		adapter = refreshingAdapter{f.adapter, f.refresher}
	}

	cfg := config.Sync{
		Timeout:         time.Minute,
		CacheTTL:        time.Minute,
		CacheMaxEntries: 16,
		RefreshWindow:   24 * time.Hour,
	}

	f.service = NewService(cfg, f.accounts, f.campaigns, f.insights,
		integrator.NewRegistry(adapter), cipher,
		cache.New[[]domain.NormalizedInsight](cfg.CacheMaxEntries, nil), nil)
	f.service.now = func() time.Time { return fixedNow }

	return f
}

func (f *fixture) account(t *testing.T, status domain.ConnectedAccountStatus) *domain.ConnectedAccount {
	t.Helper()

	ct, err := f.cipher.Encrypt("plain-token")
	require.NoError(t, err)

	return &domain.ConnectedAccount{
		ID:                    "acc-1",
		OrganizationID:        "org-1",
		Platform:              domain.PlatformMeta,
		ExternalID:            "act_1",
		Name:                  "Loja Centro",
		AccessTokenCiphertext: ct,
		Status:                status,
	}
}

// storedAccount simula a linha de connected_accounts com as mesmas guardas do repositório
type storedAccount struct {
	mu     sync.Mutex
	row    domain.ConnectedAccount
	cipher *tokencrypt.Cipher
}

func (f *fixture) store(t *testing.T, account *domain.ConnectedAccount) *storedAccount {
	t.Helper()

	st := &storedAccount{row: *account, cipher: f.cipher}

	f.accounts.EXPECT().FindByID(gomock.Any(), account.ID).DoAndReturn(func(context.Context, string) (*domain.ConnectedAccount, error) {
		return st.get(), nil
	}).AnyTimes()
	f.accounts.EXPECT().TouchLastSynced(gomock.Any(), account.ID, gomock.Any()).DoAndReturn(func(_ context.Context, _ string, at time.Time) error {
		st.mu.Lock()
		defer st.mu.Unlock()
		st.row.LastSyncedAt = &at
		return nil
	}).AnyTimes()
	f.accounts.EXPECT().MarkExpired(gomock.Any(), account.ID, gomock.Any()).DoAndReturn(func(_ context.Context, _ string, expected string) (bool, error) {
		st.mu.Lock()
		defer st.mu.Unlock()
		if st.row.AccessTokenCiphertext != expected || st.row.Status != domain.ConnectedAccountStatusActive {
			return false, nil
		}
		st.row.Status = domain.ConnectedAccountStatusExpired
		return true, nil
	}).AnyTimes()
	f.accounts.EXPECT().UpdateCredentials(gomock.Any(), account.ID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, expected, accessCiphertext string, refreshCiphertext *string, expiresAt *time.Time) (bool, error) {
			st.mu.Lock()
			defer st.mu.Unlock()
			if st.row.AccessTokenCiphertext != expected {
				return false, nil
			}
			st.row.AccessTokenCiphertext = accessCiphertext
			if refreshCiphertext != nil {
				st.row.RefreshTokenCiphertext = refreshCiphertext
			}
			st.row.TokenExpiresAt = expiresAt
			return true, nil
		}).AnyTimes()

	return st
}

func (st *storedAccount) get() *domain.ConnectedAccount {
	st.mu.Lock()
	defer st.mu.Unlock()
	row := st.row
	return &row
}

// reconnect faz o mesmo que o upsert de uma nova conexão OAuth
func (st *storedAccount) reconnect(t *testing.T, token string) {
	t.Helper()

	ct, err := st.cipher.Encrypt(token)
	require.NoError(t, err)

	st.mu.Lock()
	defer st.mu.Unlock()
	st.row.AccessTokenCiphertext = ct
	st.row.Status = domain.ConnectedAccountStatusActive
	st.row.TokenExpiresAt = nil
}

func notFound(what string) error {
	return fmt.Errorf("find %s: %w", what, domain.ErrNotFound)
}

func TestAccountLocker(t *testing.T) {
	l := NewAccountLocker()

	require.True(t, l.TryLock("org:META:1"))
	require.False(t, l.TryLock("org:META:1"))
	require.True(t, l.TryLock("org:META:2"))

	l.Unlock("org:META:1")
	require.False(t, l.Held("org:META:1"))
	require.True(t, l.TryLock("org:META:1"))
}

func TestService_DetachIgnoresCallerCancellation(t *testing.T) {
	f := newFixture(t, false)

	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := f.service.detach(parent)
	defer stop()

	cancel()
	require.NoError(t, ctx.Err())

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}
