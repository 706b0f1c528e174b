package connecting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/adsync-api/infrastructure/integrator"
	integratormocks "github.com/vfg2006/adsync-api/infrastructure/integrator/mocks"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/naver"
	repomocks "github.com/vfg2006/adsync-api/infrastructure/repository/mocks"
	"github.com/vfg2006/adsync-api/internal/cache"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/tokencrypt"
	"go.uber.org/mock/gomock"
)

const testKey = "0123456789abcdef0123456789abcdef"

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	accounts *repomocks.MockAccountRepository
	states   *repomocks.MockOAuthStateStore
	meta     *integratormocks.MockAdapter
	naver    *integratormocks.MockAdapter
	cipher   *tokencrypt.Cipher
	cache    *cache.SyncCache[string]
	service  *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cipher, err := tokencrypt.New(testKey)
	require.NoError(t, err)

	f := &fixture{
		accounts: repomocks.NewMockAccountRepository(ctrl),
		states:   repomocks.NewMockOAuthStateStore(ctrl),
		meta:     integratormocks.NewMockAdapter(ctrl),
		naver:    integratormocks.NewMockAdapter(ctrl),
		cipher:   cipher,
		cache:    cache.New[string](16, nil),
	}
	f.meta.EXPECT().Platform().Return(domain.PlatformMeta).AnyTimes()
	f.naver.EXPECT().Platform().Return(domain.PlatformNaver).AnyTimes()

	cfg := &config.Config{
		OAuth: config.OAuth{
			RedirectBaseURL: "https://api.example.com/oauth/",
			StateTTL:        10 * time.Minute,
			DefaultReturnTo:    "https://app.example.com/integrations",
			AllowedReturnHosts: []string{"app.example.com", "admin.example.com"},
		},
	}

	s := NewService(f.accounts, f.states, integrator.NewRegistry(f.meta, f.naver), cipher, f.cache, cfg).(*Service)
	s.now = func() time.Time { return fixedNow }
	f.service = s

	return f
}

func TestConnectAccount_SingleAccessibleAccount(t *testing.T) {
	f := newFixture(t)

	f.meta.EXPECT().ListAdAccounts(gomock.Any(), "EAAB-token").Return([]domain.NormalizedAccount{
		{ExternalID: "act_1", Name: "Loja Centro", Currency: "BRL"},
	}, nil)
	f.accounts.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *domain.ConnectedAccount) error {
		assert.NotEmpty(t, a.ID)
		assert.Equal(t, "org-1", a.OrganizationID)
		assert.Equal(t, domain.PlatformMeta, a.Platform)
		assert.Equal(t, "act_1", a.ExternalID)
		assert.Equal(t, "Loja Centro", a.Name)
		assert.Equal(t, domain.ConnectedAccountStatusActive, a.Status)
		assert.NotContains(t, a.AccessTokenCiphertext, "EAAB-token")

		plain, err := f.cipher.Decrypt(a.AccessTokenCiphertext)
		require.NoError(t, err)
		assert.Equal(t, "EAAB-token", plain)
		assert.Nil(t, a.RefreshTokenCiphertext)
		return nil
	})

	account, err := f.service.ConnectAccount(context.Background(), "org-1", domain.PlatformMeta, []byte(`{"accessToken":"EAAB-token"}`))
	require.NoError(t, err)
	assert.Equal(t, "act_1", account.ExternalID)
}

func TestConnectAccount_StoresRefreshTokenAndExpiry(t *testing.T) {
	f := newFixture(t)
	expires := fixedNow.Add(time.Hour)

	f.meta.EXPECT().ListAdAccounts(gomock.Any(), "ya29").Return([]domain.NormalizedAccount{
		{ExternalID: "111"}, {ExternalID: "222", Name: "Filial"},
	}, nil)
	f.accounts.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *domain.ConnectedAccount) error {
		assert.Equal(t, "222", a.ExternalID)
		require.NotNil(t, a.RefreshTokenCiphertext)

		plain, err := f.cipher.Decrypt(*a.RefreshTokenCiphertext)
		require.NoError(t, err)
		assert.Equal(t, "1//refresh", plain)
		assert.Equal(t, expires, *a.TokenExpiresAt)
		return nil
	})

	payload := `{"accessToken":"ya29","refreshToken":"1//refresh","expiresAt":"` + expires.Format(time.RFC3339) + `","externalAccountId":"222"}`
	_, err := f.service.ConnectAccount(context.Background(), "org-1", domain.PlatformMeta, []byte(payload))
	require.NoError(t, err)
}

func TestConnectAccount_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		accounts []domain.NormalizedAccount
		listErr  error
		field    string
		target   error
	}{
		{name: "json malformado", payload: `{"accessToken":`, field: "payload", target: domain.ErrValidation},
		{name: "sem access token", payload: `{"refreshToken":"x"}`, field: "accessToken", target: domain.ErrValidation},
		{name: "expiração no passado", payload: `{"accessToken":"t","expiresAt":"2020-01-01T00:00:00Z"}`, field: "expiresAt", target: domain.ErrValidation},
		{
			name:     "conta pedida não acessível",
			payload:  `{"accessToken":"t","externalAccountId":"act_9"}`,
			accounts: []domain.NormalizedAccount{{ExternalID: "act_1"}},
			field:    "externalAccountId",
			target:   domain.ErrValidation,
		},
		{
			name:     "várias contas sem escolha",
			payload:  `{"accessToken":"t"}`,
			accounts: []domain.NormalizedAccount{{ExternalID: "act_1"}, {ExternalID: "act_2"}},
			field:    "externalAccountId",
			target:   domain.ErrValidation,
		},
		{
			name:     "nenhuma conta",
			payload:  `{"accessToken":"t"}`,
			accounts: []domain.NormalizedAccount{},
			field:    "externalAccountId",
			target:   domain.ErrValidation,
		},
		{
			name:    "credencial recusada pela plataforma",
			payload: `{"accessToken":"t"}`,
			listErr: &domain.CredentialInvalidError{Platform: domain.PlatformMeta, Reason: "Invalid OAuth access token"},
			target:  domain.ErrCredentialInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			if tt.accounts != nil || tt.listErr != nil {
				f.meta.EXPECT().ListAdAccounts(gomock.Any(), "t").Return(tt.accounts, tt.listErr)
			}

			_, err := f.service.ConnectAccount(context.Background(), "org-1", domain.PlatformMeta, []byte(tt.payload))
			require.ErrorIs(t, err, tt.target)

			if tt.field != "" {
				var vErr *domain.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.field, vErr.Field)
			}
		})
	}
}

func TestConnectAccount_RequiresOrganization(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ConnectAccount(context.Background(), " ", domain.PlatformMeta, []byte(`{"accessToken":"t"}`))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestConnectAccount_UnknownPlatform(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ConnectAccount(context.Background(), "org-1", domain.PlatformTikTok, []byte(`{"accessToken":"t"}`))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestConnectAccount_NaverDirectCredential(t *testing.T) {
	f := newFixture(t)

	f.naver.EXPECT().ListAdAccounts(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, token string) ([]domain.NormalizedAccount, error) {
		cred, err := naver.ParseCredential(token)
		require.NoError(t, err)
		assert.Equal(t, "api-key", cred.APIKey)
		assert.Equal(t, "1234", cred.CustomerID)

		return []domain.NormalizedAccount{
			{ExternalID: "1234", Name: "own", Currency: "KRW"},
			{ExternalID: "5678", Name: "client", Currency: "KRW"},
		}, nil
	})
	f.accounts.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *domain.ConnectedAccount) error {
		assert.Equal(t, domain.PlatformNaver, a.Platform)
		assert.Equal(t, "1234", a.ExternalID)
		assert.Nil(t, a.TokenExpiresAt)

		plain, err := f.cipher.Decrypt(a.AccessTokenCiphertext)
		require.NoError(t, err)
		assert.Contains(t, plain, `"secretKey":"secret"`)
		return nil
	})

	_, err := f.service.ConnectAccount(context.Background(), "org-1", domain.PlatformNaver,
		[]byte(`{"apiKey":"api-key","secretKey":"secret","customerId":"1234"}`))
	require.NoError(t, err)
}

func TestConnectAccount_NaverInvalidCredential(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ConnectAccount(context.Background(), "org-1", domain.PlatformNaver,
		[]byte(`{"apiKey":"api-key","secretKey":"secret","customerId":"abc"}`))

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "customerId", vErr.Field)
	assert.Equal(t, "must be numeric", vErr.Reason)
}

func TestInitiateOAuth(t *testing.T) {
	f := newFixture(t)

	var authState string
	f.meta.EXPECT().AuthorizationURL(gomock.Any(), "https://api.example.com/oauth/meta/callback").DoAndReturn(func(state, redirectURI string) (string, error) {
		authState = state
		return "https://www.facebook.com/v19.0/dialog/oauth?state=" + state, nil
	})
	f.states.EXPECT().Save(gomock.Any(), gomock.Any(), 10*time.Minute).DoAndReturn(func(_ context.Context, st *domain.OAuthState, _ time.Duration) error {
		assert.Equal(t, authState, st.State)
		assert.Equal(t, "org-1", st.OrganizationID)
		assert.Equal(t, domain.PlatformMeta, st.Platform)
		assert.Equal(t, "https://app.example.com/integrations", st.ReturnContext)
		assert.Equal(t, "https://api.example.com/oauth/meta/callback", st.RedirectURI)
		assert.Equal(t, fixedNow, st.CreatedAt)
		return nil
	})

	start, err := f.service.InitiateOAuth(context.Background(), "org-1", domain.PlatformMeta, "")
	require.NoError(t, err)
	assert.NotEmpty(t, start.State)
	assert.Equal(t, authState, start.State)
	assert.Contains(t, start.AuthorizationURL, start.State)
}

func TestInitiateOAuth_ReturnTo(t *testing.T) {
	t.Run("host permitido", func(t *testing.T) {
		f := newFixture(t)

		f.meta.EXPECT().AuthorizationURL(gomock.Any(), gomock.Any()).Return("https://www.facebook.com/dialog/oauth", nil)
		f.states.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, st *domain.OAuthState, _ time.Duration) error {
			assert.Equal(t, "https://admin.example.com/settings?tab=ads", st.ReturnContext)
			return nil
		})

		_, err := f.service.InitiateOAuth(context.Background(), "org-1", domain.PlatformMeta, "https://admin.example.com/settings?tab=ads")
		require.NoError(t, err)
	})

	for _, target := range []string{
		"https://attacker.example.net/collect",
		"//attacker.example.net",
		"https://app.example.com.attacker.net/",
		"/integrations",
	} {
		t.Run(target, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.service.InitiateOAuth(context.Background(), "org-1", domain.PlatformMeta, target)

			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "return_to", vErr.Field)
		})
	}
}

func TestInitiateOAuth_UnsupportedPlatform(t *testing.T) {
	f := newFixture(t)

	f.naver.EXPECT().AuthorizationURL(gomock.Any(), gomock.Any()).Return("", &domain.OAuthExchangeError{Platform: domain.PlatformNaver, Reason: "unsupported"})

	_, err := f.service.InitiateOAuth(context.Background(), "org-1", domain.PlatformNaver, "")
	assert.ErrorIs(t, err, domain.ErrOAuthExchange)
}

func TestResolveState(t *testing.T) {
	f := newFixture(t)

	stored := &domain.OAuthState{State: "abc", OrganizationID: "org-1", Platform: domain.PlatformMeta}
	f.states.EXPECT().Consume(gomock.Any(), "abc").Return(stored, nil)
	f.states.EXPECT().Consume(gomock.Any(), "gone").Return(nil, domain.ErrNotFound)

	got, err := f.service.ResolveState(context.Background(), "abc")
	require.NoError(t, err)
	assert.Same(t, stored, got)

	_, err = f.service.ResolveState(context.Background(), "gone")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.service.ResolveState(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCompleteOAuth(t *testing.T) {
	f := newFixture(t)

	creds := &domain.Credentials{AccessToken: "EAAB"}
	f.meta.EXPECT().ExchangeAuthorizationCode(gomock.Any(), "code-1", "https://api.example.com/oauth/meta/callback").Return(creds, nil)

	got, err := f.service.CompleteOAuth(context.Background(), domain.PlatformMeta, "code-1", "")
	require.NoError(t, err)
	assert.Same(t, creds, got)
}

func TestConnectOAuth_ConnectsEveryAccessibleAccount(t *testing.T) {
	f := newFixture(t)

	f.meta.EXPECT().ListAdAccounts(gomock.Any(), "EAAB").Return([]domain.NormalizedAccount{
		{ExternalID: "act_1", Name: "Centro"},
		{ExternalID: "act_2", Name: "Filial"},
	}, nil)
	f.accounts.EXPECT().CreateMany(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, accounts []*domain.ConnectedAccount) error {
		require.Len(t, accounts, 2)
		for _, a := range accounts {
			assert.Equal(t, "org-1", a.OrganizationID)
			assert.Equal(t, domain.ConnectedAccountStatusActive, a.Status)
		}
		return nil
	})

	connected, err := f.service.ConnectOAuth(context.Background(),
		&domain.OAuthState{OrganizationID: "org-1", Platform: domain.PlatformMeta},
		&domain.Credentials{AccessToken: "EAAB"})
	require.NoError(t, err)
	require.Len(t, connected, 2)
	assert.Equal(t, "act_2", connected[1].ExternalID)
}

func TestConnectOAuth_FailureConnectsNothing(t *testing.T) {
	f := newFixture(t)

	f.meta.EXPECT().ListAdAccounts(gomock.Any(), "EAAB").Return([]domain.NormalizedAccount{
		{ExternalID: "act_1"}, {ExternalID: "act_2"},
	}, nil)
	f.accounts.EXPECT().CreateMany(gomock.Any(), gomock.Any()).Return(errors.New("account act_2: create account: connection reset"))
	f.accounts.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	connected, err := f.service.ConnectOAuth(context.Background(),
		&domain.OAuthState{OrganizationID: "org-1", Platform: domain.PlatformMeta},
		&domain.Credentials{AccessToken: "EAAB"})
	require.Error(t, err)
	assert.Nil(t, connected)
}

func TestConnectAccount_ReconnectDropsCachedRows(t *testing.T) {
	f := newFixture(t)

	r := domain.DateRange{Start: fixedNow, End: fixedNow}
	fill := func(context.Context) (string, error) { return "rows", nil }
	_, _ = f.cache.GetOrFetch(context.Background(), cache.InsightKey("acc-existing", domain.PlatformMeta, "c1", r), time.Hour, fill)
	_, _ = f.cache.GetOrFetch(context.Background(), cache.InsightKey("acc-other", domain.PlatformMeta, "c1", r), time.Hour, fill)

	f.meta.EXPECT().ListAdAccounts(gomock.Any(), "EAAB-new").Return([]domain.NormalizedAccount{{ExternalID: "act_1"}}, nil)
	f.accounts.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *domain.ConnectedAccount) error {
		// o upsert devolve o id do registro que já existia
		a.ID = "acc-existing"
		return nil
	})

	account, err := f.service.ConnectAccount(context.Background(), "org-1", domain.PlatformMeta, []byte(`{"accessToken":"EAAB-new"}`))
	require.NoError(t, err)
	assert.Equal(t, "acc-existing", account.ID)
	assert.Equal(t, 1, f.cache.Len())
}

func TestListAccounts(t *testing.T) {
	f := newFixture(t)

	all := []*domain.ConnectedAccount{{ID: "a"}, {ID: "b"}}
	metaOnly := []*domain.ConnectedAccount{{ID: "a"}}

	f.accounts.EXPECT().ListByOrganization(gomock.Any(), "org-1").Return(all, nil)
	f.accounts.EXPECT().FindByOrganizationAndPlatform(gomock.Any(), "org-1", domain.PlatformMeta).Return(metaOnly, nil)

	got, err := f.service.ListAccounts(context.Background(), "org-1", "")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = f.service.ListAccounts(context.Background(), "org-1", domain.PlatformMeta)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestListConnectableAccounts(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ListConnectableAccounts(context.Background(), domain.PlatformMeta, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	f.meta.EXPECT().ListAdAccounts(gomock.Any(), "tok").Return([]domain.NormalizedAccount{{ExternalID: "act_1"}}, nil)

	accounts, err := f.service.ListConnectableAccounts(context.Background(), domain.PlatformMeta, "tok")
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}
