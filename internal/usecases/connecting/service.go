package connecting

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/integrator"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/naver"
	naverdomain "github.com/vfg2006/adsync-api/infrastructure/integrator/naver/domain"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/cache"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/tokencrypt"
	"github.com/vfg2006/adsync-api/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:generate mockgen -source=service.go -destination=mocks/service.go -package=mocks

type ConnectingService interface {
	ConnectAccount(ctx context.Context, organizationID string, platform domain.Platform, payload []byte) (*domain.ConnectedAccount, error)
	InitiateOAuth(ctx context.Context, organizationID string, platform domain.Platform, returnContext string) (*domain.OAuthStart, error)
	ResolveState(ctx context.Context, state string) (*domain.OAuthState, error)
	CompleteOAuth(ctx context.Context, platform domain.Platform, code, redirectURI string) (*domain.Credentials, error)
	ConnectOAuth(ctx context.Context, state *domain.OAuthState, creds *domain.Credentials) ([]*domain.ConnectedAccount, error)
	ListConnectableAccounts(ctx context.Context, platform domain.Platform, accessToken string) ([]domain.NormalizedAccount, error)
	ListAccounts(ctx context.Context, organizationID string, platform domain.Platform) ([]*domain.ConnectedAccount, error)
}

// CacheInvalidator descarta respostas em cache de uma conta cuja credencial mudou
type CacheInvalidator interface {
	InvalidatePrefix(prefix string) int
}

type Service struct {
	accountRepository repository.AccountRepository
	stateStore        repository.OAuthStateStore
	registry          *integrator.Registry
	encrypter         tokencrypt.Encrypter
	invalidator       CacheInvalidator
	cfg               *config.Config
	validate          *validator.Validate
	now               func() time.Time
}

func NewService(
	accountRepository repository.AccountRepository,
	stateStore repository.OAuthStateStore,
	registry *integrator.Registry,
	encrypter tokencrypt.Encrypter,
	invalidator CacheInvalidator,
	cfg *config.Config,
) ConnectingService {
	return &Service{
		accountRepository: accountRepository,
		stateStore:        stateStore,
		registry:          registry,
		encrypter:         encrypter,
		invalidator:       invalidator,
		cfg:               cfg,
		validate:          newValidator(),
		now:               time.Now,
	}
}

// ConnectAccount aceita o payload pós-OAuth ({accessToken, ...}) ou a credencial direta da Naver
// ({apiKey, secretKey, customerId}). A credencial só é gravada depois de listar as contas com ela.
func (s *Service) ConnectAccount(ctx context.Context, organizationID string, platform domain.Platform, payload []byte) (*domain.ConnectedAccount, error) {
	if strings.TrimSpace(organizationID) == "" {
		return nil, &domain.ValidationError{Field: "organization_id", Reason: "is required"}
	}

	adapter, err := s.registry.Get(platform)
	if err != nil {
		return nil, err
	}

	var req domain.ConnectPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, &domain.ValidationError{Field: "payload", Reason: "malformed JSON"}
	}

	creds, externalID, err := s.credentials(platform, payload, req)
	if err != nil {
		return nil, err
	}

	accounts, err := adapter.ListAdAccounts(ctx, creds.AccessToken)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"organization_id": organizationID,
			"platform":        platform,
			"error":           err.Error(),
		}).Warn("connect: credential verification failed")
		return nil, err
	}

	selected, err := selectAccount(accounts, externalID)
	if err != nil {
		return nil, err
	}

	account, err := s.newAccount(organizationID, platform, selected, creds)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepository.Create(ctx, account); err != nil {
		logrus.WithFields(logrus.Fields{
			"organization_id": organizationID,
			"platform":        platform,
			"external_id":     account.ExternalID,
			"error":           err.Error(),
		}).Error("connect: failed to save connected account")
		return nil, err
	}

	s.connected(account)

	return account, nil
}

// credentials devolve a credencial em texto claro e a conta externa pedida (opcional)
func (s *Service) credentials(platform domain.Platform, payload []byte, req domain.ConnectPayload) (*domain.Credentials, string, error) {
	if platform != domain.PlatformNaver {
		if err := s.validate.Struct(req); err != nil {
			return nil, "", validationError(err)
		}
		if req.ExpiresAt != nil && !req.ExpiresAt.After(s.now()) {
			return nil, "", &domain.ValidationError{Field: "expiresAt", Reason: "is in the past"}
		}

		return &domain.Credentials{
			AccessToken:  req.AccessToken,
			RefreshToken: req.RefreshToken,
			ExpiresAt:    req.ExpiresAt,
		}, strings.TrimSpace(req.ExternalAccountID), nil
	}

	var cred naverdomain.Credential
	if err := json.Unmarshal(payload, &cred); err != nil {
		return nil, "", &domain.ValidationError{Field: "payload", Reason: "malformed JSON"}
	}
	if err := s.validate.Struct(cred); err != nil {
		return nil, "", validationError(err)
	}

	token, err := naver.EncodeCredential(cred)
	if err != nil {
		return nil, "", err
	}

	// sem indicação explícita, conecta o próprio cliente dono da chave
	externalID := strings.TrimSpace(req.ExternalAccountID)
	if externalID == "" {
		externalID = cred.CustomerID
	}

	return &domain.Credentials{AccessToken: token}, externalID, nil
}

// selectAccount exige que a conta pedida seja acessível; sem pedido, só aceita quando há uma única conta
func selectAccount(accounts []domain.NormalizedAccount, externalID string) (domain.NormalizedAccount, error) {
	if externalID != "" {
		for _, a := range accounts {
			if a.ExternalID == externalID {
				return a, nil
			}
		}
		return domain.NormalizedAccount{}, &domain.ValidationError{
			Field:  "externalAccountId",
			Reason: "is not accessible with this credential",
		}
	}

	switch len(accounts) {
	case 0:
		return domain.NormalizedAccount{}, &domain.ValidationError{Field: "externalAccountId", Reason: "credential has no accessible ad accounts"}
	case 1:
		return accounts[0], nil
	}

	return domain.NormalizedAccount{}, &domain.ValidationError{
		Field:  "externalAccountId",
		Reason: "is required when the credential reaches more than one ad account",
	}
}

// newAccount cifra a credencial; o registro (organização, plataforma, conta externa) é criado ou reativado no Create
func (s *Service) newAccount(organizationID string, platform domain.Platform, external domain.NormalizedAccount, creds *domain.Credentials) (*domain.ConnectedAccount, error) {
	accessCipher, err := s.encrypter.Encrypt(creds.AccessToken)
	if err != nil {
		return nil, err
	}

	refreshCipher, err := tokencrypt.EncryptOptional(s.encrypter, creds.RefreshToken)
	if err != nil {
		return nil, err
	}

	name := external.Name
	if name == "" {
		name = external.ExternalID
	}

	return &domain.ConnectedAccount{
		ID:                     utils.NewID(),
		OrganizationID:         organizationID,
		Platform:               platform,
		ExternalID:             external.ExternalID,
		Name:                   name,
		AccessTokenCiphertext:  accessCipher,
		RefreshTokenCiphertext: refreshCipher,
		Status:                 domain.ConnectedAccountStatusActive,
		TokenExpiresAt:         creds.ExpiresAt,
	}, nil
}

// connected descarta o cache da conta: linhas obtidas com a credencial anterior não valem mais
func (s *Service) connected(account *domain.ConnectedAccount) {
	fields := logrus.Fields{
		"account_id":      account.ID,
		"organization_id": account.OrganizationID,
		"platform":        account.Platform,
		"external_id":     account.ExternalID,
	}
	if s.invalidator != nil {
		fields["cache_entries_dropped"] = s.invalidator.InvalidatePrefix(cache.AccountPrefix(account.ID))
	}

	logrus.WithFields(fields).Info("connect: account connected")
}

func (s *Service) InitiateOAuth(ctx context.Context, organizationID string, platform domain.Platform, returnContext string) (*domain.OAuthStart, error) {
	if strings.TrimSpace(organizationID) == "" {
		return nil, &domain.ValidationError{Field: "organization_id", Reason: "is required"}
	}

	if returnContext == "" {
		returnContext = s.cfg.OAuth.DefaultReturnTo
	}
	if !s.cfg.OAuth.ReturnToAllowed(returnContext) {
		return nil, &domain.ValidationError{Field: "return_to", Reason: "host is not allowed"}
	}

	adapter, err := s.registry.Get(platform)
	if err != nil {
		return nil, err
	}

	state, err := utils.GenerateState()
	if err != nil {
		return nil, err
	}

	redirectURI := s.cfg.RedirectURI(platform)

	authURL, err := adapter.AuthorizationURL(state, redirectURI)
	if err != nil {
		return nil, err
	}

	err = s.stateStore.Save(ctx, &domain.OAuthState{
		State:          state,
		OrganizationID: organizationID,
		Platform:       platform,
		ReturnContext:  returnContext,
		RedirectURI:    redirectURI,
		CreatedAt:      s.now(),
	}, s.cfg.OAuth.StateTTL)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"organization_id": organizationID,
			"platform":        platform,
			"error":           err.Error(),
		}).Error("connect: failed to store oauth state")
		return nil, err
	}

	return &domain.OAuthStart{AuthorizationURL: authURL, State: state}, nil
}

// ResolveState consome o state: um segundo callback com o mesmo valor é rejeitado
func (s *Service) ResolveState(ctx context.Context, state string) (*domain.OAuthState, error) {
	if strings.TrimSpace(state) == "" {
		return nil, &domain.ValidationError{Field: "state", Reason: "is required"}
	}

	stored, err := s.stateStore.Consume(ctx, state)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.ValidationError{Field: "state", Reason: "is unknown or expired"}
		}
		return nil, err
	}

	return stored, nil
}

// CompleteOAuth troca o código pela credencial. Nada é persistido aqui.
func (s *Service) CompleteOAuth(ctx context.Context, platform domain.Platform, code, redirectURI string) (*domain.Credentials, error) {
	adapter, err := s.registry.Get(platform)
	if err != nil {
		return nil, err
	}

	if redirectURI == "" {
		redirectURI = s.cfg.RedirectURI(platform)
	}

	return adapter.ExchangeAuthorizationCode(ctx, code, redirectURI)
}

// ConnectOAuth conclui o callback: conecta cada conta de anúncio acessível pela concessão recebida
func (s *Service) ConnectOAuth(ctx context.Context, state *domain.OAuthState, creds *domain.Credentials) ([]*domain.ConnectedAccount, error) {
	adapter, err := s.registry.Get(state.Platform)
	if err != nil {
		return nil, err
	}

	accounts, err := adapter.ListAdAccounts(ctx, creds.AccessToken)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, &domain.ValidationError{Field: "externalAccountId", Reason: "credential has no accessible ad accounts"}
	}

	connected := make([]*domain.ConnectedAccount, 0, len(accounts))
	for _, a := range accounts {
		account, err := s.newAccount(state.OrganizationID, state.Platform, a, creds)
		if err != nil {
			return nil, err
		}
		connected = append(connected, account)
	}

	// todas as contas da concessão ou nenhuma
	if err := s.accountRepository.CreateMany(ctx, connected); err != nil {
		logrus.WithFields(logrus.Fields{
			"organization_id": state.OrganizationID,
			"platform":        state.Platform,
			"accounts":        len(connected),
			"error":           err.Error(),
		}).Error("connect: failed to save connected accounts")
		return nil, err
	}

	for _, account := range connected {
		s.connected(account)
	}

	return connected, nil
}

func (s *Service) ListConnectableAccounts(ctx context.Context, platform domain.Platform, accessToken string) ([]domain.NormalizedAccount, error) {
	if accessToken == "" {
		return nil, &domain.ValidationError{Field: "accessToken", Reason: "is required"}
	}

	adapter, err := s.registry.Get(platform)
	if err != nil {
		return nil, err
	}

	return adapter.ListAdAccounts(ctx, accessToken)
}

// ListAccounts filtra por plataforma quando informada
func (s *Service) ListAccounts(ctx context.Context, organizationID string, platform domain.Platform) ([]*domain.ConnectedAccount, error) {
	if platform == "" {
		return s.accountRepository.ListByOrganization(ctx, organizationID)
	}
	return s.accountRepository.FindByOrganizationAndPlatform(ctx, organizationID, platform)
}
