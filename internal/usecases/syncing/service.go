package syncing

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/integrator"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/cache"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/tokencrypt"
)

type Service struct {
	cfg                config.Sync
	accountRepository  repository.AccountRepository
	campaignRepository repository.CampaignRepository
	insightRepository  repository.InsightRepository
	registry           *integrator.Registry
	encrypter          tokencrypt.Encrypter
	cache              *cache.SyncCache[[]domain.NormalizedInsight]
	locker             *AccountLocker
	now                func() time.Time
}

var _ Syncer = (*Service)(nil)

func NewService(
	cfg config.Sync,
	accountRepo repository.AccountRepository,
	campaignRepo repository.CampaignRepository,
	insightRepo repository.InsightRepository,
	registry *integrator.Registry,
	encrypter tokencrypt.Encrypter,
	insightCache *cache.SyncCache[[]domain.NormalizedInsight],
	locker *AccountLocker,
) *Service {
	if locker == nil {
		locker = NewAccountLocker()
	}

	return &Service{
		cfg:                cfg,
		accountRepository:  accountRepo,
		campaignRepository: campaignRepo,
		insightRepository:  insightRepo,
		registry:           registry,
		encrypter:          encrypter,
		cache:              insightCache,
		locker:             locker,
		now:                time.Now,
	}
}

// detach desliga a sincronização do cancelamento de quem pediu: se o cliente desconectar,
// o trabalho continua até o fim, limitado apenas por cfg.Timeout
func (s *Service) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Timeout)
}

// prepare carrega a conta, recusa contas que não estão ACTIVE e obtém o lock
func (s *Service) prepare(ctx context.Context, accountID string) (*domain.ConnectedAccount, integrator.Adapter, func(), error) {
	account, err := s.accountRepository.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil, &domain.ValidationError{Field: "account_id", Reason: "not found"}
		}
		return nil, nil, nil, err
	}

	if !account.Active() {
		return nil, nil, nil, &domain.CredentialInvalidError{
			Platform: account.Platform,
			Reason:   "account is " + string(account.Status),
		}
	}

	adapter, err := s.registry.Get(account.Platform)
	if err != nil {
		return nil, nil, nil, err
	}

	key := account.LockKey()
	if !s.locker.TryLock(key) {
		return nil, nil, nil, &domain.SyncInProgressError{AccountID: account.ID}
	}

	return account, adapter, func() { s.locker.Unlock(key) }, nil
}

// markExpired é a única transição feita pela sincronização: ACTIVE -> EXPIRED.
// A escrita é condicionada à credencial lida; uma reconexão concorrente prevalece.
func (s *Service) markExpired(ctx context.Context, account *domain.ConnectedAccount, cause error) {
	fields := logrus.Fields{
		"account_id": account.ID,
		"platform":   account.Platform,
		"reason":     cause.Error(),
	}

	expired, err := s.accountRepository.MarkExpired(ctx, account.ID, account.AccessTokenCiphertext)
	if err != nil {
		fields["error"] = err.Error()
		logrus.WithFields(fields).Error("sync: failed to mark account as expired")
		return
	}

	if !expired {
		logrus.WithFields(fields).Info("sync: credential replaced during sync, account kept as is")
		return
	}

	account.Status = domain.ConnectedAccountStatusExpired
	fields["cache_entries_dropped"] = s.cache.InvalidatePrefix(cache.AccountPrefix(account.ID))
	logrus.WithFields(fields).Warn("sync: account credential expired, reconnect required")
}

// failed marca a conta como EXPIRED quando o erro indica credencial inválida
func (s *Service) failed(ctx context.Context, account *domain.ConnectedAccount, err error) error {
	if errors.Is(err, domain.ErrCredentialInvalid) {
		s.markExpired(ctx, account, err)
	}
	return err
}
