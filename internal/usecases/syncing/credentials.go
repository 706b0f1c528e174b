package syncing

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/integrator"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/tokencrypt"
)

// accessToken decifra a credencial e, quando ela expira dentro de cfg.RefreshWindow e a plataforma
// permite, renova antes de usar. Texto cifrado ilegível conta como credencial inválida.
func (s *Service) accessToken(ctx context.Context, account *domain.ConnectedAccount, adapter integrator.Adapter) (string, error) {
	token, err := s.encrypter.Decrypt(account.AccessTokenCiphertext)
	if err != nil {
		return "", s.failed(ctx, account, &domain.CredentialInvalidError{
			Platform: account.Platform,
			Reason:   "stored credential is unreadable",
			Err:      err,
		})
	}

	now := s.now()
	if !account.TokenExpiringWithin(now, s.cfg.RefreshWindow) {
		return token, nil
	}

	refresher, ok := integrator.Refresher(adapter)
	if !ok {
		return token, nil
	}

	refreshed, err := s.refresh(ctx, account, refresher, token)
	if err == nil {
		return refreshed, nil
	}

	if errors.Is(err, domain.ErrCredentialInvalid) {
		return "", s.failed(ctx, account, err)
	}

	// ainda válido: segue com o token atual e tenta renovar na próxima execução
	if account.TokenExpiresAt.After(now) {
		logrus.WithFields(logrus.Fields{
			"account_id": account.ID,
			"platform":   account.Platform,
			"error":      err.Error(),
		}).Warn("sync: token refresh failed, using current token")
		return token, nil
	}

	return "", err
}

// refresh usa o refresh token quando existe; o Meta renova a partir do próprio access token
func (s *Service) refresh(ctx context.Context, account *domain.ConnectedAccount, refresher integrator.TokenRefresher, accessToken string) (string, error) {
	grant := accessToken
	if account.RefreshTokenCiphertext != nil {
		refreshToken, err := s.encrypter.Decrypt(*account.RefreshTokenCiphertext)
		if err != nil {
			return "", &domain.CredentialInvalidError{
				Platform: account.Platform,
				Reason:   "stored refresh credential is unreadable",
				Err:      err,
			}
		}
		grant = refreshToken
	}

	creds, err := refresher.RefreshCredentials(ctx, grant)
	if err != nil {
		return "", err
	}

	accessCipher, err := s.encrypter.Encrypt(creds.AccessToken)
	if err != nil {
		return "", err
	}

	refreshCipher, err := tokencrypt.EncryptOptional(s.encrypter, creds.RefreshToken)
	if err != nil {
		return "", err
	}

	log := logrus.WithFields(logrus.Fields{
		"account_id": account.ID,
		"platform":   account.Platform,
	})

	updated, err := s.accountRepository.UpdateCredentials(ctx, account.ID, account.AccessTokenCiphertext,
		accessCipher, refreshCipher, creds.ExpiresAt)
	switch {
	case err != nil:
		// a credencial nova ainda serve para esta execução
		log.WithError(err).Error("sync: failed to persist refreshed credential")
	case !updated:
		log.Info("sync: credential replaced during refresh, keeping stored one")
	default:
		account.AccessTokenCiphertext = accessCipher
		if refreshCipher != nil {
			account.RefreshTokenCiphertext = refreshCipher
		}
		account.TokenExpiresAt = creds.ExpiresAt
		log.Info("sync: credential refreshed")
	}

	return creds.AccessToken, nil
}
