package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/utils"
)

//go:generate mockgen -source=account.go -destination=mocks/account.go -package=mocks

const accountsTable = "connected_accounts"

const accountColumns = "id, organization_id, platform, external_id, name, access_token_ciphertext, " +
	"refresh_token_ciphertext, status, token_expires_at, last_synced_at, created_at, updated_at"

type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*domain.ConnectedAccount, error)
	FindByOrganizationAndPlatform(ctx context.Context, organizationID string, platform domain.Platform) ([]*domain.ConnectedAccount, error)
	FindByExternalID(ctx context.Context, organizationID string, platform domain.Platform, externalID string) (*domain.ConnectedAccount, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]*domain.ConnectedAccount, error)
	ListActive(ctx context.Context) ([]*domain.ConnectedAccount, error)
	Create(ctx context.Context, account *domain.ConnectedAccount) error
	CreateMany(ctx context.Context, accounts []*domain.ConnectedAccount) error
	TouchLastSynced(ctx context.Context, id string, at time.Time) error
	MarkExpired(ctx context.Context, id string, expectedCiphertext string) (bool, error)
	UpdateCredentials(ctx context.Context, id string, expectedCiphertext string, accessCiphertext string, refreshCiphertext *string, expiresAt *time.Time) (bool, error)
}

type accountRepository struct {
	conn *postgres.Connection
}

func NewAccountRepository(conn *postgres.Connection) AccountRepository {
	return &accountRepository{
		conn: conn,
	}
}

func (r *accountRepository) FindByID(ctx context.Context, id string) (*domain.ConnectedAccount, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id})
}

func (r *accountRepository) FindByExternalID(ctx context.Context, organizationID string, platform domain.Platform, externalID string) (*domain.ConnectedAccount, error) {
	return r.findOne(ctx, squirrel.Eq{
		"organization_id": organizationID,
		"platform":        string(platform),
		"external_id":     externalID,
	})
}

func (r *accountRepository) FindByOrganizationAndPlatform(ctx context.Context, organizationID string, platform domain.Platform) ([]*domain.ConnectedAccount, error) {
	return r.findMany(ctx, squirrel.Eq{"organization_id": organizationID, "platform": string(platform)})
}

func (r *accountRepository) ListByOrganization(ctx context.Context, organizationID string) ([]*domain.ConnectedAccount, error) {
	return r.findMany(ctx, squirrel.Eq{"organization_id": organizationID})
}

func (r *accountRepository) ListActive(ctx context.Context) ([]*domain.ConnectedAccount, error) {
	return r.findMany(ctx, squirrel.Eq{"status": string(domain.ConnectedAccountStatusActive)})
}

func (r *accountRepository) findOne(ctx context.Context, where squirrel.Eq) (*domain.ConnectedAccount, error) {
	query, args, err := squirrel.
		Select(accountColumns).
		From(accountsTable).
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	acc, err := scanAccount(r.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, dbError("find account", err)
	}

	return acc, nil
}

func (r *accountRepository) findMany(ctx context.Context, where squirrel.Eq) ([]*domain.ConnectedAccount, error) {
	query, args, err := squirrel.
		Select(accountColumns).
		From(accountsTable).
		Where(where).
		OrderBy("platform ASC", "name ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError("list accounts", err)
	}
	defer rows.Close()

	accounts := make([]*domain.ConnectedAccount, 0)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, dbError("scan account", err)
		}
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		return nil, dbError("iterate accounts", err)
	}

	return accounts, nil
}

// Create grava a conta ou, se (organization_id, platform, external_id) já existir, atualiza a existente.
// Reconectar a mesma conta externa nunca duplica o registro.
func (r *accountRepository) Create(ctx context.Context, account *domain.ConnectedAccount) error {
	return r.create(ctx, r.conn, account)
}

// CreateMany grava todas as contas numa única transação: ou todas ficam conectadas, ou nenhuma
func (r *accountRepository) CreateMany(ctx context.Context, accounts []*domain.ConnectedAccount) error {
	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for _, account := range accounts {
			if err := r.create(ctx, tx, account); err != nil {
				return fmt.Errorf("account %s: %w", account.ExternalID, err)
			}
		}
		return nil
	})
}

func (r *accountRepository) create(ctx context.Context, q postgres.Queryer, account *domain.ConnectedAccount) error {
	if account.ID == "" {
		account.ID = utils.NewID()
	}

	query, args, err := squirrel.
		Insert(accountsTable).
		Columns("id", "organization_id", "platform", "external_id", "name", "access_token_ciphertext",
			"refresh_token_ciphertext", "status", "token_expires_at").
		Values(
			account.ID,
			account.OrganizationID,
			string(account.Platform),
			account.ExternalID,
			account.Name,
			account.AccessTokenCiphertext,
			account.RefreshTokenCiphertext,
			string(account.Status),
			account.TokenExpiresAt,
		).
		Suffix(`
			ON CONFLICT (organization_id, platform, external_id) DO UPDATE SET
				name = EXCLUDED.name,
				access_token_ciphertext = EXCLUDED.access_token_ciphertext,
				refresh_token_ciphertext = EXCLUDED.refresh_token_ciphertext,
				status = EXCLUDED.status,
				token_expires_at = EXCLUDED.token_expires_at,
				updated_at = NOW()
			RETURNING id, created_at, updated_at
		`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	err = q.QueryRowContext(ctx, query, args...).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return dbError("create account", err)
	}

	return nil
}

// TouchLastSynced altera apenas last_synced_at; credencial e status ficam como estão no banco
func (r *accountRepository) TouchLastSynced(ctx context.Context, id string, at time.Time) error {
	query, args, err := squirrel.
		Update(accountsTable).
		Set("last_synced_at", at).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	affected, err := r.exec(ctx, "touch last synced", query, args)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("touch last synced %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// MarkExpired faz ACTIVE -> EXPIRED somente se a credencial gravada ainda for expectedCiphertext.
// Retorna false quando a conta foi reconectada (ou já expirou) nesse meio tempo.
func (r *accountRepository) MarkExpired(ctx context.Context, id string, expectedCiphertext string) (bool, error) {
	query, args, err := squirrel.
		Update(accountsTable).
		Set("status", string(domain.ConnectedAccountStatusExpired)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":                      id,
			"access_token_ciphertext": expectedCiphertext,
			"status":                  string(domain.ConnectedAccountStatusActive),
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	affected, err := r.exec(ctx, "mark account expired", query, args)
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// UpdateCredentials troca a credencial renovada com a mesma guarda de MarkExpired.
// refreshCiphertext nil mantém o refresh token gravado.
func (r *accountRepository) UpdateCredentials(
	ctx context.Context,
	id string,
	expectedCiphertext string,
	accessCiphertext string,
	refreshCiphertext *string,
	expiresAt *time.Time,
) (bool, error) {
	query, args, err := squirrel.
		Update(accountsTable).
		Set("access_token_ciphertext", accessCiphertext).
		Set("refresh_token_ciphertext", squirrel.Expr("COALESCE(?, refresh_token_ciphertext)", refreshCiphertext)).
		Set("token_expires_at", expiresAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":                      id,
			"access_token_ciphertext": expectedCiphertext,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	affected, err := r.exec(ctx, "update account credentials", query, args)
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *accountRepository) exec(ctx context.Context, op, query string, args []interface{}) (int64, error) {
	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, dbError(op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error getting rows affected: %w", err)
	}

	return rowsAffected, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*domain.ConnectedAccount, error) {
	var (
		acc       domain.ConnectedAccount
		platform  string
		status    string
		refresh   sql.NullString
		expiresAt sql.NullTime
		syncedAt  sql.NullTime
	)

	if err := row.Scan(
		&acc.ID,
		&acc.OrganizationID,
		&platform,
		&acc.ExternalID,
		&acc.Name,
		&acc.AccessTokenCiphertext,
		&refresh,
		&status,
		&expiresAt,
		&syncedAt,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	acc.Platform = domain.Platform(platform)
	acc.Status = domain.ConnectedAccountStatus(status)
	if refresh.Valid {
		acc.RefreshTokenCiphertext = &refresh.String
	}
	acc.TokenExpiresAt = nullTime(expiresAt)
	acc.LastSyncedAt = nullTime(syncedAt)

	return &acc, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
