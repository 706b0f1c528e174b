package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/utils"
)

//go:generate mockgen -source=campaign.go -destination=mocks/campaign.go -package=mocks

const campaignsTable = "campaigns"

const campaignColumns = "id, account_id, external_id, name, status, state, created_at, updated_at"

type CampaignRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Campaign, error)
	FindByExternalID(ctx context.Context, accountID, externalID string) (*domain.Campaign, error)
	FindByAccount(ctx context.Context, accountID string) ([]*domain.Campaign, error)
	Save(ctx context.Context, campaign *domain.Campaign) error
}

type campaignRepository struct {
	conn *postgres.Connection
}

func NewCampaignRepository(conn *postgres.Connection) CampaignRepository {
	return &campaignRepository{
		conn: conn,
	}
}

func (r *campaignRepository) FindByID(ctx context.Context, id string) (*domain.Campaign, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id})
}

func (r *campaignRepository) FindByExternalID(ctx context.Context, accountID, externalID string) (*domain.Campaign, error) {
	return r.findOne(ctx, squirrel.Eq{"account_id": accountID, "external_id": externalID})
}

func (r *campaignRepository) findOne(ctx context.Context, where squirrel.Eq) (*domain.Campaign, error) {
	query, args, err := squirrel.
		Select(campaignColumns).
		From(campaignsTable).
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	c, err := scanCampaign(r.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, dbError("find campaign", err)
	}

	return c, nil
}

func (r *campaignRepository) FindByAccount(ctx context.Context, accountID string) ([]*domain.Campaign, error) {
	query, args, err := squirrel.
		Select(campaignColumns).
		From(campaignsTable).
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("name ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError("list campaigns", err)
	}
	defer rows.Close()

	campaigns := make([]*domain.Campaign, 0)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, dbError("scan campaign", err)
		}
		campaigns = append(campaigns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, dbError("iterate campaigns", err)
	}

	return campaigns, nil
}

// Save cria ou atualiza por (account_id, external_id); a constraint impede campanhas duplicadas
// mesmo quando duas sincronizações observam a mesma campanha.
func (r *campaignRepository) Save(ctx context.Context, campaign *domain.Campaign) error {
	if campaign.ID == "" {
		campaign.ID = utils.NewID()
	}

	query, args, err := squirrel.
		Insert(campaignsTable).
		Columns("id", "account_id", "external_id", "name", "status", "state").
		Values(
			campaign.ID,
			campaign.AccountID,
			campaign.ExternalID,
			campaign.Name,
			campaign.Status,
			string(campaign.State),
		).
		Suffix(`
			ON CONFLICT (account_id, external_id) DO UPDATE SET
				name = EXCLUDED.name,
				status = EXCLUDED.status,
				state = EXCLUDED.state,
				updated_at = NOW()
			RETURNING id, created_at, updated_at
		`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	err = r.conn.QueryRowContext(ctx, query, args...).Scan(&campaign.ID, &campaign.CreatedAt, &campaign.UpdatedAt)
	if err != nil {
		return dbError("save campaign", err)
	}

	return nil
}

func scanCampaign(row scanner) (*domain.Campaign, error) {
	var (
		c     domain.Campaign
		state string
	)

	if err := row.Scan(
		&c.ID,
		&c.AccountID,
		&c.ExternalID,
		&c.Name,
		&c.Status,
		&state,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	c.State = domain.CampaignState(state)

	return &c, nil
}
