package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/vfg2006/adsync-api/internal/domain"
)

// dbError padroniza erros de banco; sql.ErrNoRows vira domain.ErrNotFound
func dbError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s: database error: %w (code: %s)", op, pqErr, pqErr.Code)
	}

	return fmt.Errorf("%s: %w", op, err)
}
