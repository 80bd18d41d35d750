package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/clauselens/clauselens/internal/domain/contract"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
	"github.com/clauselens/clauselens/pkg/errors"
	types "github.com/clauselens/clauselens/pkg/types/contract"
)

// ContractRepository is the PostgreSQL implementation of
// domain.ContractRepository.
type ContractRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewContractRepository constructs a ContractRepository.
func NewContractRepository(pool *pgxpool.Pool, log logging.Logger) *ContractRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ContractRepository{pool: pool, logger: log.Named("contract_repo")}
}

const contractColumns = `id, name, file_name, format, is_amendment, parent_contract_id, created_at, updated_at`

// Create inserts a new contract.
func (r *ContractRepository) Create(ctx context.Context, c *domain.Contract) error {
	_, err := pick(ctx, r.pool).Exec(ctx, `
		INSERT INTO contracts (`+contractColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, c.Name, c.FileName, c.Format, c.IsAmendment, c.ParentContractID,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("insert contract failed", logging.String("contract_id", c.ID.String()), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert contract")
	}
	return nil
}

// GetByID fetches one contract.  A missing row maps to CLS_001.
func (r *ContractRepository) GetByID(ctx context.Context, id types.ID) (*domain.Contract, error) {
	row := pick(ctx, r.pool).QueryRow(ctx, `
		SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id)

	c, err := scanContract(row)
	if err == pgx.ErrNoRows {
		return nil, errors.Newf(errors.ErrCodeContractNotFound, "contract %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to fetch contract")
	}
	return c, nil
}

// List returns every contract ordered by creation time.
func (r *ContractRepository) List(ctx context.Context) ([]*domain.Contract, error) {
	rows, err := pick(ctx, r.pool).Query(ctx, `
		SELECT `+contractColumns+` FROM contracts ORDER BY created_at`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list contracts")
	}
	defer rows.Close()

	var contracts []*domain.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan contract")
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate contracts")
	}
	return contracts, nil
}

func scanContract(row pgx.Row) (*domain.Contract, error) {
	var c domain.Contract
	err := row.Scan(&c.ID, &c.Name, &c.FileName, &c.Format, &c.IsAmendment,
		&c.ParentContractID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
