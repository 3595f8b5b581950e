package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/danwahyudir/lapju/core/office"
)

type officeRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Level     string    `db:"level"`
	ParentID  string    `db:"parent_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r officeRow) unrow() office.Office {
	return office.Office{
		ID:        r.ID,
		Name:      r.Name,
		Level:     r.Level,
		ParentID:  r.ParentID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type officeRepository struct {
	db *sqlx.DB
}

var _ office.Repository = (*officeRepository)(nil)

func NewOfficeRepository(db *sqlx.DB) *officeRepository {
	return &officeRepository{db: db}
}

func (repo officeRepository) CreateOffice(ctx context.Context, off office.Office) (office.Office, error) {
	const query = `
		INSERT INTO office (id, name, level, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, query, off.ID, off.Name, off.Level, off.ParentID, off.CreatedAt, off.UpdatedAt)
	if err != nil {
		return office.Office{}, errors.Wrap(err, "inserting office")
	}
	return off, nil
}

func (repo officeRepository) GetOffice(ctx context.Context, id string) (office.Office, error) {
	var r officeRow
	if err := repo.db.GetContext(ctx, &r, "SELECT * FROM office WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return office.Office{}, office.ErrNotFound
		}
		return office.Office{}, errors.Wrap(err, "getting office")
	}
	return r.unrow(), nil
}

func (repo officeRepository) QueryAllOffices(ctx context.Context) ([]office.Office, error) {
	var rows []officeRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT * FROM office ORDER BY level, name"); err != nil {
		return nil, errors.Wrap(err, "querying offices")
	}
	offices := make([]office.Office, 0, len(rows))
	for _, r := range rows {
		offices = append(offices, r.unrow())
	}
	return offices, nil
}
