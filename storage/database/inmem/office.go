package inmemdb

import (
	"context"
	"sort"

	"github.com/danwahyudir/lapju/core/office"
)

type officeRepository struct {
	db *DB
}

var _ office.Repository = (*officeRepository)(nil)

func NewOfficeRepository(db *DB) *officeRepository {
	return &officeRepository{db: db}
}

func (repo *officeRepository) CreateOffice(ctx context.Context, off office.Office) (office.Office, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.offices[off.ID] = &off
	return off, nil
}

func (repo *officeRepository) GetOffice(ctx context.Context, id string) (office.Office, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if off, ok := repo.db.offices[id]; ok {
		return *off, nil
	}
	return office.Office{}, office.ErrNotFound
}

func (repo *officeRepository) QueryAllOffices(ctx context.Context) ([]office.Office, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	offices := make([]office.Office, 0, len(repo.db.offices))
	for _, off := range repo.db.offices {
		offices = append(offices, *off)
	}
	sort.Slice(offices, func(i, j int) bool { return offices[i].Name < offices[j].Name })
	return offices, nil
}
