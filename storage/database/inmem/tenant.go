package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/tenant"
)

type tenantRepository struct {
	db *tenantTable
}

var _ tenant.Repository = (*tenantRepository)(nil) // interface compliance check

func NewTenantRepository(db *DB) *tenantRepository {
	return &tenantRepository{db: db.tenant}
}

func (repo *tenantRepository) CreateTenant(_ context.Context, t tenant.Tenant) (tenant.Tenant, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[t.Subdomain]; ok {
		return tenant.Tenant{}, tenant.ErrSubdomainExists
	}
	repo.db.seq++
	repo.db.table[t.Subdomain] = &tenantRecord{seq: repo.db.seq, tenant: t.Clone()}
	return t, nil
}

func (repo *tenantRepository) FetchTenant(_ context.Context, subdomain string) (tenant.Tenant, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec, ok := repo.db.table[subdomain]; ok {
		return rec.tenant.Clone(), nil
	}
	return tenant.Tenant{}, tenant.ErrNotFound
}

func (repo *tenantRepository) ListTenants(_ context.Context, orderings []core.DBOrdering) ([]tenant.Tenant, error) {
	repo.db.mutex.RLock()
	records := make([]*tenantRecord, 0, len(repo.db.table))
	for _, rec := range repo.db.table {
		records = append(records, rec)
	}
	repo.db.mutex.RUnlock()

	// subdomain ASC is the fallback and the tie breaker
	orderings = append(orderings[:len(orderings):len(orderings)], core.DBOrdering{Field: "subdomain", Ascending: true})
	sort.Slice(records, func(i, j int) bool {
		for _, ord := range orderings {
			c := compare(records[i], records[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})

	tenants := make([]tenant.Tenant, 0, len(records))
	for _, rec := range records {
		tenants = append(tenants, rec.tenant.Clone())
	}
	return tenants, nil
}

func (repo *tenantRepository) DeleteTenant(_ context.Context, subdomain string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[subdomain]; !ok {
		return tenant.ErrNotFound
	}
	delete(repo.db.table, subdomain)
	return nil
}

// compare returns -1, 0 or 1; unknown fields compare equal.
func compare(a, b *tenantRecord, field string) int {
	switch field {
	case "name":
		return strings.Compare(a.tenant.Name, b.tenant.Name)
	case "subdomain":
		return strings.Compare(a.tenant.Subdomain, b.tenant.Subdomain)
	case "created_at":
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
	}
	return 0
}
