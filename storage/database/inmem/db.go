package inmemdb

import (
	"sync"

	"github.com/trezcool/masomo-portal/core/tenant"
)

type (
	DB struct {
		tenant *tenantTable
	}

	tenantRecord struct {
		seq    int
		tenant tenant.Tenant
	}

	tenantTable struct {
		mutex sync.RWMutex
		seq   int
		table map[string]*tenantRecord // by subdomain
	}
)

func Open() *DB {
	return &DB{
		tenant: &tenantTable{table: make(map[string]*tenantRecord)},
	}
}
