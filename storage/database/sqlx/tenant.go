package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/tenant"
)

const (
	uniqueViolation = "23505"

	tenantColumns = `id, name, subdomain, plan_name, plan_features, plan_limits,
		primary_color, secondary_color, logo, custom_css, created_at, updated_at`
)

var tenantOrderings = map[string]bool{"name": true, "subdomain": true, "created_at": true}

type tenantRow struct {
	ID             string         `db:"id"`
	Name           string         `db:"name"`
	Subdomain      string         `db:"subdomain"`
	PlanName       string         `db:"plan_name"`
	PlanFeatures   types.JSONText `db:"plan_features"`
	PlanLimits     types.JSONText `db:"plan_limits"`
	PrimaryColor   string         `db:"primary_color"`
	SecondaryColor string         `db:"secondary_color"`
	Logo           null.String    `db:"logo"`
	CustomCSS      null.String    `db:"custom_css"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

type tenantRepository struct {
	db *sqlx.DB
}

var _ tenant.Repository = (*tenantRepository)(nil) // interface compliance check

func NewTenantRepository(db *sqlx.DB) *tenantRepository {
	return &tenantRepository{db: db}
}

func (repo tenantRepository) toRow(t tenant.Tenant) (tenantRow, error) {
	features := t.Plan.Features
	if features == nil {
		features = map[string]bool{}
	}
	limits := t.Plan.Limits
	if limits == nil {
		limits = map[string]*int{}
	}

	featuresJSON, err := json.Marshal(features)
	if err != nil {
		return tenantRow{}, errors.Wrap(err, "encoding plan features")
	}
	limitsJSON, err := json.Marshal(limits)
	if err != nil {
		return tenantRow{}, errors.Wrap(err, "encoding plan limits")
	}

	now := time.Now().UTC()
	return tenantRow{
		ID:             t.ID,
		Name:           t.Name,
		Subdomain:      t.Subdomain,
		PlanName:       t.Plan.Name,
		PlanFeatures:   featuresJSON,
		PlanLimits:     limitsJSON,
		PrimaryColor:   t.Settings.PrimaryColor,
		SecondaryColor: t.Settings.SecondaryColor,
		Logo:           null.NewString(t.Settings.Logo, t.Settings.Logo != ""),
		CustomCSS:      null.NewString(t.Settings.CustomCSS, t.Settings.CustomCSS != ""),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (repo tenantRepository) fromRow(row tenantRow) (tenant.Tenant, error) {
	t := tenant.Tenant{
		ID:        row.ID,
		Name:      row.Name,
		Subdomain: row.Subdomain,
		Plan:      tenant.Plan{Name: row.PlanName},
		Settings: tenant.Settings{
			PrimaryColor:   row.PrimaryColor,
			SecondaryColor: row.SecondaryColor,
			Logo:           row.Logo.String,
			CustomCSS:      row.CustomCSS.String,
		},
	}
	if err := row.PlanFeatures.Unmarshal(&t.Plan.Features); err != nil {
		return tenant.Tenant{}, errors.Wrap(err, "decoding plan features")
	}
	if err := row.PlanLimits.Unmarshal(&t.Plan.Limits); err != nil {
		return tenant.Tenant{}, errors.Wrap(err, "decoding plan limits")
	}
	return t, nil
}

func (repo tenantRepository) CreateTenant(ctx context.Context, t tenant.Tenant) (tenant.Tenant, error) {
	row, err := repo.toRow(t)
	if err != nil {
		return tenant.Tenant{}, err
	}

	const q = `INSERT INTO tenant (` + tenantColumns + `)
		VALUES (:id, :name, :subdomain, :plan_name, :plan_features, :plan_limits,
			:primary_color, :secondary_color, :logo, :custom_css, :created_at, :updated_at)`

	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return tenant.Tenant{}, tenant.ErrSubdomainExists
		}
		return tenant.Tenant{}, errors.Wrap(err, "inserting tenant")
	}
	return t, nil
}

func (repo tenantRepository) FetchTenant(ctx context.Context, subdomain string) (tenant.Tenant, error) {
	const q = `SELECT ` + tenantColumns + ` FROM tenant WHERE subdomain = $1`

	var row tenantRow
	if err := repo.db.GetContext(ctx, &row, q, subdomain); err != nil {
		if err == sql.ErrNoRows {
			return tenant.Tenant{}, tenant.ErrNotFound
		}
		return tenant.Tenant{}, errors.Wrap(err, "selecting tenant")
	}
	return repo.fromRow(row)
}

func (repo tenantRepository) ListTenants(ctx context.Context, orderings []core.DBOrdering) ([]tenant.Tenant, error) {
	q := `SELECT ` + tenantColumns + ` FROM tenant ORDER BY ` +
		core.OrderByClause(orderings, tenantOrderings, "subdomain ASC")

	var rows []tenantRow
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting tenants")
	}

	tenants := make([]tenant.Tenant, 0, len(rows))
	for _, row := range rows {
		t, err := repo.fromRow(row)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, nil
}

func (repo tenantRepository) DeleteTenant(ctx context.Context, subdomain string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM tenant WHERE subdomain = $1`, subdomain)
	if err != nil {
		return errors.Wrap(err, "deleting tenant")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting tenant")
	}
	if n == 0 {
		return tenant.ErrNotFound
	}
	return nil
}
