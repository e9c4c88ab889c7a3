package tenant

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
)

var (
	// errors
	ErrNotFound        = errors.New("tenant not found")
	ErrSubdomainExists = errors.New("a tenant with this subdomain already exists")
)

type (
	// Source delivers tenant payloads by subdomain (backend API, cache, catalog).
	Source interface {
		FetchTenant(ctx context.Context, subdomain string) (Tenant, error)
	}

	// Repository is the tenant catalog storage.
	Repository interface {
		Source
		CreateTenant(ctx context.Context, t Tenant) (Tenant, error)
		ListTenants(ctx context.Context, orderings []core.DBOrdering) ([]Tenant, error)
		DeleteTenant(ctx context.Context, subdomain string) error
	}

	// Service manages the catalog on behalf of platform operators.
	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// Load fetches the tenant for hostname into sess. Hosts without a tenant are left alone.
func Load(ctx context.Context, src Source, sess *Session, hostname string) error {
	if src == nil || !IsTenantDomain(hostname) {
		return nil
	}
	t, err := src.FetchTenant(ctx, Subdomain(hostname))
	if err != nil {
		return err
	}
	sess.SetTenant(t)
	return nil
}

func (svc *Service) Create(ctx context.Context, t Tenant) (Tenant, error) {
	if err := t.Validate(svc.validate); err != nil {
		return Tenant{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	created, err := svc.repo.CreateTenant(ctx, t)
	if errors.Cause(err) == ErrSubdomainExists {
		return Tenant{}, core.NewValidationError(ErrSubdomainExists, core.FieldError{Field: "subdomain", Error: ErrSubdomainExists.Error()})
	}
	return created, errors.Wrap(err, "creating tenant")
}

func (svc *Service) Get(ctx context.Context, subdomain string) (Tenant, error) {
	return svc.repo.FetchTenant(ctx, core.CleanString(subdomain, true /* lower */))
}

func (svc *Service) List(ctx context.Context, orderings []core.DBOrdering) ([]Tenant, error) {
	return svc.repo.ListTenants(ctx, orderings)
}

func (svc *Service) Remove(ctx context.Context, subdomain string) error {
	return svc.repo.DeleteTenant(ctx, core.CleanString(subdomain, true /* lower */))
}
