package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
	"github.com/aussiebroadwan/leadboard/internal/crm/store"
	"github.com/aussiebroadwan/leadboard/pkg/idx"
	"github.com/aussiebroadwan/leadboard/pkg/slogx"
)

// CompanyService onboards tenants and resolves which company a user is
// acting in.
type CompanyService struct {
	Store store.Store
}

type CreateCompanyInput struct {
	Name string `json:"name" example:"Imobiliária São João"`
	// Slug is derived from Name when empty.
	Slug string `json:"slug,omitempty" example:"imobiliaria-sao-joao"`
}

// Create onboards a new company owned by userID. In one transaction it
// creates the company, makes it the user's active company, grants the owner
// role and seeds the default pipeline stages.
func (s *CompanyService) Create(ctx context.Context, userID string, in CreateCompanyInput) (domain.Company, error) {
	name := strings.TrimSpace(in.Name)
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = domain.Slugify(name)
	}
	if err := domain.ValidateCompany(name, slug); err != nil {
		return domain.Company{}, err
	}

	now := time.Now().UTC()
	company := domain.Company{
		ID:        idx.NewString(),
		Name:      name,
		Slug:      slug,
		OwnerID:   userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Companies().CreateCompany(ctx, company); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrSlugTaken
			}
			return err
		}
		if err := tx.Profiles().SetActiveCompany(ctx, userID, &company.ID); err != nil {
			return notFound(err)
		}
		if err := tx.Memberships().CreateMembership(ctx, domain.Membership{
			ID:        idx.NewString(),
			UserID:    userID,
			CompanyID: company.ID,
			Role:      domain.RoleOwner,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		for i, tmpl := range domain.DefaultStages {
			if err := tx.Stages().CreateStage(ctx, domain.Stage{
				ID:        idx.NewString(),
				CompanyID: company.ID,
				Name:      tmpl.Name,
				Color:     tmpl.Color,
				Position:  i + 1,
				CreatedAt: now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Company{}, err
	}

	slogx.FromContext(ctx).Info("company created",
		slog.String("company_id", company.ID), slog.String("slug", company.Slug))
	return company, nil
}

// List returns the companies userID belongs to.
func (s *CompanyService) List(ctx context.Context, userID string) ([]domain.CompanyWithRole, error) {
	return s.Store.Companies().ListCompaniesForUser(ctx, userID)
}

// Current returns the actor's company.
func (s *CompanyService) Current(ctx context.Context, a domain.Actor) (domain.Company, error) {
	c, err := s.Store.Companies().GetCompany(ctx, a.CompanyID)
	return c, notFound(err)
}

// Rename changes the company name. The slug is kept.
func (s *CompanyService) Rename(ctx context.Context, a domain.Actor, name string) (domain.Company, error) {
	if err := authorize(a, domain.ActionManageCompany); err != nil {
		return domain.Company{}, err
	}
	c, err := s.Store.Companies().GetCompany(ctx, a.CompanyID)
	if err != nil {
		return domain.Company{}, notFound(err)
	}
	name = strings.TrimSpace(name)
	if err := domain.ValidateCompany(name, c.Slug); err != nil {
		return domain.Company{}, err
	}
	if err := s.Store.Companies().RenameCompany(ctx, c.ID, name); err != nil {
		return domain.Company{}, notFound(err)
	}
	c.Name = name
	return c, nil
}

// SwitchActive makes companyID the user's active company.
func (s *CompanyService) SwitchActive(ctx context.Context, userID, companyID string) (domain.Profile, error) {
	if _, err := s.Store.Memberships().GetMembership(ctx, companyID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrNotMember
		}
		return domain.Profile{}, err
	}
	if err := s.Store.Profiles().SetActiveCompany(ctx, userID, &companyID); err != nil {
		return domain.Profile{}, notFound(err)
	}
	p, err := s.Store.Profiles().GetProfile(ctx, userID)
	return p, notFound(err)
}

// ResolveActor returns the user acting in their active company with their
// current role there. ErrNoCompany means the user has no active company or
// is no longer a member of it.
func (s *CompanyService) ResolveActor(ctx context.Context, userID string) (domain.Actor, error) {
	p, err := s.Store.Profiles().GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Actor{}, ErrNoCompany
		}
		return domain.Actor{}, err
	}
	if p.CompanyID == nil || *p.CompanyID == "" {
		return domain.Actor{}, ErrNoCompany
	}

	m, err := s.Store.Memberships().GetMembership(ctx, *p.CompanyID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Actor{}, ErrNoCompany
		}
		return domain.Actor{}, err
	}
	return domain.Actor{UserID: userID, CompanyID: m.CompanyID, Role: m.Role}, nil
}
