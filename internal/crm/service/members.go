package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
	"github.com/aussiebroadwan/leadboard/internal/crm/store"
	"github.com/aussiebroadwan/leadboard/pkg/idx"
)

// MemberService manages the roles users hold in the actor's company.
//
// Only an owner may grant or revoke the owner role, and a company always
// keeps at least one owner.
type MemberService struct {
	Store store.Store
}

type AddMemberInput struct {
	Email string      `json:"email" example:"bruno@example.com"`
	Role  domain.Role `json:"role" example:"agent"`
}

func (s *MemberService) List(ctx context.Context, a domain.Actor) ([]domain.Member, error) {
	if err := authorize(a, domain.ActionRead); err != nil {
		return nil, err
	}
	return s.Store.Memberships().ListMembers(ctx, a.CompanyID)
}

// Add grants an existing user a role in the company.
func (s *MemberService) Add(ctx context.Context, a domain.Actor, in AddMemberInput) (domain.Member, error) {
	if err := authorize(a, domain.ActionManageMembers); err != nil {
		return domain.Member{}, err
	}
	if err := checkGrant(a, in.Role); err != nil {
		return domain.Member{}, err
	}

	email := domain.NormalizeEmail(in.Email)
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		return domain.Member{}, notFound(err)
	}
	profile, err := s.Store.Profiles().GetProfile(ctx, user.ID)
	if err != nil {
		return domain.Member{}, notFound(err)
	}

	m := domain.Membership{
		ID:        idx.NewString(),
		UserID:    user.ID,
		CompanyID: a.CompanyID,
		Role:      in.Role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.Memberships().CreateMembership(ctx, m); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Member{}, ErrAlreadyMember
		}
		return domain.Member{}, err
	}

	return domain.Member{
		UserID:    user.ID,
		Email:     user.Email,
		FullName:  profile.FullName,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
	}, nil
}

// UpdateRole changes a member's role.
func (s *MemberService) UpdateRole(ctx context.Context, a domain.Actor, userID string, role domain.Role) error {
	if err := authorize(a, domain.ActionManageMembers); err != nil {
		return err
	}
	if err := checkGrant(a, role); err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		m, err := tx.Memberships().GetMembership(ctx, a.CompanyID, userID)
		if err != nil {
			return notFound(err)
		}
		if m.Role == role {
			return nil
		}
		if m.Role == domain.RoleOwner {
			if err := checkOwnerRemovable(ctx, tx, a); err != nil {
				return err
			}
		}
		return notFound(tx.Memberships().UpdateRole(ctx, a.CompanyID, userID, role))
	})
}

// Remove revokes a membership. Members may always remove themselves; if the
// company was their active one it is cleared.
func (s *MemberService) Remove(ctx context.Context, a domain.Actor, userID string) error {
	if userID != a.UserID {
		if err := authorize(a, domain.ActionManageMembers); err != nil {
			return err
		}
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		m, err := tx.Memberships().GetMembership(ctx, a.CompanyID, userID)
		if err != nil {
			return notFound(err)
		}
		if m.Role == domain.RoleOwner {
			if err := checkOwnerRemovable(ctx, tx, a); err != nil {
				return err
			}
		}
		if err := tx.Memberships().DeleteMembership(ctx, a.CompanyID, userID); err != nil {
			return notFound(err)
		}

		p, err := tx.Profiles().GetProfile(ctx, userID)
		if err != nil {
			return notFound(err)
		}
		if p.CompanyID != nil && *p.CompanyID == a.CompanyID {
			return tx.Profiles().SetActiveCompany(ctx, userID, nil)
		}
		return nil
	})
}

// checkGrant validates role and that the actor may hand it out.
func checkGrant(a domain.Actor, role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	if role == domain.RoleOwner && a.Role != domain.RoleOwner {
		return ErrForbidden
	}
	return nil
}

// checkOwnerRemovable guards demoting or removing an owner.
func checkOwnerRemovable(ctx context.Context, tx store.Tx, a domain.Actor) error {
	if a.Role != domain.RoleOwner {
		return ErrForbidden
	}
	owners, err := tx.Memberships().CountByRole(ctx, a.CompanyID, domain.RoleOwner)
	if err != nil {
		return err
	}
	if owners <= 1 {
		return ErrLastOwner
	}
	return nil
}
