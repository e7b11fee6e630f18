package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/leadboard/internal/crm/cache"
	"github.com/aussiebroadwan/leadboard/internal/crm/domain"
	"github.com/aussiebroadwan/leadboard/internal/crm/store"
	"github.com/aussiebroadwan/leadboard/pkg/idx"
)

type StageService struct {
	Store store.Store
	Cache cache.Cache
}

type StageInput struct {
	Name  string `json:"name" example:"Visita agendada"`
	Color string `json:"color,omitempty" example:"#8B5CF6"`
}

// StagePatch is a partial stage update; nil fields are left unchanged.
type StagePatch struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

// List returns the company's stages ordered by position.
func (s *StageService) List(ctx context.Context, a domain.Actor) ([]domain.Stage, error) {
	if err := authorize(a, domain.ActionRead); err != nil {
		return nil, err
	}
	return s.Store.Stages().ListStages(ctx, a.CompanyID)
}

// Create appends a stage after the current last one.
func (s *StageService) Create(ctx context.Context, a domain.Actor, in StageInput) (domain.Stage, error) {
	if err := authorize(a, domain.ActionManageStages); err != nil {
		return domain.Stage{}, err
	}

	st := domain.Stage{
		ID:        idx.NewString(),
		CompanyID: a.CompanyID,
		Name:      strings.TrimSpace(in.Name),
		Color:     strings.TrimSpace(in.Color),
		CreatedAt: time.Now().UTC(),
	}
	if st.Color == "" {
		st.Color = domain.DefaultStageColor
	}
	if err := domain.ValidateStage(st); err != nil {
		return domain.Stage{}, err
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		last, err := tx.Stages().MaxPosition(ctx, a.CompanyID)
		if err != nil {
			return err
		}
		st.Position = last + 1
		return tx.Stages().CreateStage(ctx, st)
	})
	if err != nil {
		return domain.Stage{}, err
	}

	invalidateDashboard(ctx, s.Cache, a.CompanyID)
	return st, nil
}

func (s *StageService) Update(ctx context.Context, a domain.Actor, id string, patch StagePatch) (domain.Stage, error) {
	if err := authorize(a, domain.ActionManageStages); err != nil {
		return domain.Stage{}, err
	}

	st, err := s.Store.Stages().GetStage(ctx, a.CompanyID, id)
	if err != nil {
		return domain.Stage{}, notFound(err)
	}
	if patch.Name != nil {
		st.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Color != nil {
		st.Color = strings.TrimSpace(*patch.Color)
	}
	if err := domain.ValidateStage(st); err != nil {
		return domain.Stage{}, err
	}
	if err := s.Store.Stages().UpdateStage(ctx, st); err != nil {
		return domain.Stage{}, notFound(err)
	}

	invalidateDashboard(ctx, s.Cache, a.CompanyID)
	return st, nil
}

// Reorder assigns positions 1..n in the order of stageIDs, which must list
// every stage of the company exactly once.
func (s *StageService) Reorder(ctx context.Context, a domain.Actor, stageIDs []string) ([]domain.Stage, error) {
	if err := authorize(a, domain.ActionManageStages); err != nil {
		return nil, err
	}

	var out []domain.Stage
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		stages, err := tx.Stages().ListStages(ctx, a.CompanyID)
		if err != nil {
			return err
		}
		byID := make(map[string]domain.Stage, len(stages))
		for _, st := range stages {
			byID[st.ID] = st
		}

		if len(stageIDs) != len(stages) {
			return fmt.Errorf("%w: expected %d stage ids, got %d", ErrInvalidInput, len(stages), len(stageIDs))
		}
		seen := make(map[string]bool, len(stageIDs))
		for _, id := range stageIDs {
			if _, ok := byID[id]; !ok || seen[id] {
				return fmt.Errorf("%w: stage ids must list every stage once", ErrInvalidInput)
			}
			seen[id] = true
		}

		out = make([]domain.Stage, 0, len(stageIDs))
		for i, id := range stageIDs {
			st := byID[id]
			st.Position = i + 1
			if err := tx.Stages().SetPosition(ctx, a.CompanyID, id, st.Position); err != nil {
				return err
			}
			out = append(out, st)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateDashboard(ctx, s.Cache, a.CompanyID)
	return out, nil
}

// Delete removes an empty stage. Stages that still hold leads are rejected
// with ErrStageNotEmpty.
func (s *StageService) Delete(ctx context.Context, a domain.Actor, id string) error {
	if err := authorize(a, domain.ActionManageStages); err != nil {
		return err
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Stages().GetStage(ctx, a.CompanyID, id); err != nil {
			return notFound(err)
		}
		n, err := tx.Leads().CountInStage(ctx, a.CompanyID, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrStageNotEmpty
		}
		err = tx.Stages().DeleteStage(ctx, a.CompanyID, id)
		if errors.Is(err, store.ErrConflict) {
			return ErrStageNotEmpty
		}
		return notFound(err)
	})
	if err != nil {
		return err
	}

	invalidateDashboard(ctx, s.Cache, a.CompanyID)
	return nil
}
