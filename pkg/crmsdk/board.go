package crmsdk

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	ErrUnknownLead  = errors.New("crmsdk: lead is not on the board")
	ErrUnknownStage = errors.New("crmsdk: stage is not on the board")
)

// BoardAPI is the subset of Session a Board needs.
type BoardAPI interface {
	Stages(ctx context.Context) ([]Stage, error)
	Leads(ctx context.Context, stageID string) ([]Lead, error)
	MoveLead(ctx context.Context, id, stageID string) (*Lead, error)
}

// Column is one stage of the board with its leads and their summed value.
type Column struct {
	Stage Stage
	Leads []Lead
	Total float64
}

// Board is a local copy of the active company's pipeline. Moves are applied
// locally before the server confirms them and rolled back if it refuses.
// It is safe for concurrent use.
type Board struct {
	api BoardAPI

	mu     sync.RWMutex
	stages []Stage
	leads  []Lead
}

func NewBoard(api BoardAPI) *Board {
	return &Board{api: api}
}

// Refresh replaces the local copy with the server's stages and leads.
func (b *Board) Refresh(ctx context.Context) error {
	stages, err := b.api.Stages(ctx)
	if err != nil {
		return fmt.Errorf("load stages: %w", err)
	}
	leads, err := b.api.Leads(ctx, "")
	if err != nil {
		return fmt.Errorf("load leads: %w", err)
	}

	slices.SortStableFunc(stages, func(a, b Stage) int { return a.Position - b.Position })

	b.mu.Lock()
	b.stages = stages
	b.leads = leads
	b.mu.Unlock()
	return nil
}

// MoveLead moves a lead to stageID. The local copy changes immediately; if
// the server rejects the move the previous stage is restored and the error
// returned. Either way the board is refreshed afterwards, and a refresh
// failure is joined to the move error. Moving a lead to its current stage,
// or to an empty stage id, does nothing.
func (b *Board) MoveLead(ctx context.Context, leadID, stageID string) error {
	if stageID == "" {
		return nil
	}

	b.mu.Lock()
	i := b.leadIndex(leadID)
	if i < 0 {
		b.mu.Unlock()
		return ErrUnknownLead
	}
	if !b.hasStage(stageID) {
		b.mu.Unlock()
		return ErrUnknownStage
	}
	prev := b.leads[i].StageID
	if prev != nil && *prev == stageID {
		b.mu.Unlock()
		return nil
	}
	next := &stageID
	b.leads[i].StageID = next
	b.mu.Unlock()

	_, err := b.api.MoveLead(ctx, leadID, stageID)
	if err != nil {
		b.restore(leadID, next, prev)
	}

	if rerr := b.Refresh(ctx); rerr != nil {
		return errors.Join(err, rerr)
	}
	return err
}

// restore puts prev back unless another move replaced next in the meantime.
func (b *Board) restore(leadID string, next, prev *string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i := b.leadIndex(leadID); i >= 0 && b.leads[i].StageID == next {
		b.leads[i].StageID = prev
	}
}

// Columns returns the stages in position order with their leads. Leads
// without a stage are not shown.
func (b *Board) Columns() []Column {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cols := make([]Column, len(b.stages))
	byStage := make(map[string]int, len(b.stages))
	for i, st := range b.stages {
		cols[i] = Column{Stage: st, Leads: []Lead{}}
		byStage[st.ID] = i
	}
	for _, l := range b.leads {
		if l.StageID == nil {
			continue
		}
		i, ok := byStage[*l.StageID]
		if !ok {
			continue
		}
		cols[i].Leads = append(cols[i].Leads, l)
		cols[i].Total += l.Value
	}
	return cols
}

// Lead returns the board's copy of a lead.
func (b *Board) Lead(id string) (Lead, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if i := b.leadIndex(id); i >= 0 {
		return b.leads[i], true
	}
	return Lead{}, false
}

func (b *Board) leadIndex(id string) int {
	return slices.IndexFunc(b.leads, func(l Lead) bool { return l.ID == id })
}

func (b *Board) hasStage(id string) bool {
	return slices.ContainsFunc(b.stages, func(s Stage) bool { return s.ID == id })
}
