package domain

import (
	"math"
	"sort"
)

// UnknownSource labels leads without a source in the dashboard.
const UnknownSource = "Não informado"

var (
	wonStageNames         = []string{"fechado", "negocio fechado"}
	negotiationStageNames = []string{"negociacao", "em negociacao"}
)

type Dashboard struct {
	LeadsTotal       int           `json:"leads_total"`
	WonValue         float64       `json:"won_value"`
	NegotiationValue float64       `json:"negotiation_value"`
	ConversionRate   float64       `json:"conversion_rate"`
	Funnel           []FunnelStage `json:"funnel"`
	Sources          []SourceCount `json:"sources"`
}

type FunnelStage struct {
	StageID string  `json:"stage_id"`
	Name    string  `json:"name"`
	Color   string  `json:"color"`
	Leads   int     `json:"leads"`
	Value   float64 `json:"value"`
}

type SourceCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ComputeDashboard derives the metrics from a company's stages (ordered by
// position) and leads.
//
// The won stage is the one named "Fechado" or "Negócio fechado", otherwise the
// last stage. The negotiation stage is "Negociação" or "Em negociação",
// otherwise the second to last. With fewer stages the fallback is empty.
func ComputeDashboard(stages []Stage, leads []Lead) Dashboard {
	won := classifyStage(stages, wonStageNames, 1)
	negotiation := classifyStage(stages, negotiationStageNames, 2)
	if negotiation == won {
		negotiation = ""
	}

	funnel := make([]FunnelStage, len(stages))
	index := make(map[string]int, len(stages))
	for i, s := range stages {
		funnel[i] = FunnelStage{StageID: s.ID, Name: s.Name, Color: s.Color}
		index[s.ID] = i
	}

	d := Dashboard{LeadsTotal: len(leads), Funnel: funnel}
	sources := map[string]int{}
	wonLeads := 0

	for _, l := range leads {
		src := l.Source
		if src == "" {
			src = UnknownSource
		}
		sources[src]++

		if l.StageID == nil {
			continue
		}
		if i, ok := index[*l.StageID]; ok {
			funnel[i].Leads++
			funnel[i].Value += l.Value
		}
		switch *l.StageID {
		case won:
			wonLeads++
			d.WonValue += l.Value
		case negotiation:
			d.NegotiationValue += l.Value
		}
	}

	if d.LeadsTotal > 0 {
		rate := float64(wonLeads) / float64(d.LeadsTotal) * 100
		d.ConversionRate = math.Round(rate*10) / 10
	}

	d.Sources = make([]SourceCount, 0, len(sources))
	for name, n := range sources {
		d.Sources = append(d.Sources, SourceCount{Name: name, Value: n})
	}
	sort.Slice(d.Sources, func(i, j int) bool {
		if d.Sources[i].Value != d.Sources[j].Value {
			return d.Sources[i].Value > d.Sources[j].Value
		}
		return d.Sources[i].Name < d.Sources[j].Name
	})
	return d
}

// classifyStage returns the id of the first stage whose folded name is in
// names, or the stage fromEnd positions from the end.
func classifyStage(stages []Stage, names []string, fromEnd int) string {
	for _, s := range stages {
		folded := FoldName(s.Name)
		for _, n := range names {
			if folded == n {
				return s.ID
			}
		}
	}
	if len(stages) >= fromEnd {
		return stages[len(stages)-fromEnd].ID
	}
	return ""
}
