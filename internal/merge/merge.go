// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge flattens a trial's card, protocol, and results sources
// into the canonical row schema. Steps run in card, protocol, results
// order; a missing sub-source stops the remaining steps without failing
// the merge, so a trial with only card data still yields a sparser row.
package merge

import (
	"strings"

	"github.com/pdiddy/trial-harvester/internal/tree"
	"github.com/pdiddy/trial-harvester/pkg/types"
)

// TrialData is the transient aggregate for one trial, alive only for
// the duration of merging and raw archiving.
type TrialData struct {
	Card      types.TrialCard
	Protocols []*tree.Node
	Results   *tree.Node
}

// Aggregate assembles the card, protocols, and results into one tree so
// whole-trial traversals (phase collection) can see every source.
func (d TrialData) Aggregate() *tree.Node {
	agg := tree.Mapping()
	agg.Add("trial_id", tree.Scalar(d.Card.TrialID))
	agg.Add("card", cardNode(d.Card))
	protocols := tree.Sequence()
	protocols.Append(d.Protocols...)
	agg.Add("protocols", protocols)
	if d.Results != nil {
		agg.Add("results", d.Results)
	}
	return agg
}

func cardNode(c types.TrialCard) *tree.Node {
	card := tree.Mapping()
	card.Add("trial_id", tree.Scalar(c.TrialID))
	card.Add("full_title", tree.Scalar(c.FullTitle))
	card.Add("trial_results_link", tree.Scalar(c.ResultsLink))
	card.Add("population_age", tree.Scalar(c.PopulationAge))
	card.Add("gender", tree.Scalar(c.Gender))
	card.Add("start_date", tree.Scalar(c.StartDate))
	card.Add("sponsor_name", tree.Scalar(c.SponsorName))
	card.Add("medical_condition", tree.Scalar(c.MedicalCondition))
	card.Add("disease", tree.Scalar(c.Disease))
	refs := tree.Sequence()
	for _, ref := range c.Protocols {
		p := tree.Mapping()
		p.Add("country", tree.Scalar(ref.Country))
		p.Add("protocol_url", tree.Scalar(ref.URL))
		p.Add("protocol_status", tree.Scalar(ref.Status))
		refs.Append(p)
	}
	card.Add("trial_protocols", refs)
	return card
}

// CardRow derives the minimal row persisted before detail retrieval:
// card fields only, no status.
func CardRow(card types.TrialCard) types.FlatRow {
	return types.FlatRow{
		TrialID:    card.TrialID,
		Title:      card.FullTitle,
		URL:        card.ResultsLink,
		Age:        card.PopulationAge,
		Sex:        card.Gender,
		StartDate:  card.StartDate,
		Sponsor:    card.SponsorName,
		Conditions: card.MedicalCondition,
		Disease:    card.Disease,
		Protocols:  card.Protocols,
	}
}

// BuildRow produces the flat row for one trial. Later steps only
// overwrite earlier values where a later source is authoritative
// (protocol overwrites the card's title and status); results-derived
// fields have no earlier source and cannot conflict.
func BuildRow(d TrialData) types.FlatRow {
	row := CardRow(d.Card)
	if len(d.Card.Protocols) > 0 {
		row.Status = d.Card.Protocols[0].Status
	}

	if len(d.Protocols) == 0 {
		return row
	}
	applyProtocol(&row, d.Protocols[0])

	if d.Results == nil {
		return row
	}
	applyResults(&row, d)
	return row
}

// applyProtocol copies fields from the first protocol document. Each
// copy takes the first element when the source value is a sequence.
func applyProtocol(row *types.FlatRow, p *tree.Node) {
	if info, ok := tree.SafeGet(p, "A. Protocol Information"); ok {
		if title, ok := info.Get("Full title of the trial"); ok {
			row.Title = title.Text()
		}
	}

	if summary, ok := tree.SafeGet(p, "summary"); ok {
		if status, ok := summary.Get("Trial Status"); ok {
			row.Status = status.Text()
		}
		if studyType, ok := summary.Get("Clinical Trial Type"); ok {
			row.StudyType = studyType.Text()
		}
		if firstPosted, ok := summary.Get("Date on which this record was first entered in the EudraCT database"); ok {
			row.FirstPosted = firstPosted.Text()
		}
	}

	if sponsor, ok := tree.SafeGet(p, "B. Sponsor Information"); ok {
		if country, ok := sponsor.Get("Country"); ok {
			row.Locations = country.Text()
		}
		if status, ok := sponsor.Get("Status of the sponsor"); ok {
			row.FunderType = status.Text()
		}
	}
}

// applyResults copies fields from the current results version and
// collects phases across the whole aggregate. When no version key
// contains "current" the step is a silent no-op.
func applyResults(row *types.FlatRow, d TrialData) {
	current, ok := currentVersion(d.Results)
	if !ok {
		return
	}

	if endDate, ok := tree.SafeGet(current, "summary", "global_end_date"); ok {
		row.CompletionDate = endDate.Text()
	}
	if posted, ok := tree.SafeGet(current, "results_information", "This version publication date"); ok {
		row.LastUpdatePosted = posted.Text()
	}
	if posted, ok := tree.SafeGet(current, "results_information", "First version publication date"); ok {
		row.ResultsFirstPosted = posted.Text()
	}
	if date, ok := tree.FindFirst(current, "Primary completion date"); ok {
		row.PrimaryCompletionDate = date.Text()
	}
	if subjects, ok := tree.FindFirst(current, "Worldwide total number of subjects"); ok {
		row.Enrollment = subjects.Text()
	}

	row.Phases = collectPhases(d.Aggregate())
}

// currentVersion selects the first version entry, in document order,
// whose key contains the substring "current" (case-sensitive). Document
// order is what the register renders, newest first, so no further
// ordering is applied.
func currentVersion(results *tree.Node) (*tree.Node, bool) {
	for _, p := range results.Pairs() {
		if strings.Contains(p.Key, "current") {
			return p.Value, true
		}
	}
	return nil, false
}

// collectPhases gathers every "Phase" keyed field across the aggregate,
// de-duplicated by key keeping the first occurrence's value.
func collectPhases(agg *tree.Node) []types.Phase {
	matches := tree.CollectByPattern(agg, "Phase")
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var phases []types.Phase
	for _, m := range matches {
		if seen[m.Key] {
			continue
		}
		seen[m.Key] = true
		phases = append(phases, types.Phase{Label: m.Key, Value: m.Value.Text()})
	}
	return phases
}
