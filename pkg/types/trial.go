// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ProtocolRef is one entry of a card's protocol list: a trial has one
// protocol per participating country, each with its own document URL.
type ProtocolRef struct {
	// Country is the participating country code (e.g. "DE").
	Country string `json:"country" yaml:"country"`

	// URL is the protocol document URL; may be empty when the register
	// lists the country without a link.
	URL string `json:"protocol_url" yaml:"protocol_url"`

	// Status is the trial status in that country (e.g. "Ongoing").
	Status string `json:"protocol_status" yaml:"protocol_status"`
}

// TrialCard is the minimal record parsed from one search-result
// fragment. It is created once during page parsing and immutable
// thereafter.
type TrialCard struct {
	// TrialID is the register's unique trial identifier
	// (e.g. "2004-000015-25"). Non-empty and stable across runs.
	TrialID string `json:"trial_id" yaml:"trial_id"`

	// FullTitle is the full trial title from the card.
	FullTitle string `json:"full_title" yaml:"full_title"`

	// ResultsLink is the per-trial results document URL, empty when the
	// trial has no published results.
	ResultsLink string `json:"trial_results_link" yaml:"trial_results_link"`

	// PopulationAge describes the age bands under study.
	PopulationAge string `json:"population_age" yaml:"population_age"`

	// Gender describes the sexes under study.
	Gender string `json:"gender" yaml:"gender"`

	// StartDate is the trial start date as the card renders it.
	StartDate string `json:"start_date" yaml:"start_date"`

	// SponsorName is the sponsor from the card.
	SponsorName string `json:"sponsor_name" yaml:"sponsor_name"`

	// MedicalCondition is the condition under investigation.
	MedicalCondition string `json:"medical_condition" yaml:"medical_condition"`

	// Disease holds the card's disease classification codes.
	Disease string `json:"disease" yaml:"disease"`

	// Protocols lists the per-country protocol references in card order.
	Protocols []ProtocolRef `json:"trial_protocols" yaml:"trial_protocols"`
}

// Phase is one deduplicated phase entry collected from a trial's
// aggregate data (e.g. label "Human pharmacology (Phase I)", value
// "Yes").
type Phase struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Columns is the canonical flat schema, in output order. Every FlatRow
// carries all of these fields even when a value is absent.
var Columns = []string{
	"trial_id", "title", "url", "acronym", "status", "summary", "results",
	"conditions", "interventions", "primary_outcome", "secondary_outcome",
	"other_outcome", "sponsor", "collaborators", "sex", "age", "phases",
	"enrollment", "funder_type", "study_type", "study_design", "other_ids",
	"start_date", "primary_completion_date", "completion_date",
	"first_posted", "results_first_posted", "last_update_posted",
	"locations", "study_documents", "protocols",
}

// FlatRow is the canonical output record for one trial. Exactly one row
// exists per trial ID; scalar fields hold "" when the source omits
// them. Disease rides along with the canonical columns because the card
// step populates it.
type FlatRow struct {
	TrialID               string        `json:"trial_id" yaml:"trial_id"`
	Title                 string        `json:"title" yaml:"title"`
	URL                   string        `json:"url" yaml:"url"`
	Acronym               string        `json:"acronym" yaml:"acronym"`
	Status                string        `json:"status" yaml:"status"`
	Summary               string        `json:"summary" yaml:"summary"`
	Results               string        `json:"results" yaml:"results"`
	Conditions            string        `json:"conditions" yaml:"conditions"`
	Interventions         string        `json:"interventions" yaml:"interventions"`
	PrimaryOutcome        string        `json:"primary_outcome" yaml:"primary_outcome"`
	SecondaryOutcome      string        `json:"secondary_outcome" yaml:"secondary_outcome"`
	OtherOutcome          string        `json:"other_outcome" yaml:"other_outcome"`
	Sponsor               string        `json:"sponsor" yaml:"sponsor"`
	Collaborators         string        `json:"collaborators" yaml:"collaborators"`
	Sex                   string        `json:"sex" yaml:"sex"`
	Age                   string        `json:"age" yaml:"age"`
	Phases                []Phase       `json:"phases" yaml:"phases"`
	Enrollment            string        `json:"enrollment" yaml:"enrollment"`
	FunderType            string        `json:"funder_type" yaml:"funder_type"`
	StudyType             string        `json:"study_type" yaml:"study_type"`
	StudyDesign           string        `json:"study_design" yaml:"study_design"`
	OtherIDs              string        `json:"other_ids" yaml:"other_ids"`
	StartDate             string        `json:"start_date" yaml:"start_date"`
	PrimaryCompletionDate string        `json:"primary_completion_date" yaml:"primary_completion_date"`
	CompletionDate        string        `json:"completion_date" yaml:"completion_date"`
	FirstPosted           string        `json:"first_posted" yaml:"first_posted"`
	ResultsFirstPosted    string        `json:"results_first_posted" yaml:"results_first_posted"`
	LastUpdatePosted      string        `json:"last_update_posted" yaml:"last_update_posted"`
	Locations             string        `json:"locations" yaml:"locations"`
	StudyDocuments        string        `json:"study_documents" yaml:"study_documents"`
	Protocols             []ProtocolRef `json:"protocols" yaml:"protocols"`
	Disease               string        `json:"disease" yaml:"disease"`
}

// Map returns the row as a column-name-keyed view covering every
// canonical column plus disease. Storage and export iterate Columns
// against it so the schema stays fixed regardless of which merge steps
// ran.
func (r FlatRow) Map() map[string]any {
	return map[string]any{
		"trial_id":                r.TrialID,
		"title":                   r.Title,
		"url":                     r.URL,
		"acronym":                 r.Acronym,
		"status":                  r.Status,
		"summary":                 r.Summary,
		"results":                 r.Results,
		"conditions":              r.Conditions,
		"interventions":           r.Interventions,
		"primary_outcome":         r.PrimaryOutcome,
		"secondary_outcome":       r.SecondaryOutcome,
		"other_outcome":           r.OtherOutcome,
		"sponsor":                 r.Sponsor,
		"collaborators":           r.Collaborators,
		"sex":                     r.Sex,
		"age":                     r.Age,
		"phases":                  r.Phases,
		"enrollment":              r.Enrollment,
		"funder_type":             r.FunderType,
		"study_type":              r.StudyType,
		"study_design":            r.StudyDesign,
		"other_ids":               r.OtherIDs,
		"start_date":              r.StartDate,
		"primary_completion_date": r.PrimaryCompletionDate,
		"completion_date":         r.CompletionDate,
		"first_posted":            r.FirstPosted,
		"results_first_posted":    r.ResultsFirstPosted,
		"last_update_posted":      r.LastUpdatePosted,
		"locations":               r.Locations,
		"study_documents":         r.StudyDocuments,
		"protocols":               r.Protocols,
		"disease":                 r.Disease,
	}
}
