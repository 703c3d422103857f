package domain

import "encoding/json"

// ScreeningVerdict is the scorer's qualification decision. The pipeline only
// branches on Qualifies and reads Reason; every other field is carried
// through to the ledger untouched.
type ScreeningVerdict struct {
	Qualifies          bool     `json:"qualifies"`
	Reason             string   `json:"reason"`
	MissingKeywords    []string `json:"missing_keywords"`
	UsedExternalScorer bool     `json:"used_external_scorer"`
	FilePath           string   `json:"file_path"`

	// Details holds scorer-specific output such as an extracted candidate
	// profile. Opaque to the pipeline.
	Details json.RawMessage `json:"details,omitempty"`
}
