// Package types contains the read models returned by the service and
// serialized by the HTTP API and CLI.
package types

import (
	"github.com/okian/admitcalc/internal/domain/model"
	"github.com/okian/admitcalc/internal/domain/scoring"
)

// Result is the weighted total of the active score set against the selected track.
type Result struct {
	Selection       model.Selection    `json:"selection"`
	State           string             `json:"state"`
	InstitutionName string             `json:"institutionName,omitempty"`
	ProgramName     string             `json:"programName,omitempty"`
	TrackName       string             `json:"trackName,omitempty"`
	ScoreSetID      string             `json:"scoreSetId"`
	ScoreSetName    string             `json:"scoreSetName"`
	Excluded        []string           `json:"excluded"`
	Total           float64            `json:"total"`
	Breakdown       *scoring.Breakdown `json:"breakdown,omitempty"`
}

// ScoreSets lists every score set and names the active one.
type ScoreSets struct {
	ActiveID string           `json:"activeId"`
	Sets     []model.ScoreSet `json:"sets"`
}

// ImportReport describes the outcome of an import.
type ImportReport struct {
	Added     []string `json:"added"`
	Discarded int      `json:"discarded"`
}
