// Package persistence encodes the calculator state into key-value records,
// migrates older record shapes forward and falls back to defaults when a
// record cannot be read.
package persistence

// Record names a persisted record. It labels metrics and log lines.
type Record string

// Persisted records.
const (
	RecordHierarchy Record = "hierarchy"
	RecordScoreSets Record = "score_sets"
	RecordActiveSet Record = "active_set"
	RecordSelection Record = "selection"
	RecordExcluded  Record = "excluded"
)

// Current record keys.
const (
	KeyHierarchy           = "kkc_universities_v2"
	KeyScoreSets           = "kkc_score_sets_v2"
	KeyActiveSet           = "kkc_active_set_v2"
	KeySelectedInstitution = "kkc_selected_univ_v2"
	KeySelectedProgram     = "kkc_selected_program_v2"
	KeySelectedTrack       = "kkc_selected_track_v2"
	KeyExcluded            = "kkc_excluded_subjects_v2"
)

// Keys written by earlier releases. They are read only when the current key is absent.
const (
	LegacyKeyHierarchy = "kkc_custom_univs_v1"
	LegacyKeyScores    = "kkc_scores_v1"
	LegacyKeySelected  = "kkc_selected_univ_v1"
	LegacyKeyExcluded  = "ignoreSubject"
)

// legacyNoExclusion is the legacy excluded-subject value meaning "nothing excluded".
const legacyNoExclusion = "none"

// Status reports how a record was loaded.
type Status int

const (
	// StatusMissing means no record was stored and the default was used.
	StatusMissing Status = iota
	// StatusCurrent means the record was stored in the current shape.
	StatusCurrent
	// StatusMigrated means an older shape was converted to the current one.
	StatusMigrated
	// StatusMalformed means the record could not be read and the default was used.
	StatusMalformed
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusCurrent:
		return "current"
	case StatusMigrated:
		return "migrated"
	case StatusMalformed:
		return "malformed"
	default:
		return "missing"
	}
}
