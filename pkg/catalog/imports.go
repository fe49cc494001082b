package catalog

import (
	"encoding/json"
	"errors"

	"github.com/ochoko/admin/pkg/sakeapi"
)

// Guard errors raised before any request is made.
var (
	ErrEmptySelection = errors.New("catalog: nothing selected")
	ErrNoFile         = errors.New("catalog: no file chosen")
	ErrNoPreview      = errors.New("catalog: import has not been previewed")
	ErrStalePreview   = errors.New("catalog: preview was replaced by a newer upload")
	ErrNotConfirmed   = errors.New("catalog: import not confirmed")
)

// MaxShownErrors is how many import errors are listed before the rest are
// collapsed into a count.
const MaxShownErrors = 10

// SummarizeErrors returns at most limit errors and the number left out.
func SummarizeErrors(errs []string, limit int) (shown []string, more int) {
	if limit < 0 {
		limit = 0
	}
	if len(errs) <= limit {
		return errs, 0
	}
	return errs[:limit], len(errs) - limit
}

// ImportPhase is the step of the import wizard.
type ImportPhase string

const (
	PhaseIdle      ImportPhase = "idle"
	PhasePreviewed ImportPhase = "previewed"
	PhaseCommitted ImportPhase = "committed"
	PhaseFailed    ImportPhase = "failed"
)

// ImportWizard is the per-session state of the CSV import flow.
//
// Generation increases with every new upload. A commit names the
// generation it was confirmed against, so a confirmation rendered for an
// older preview cannot commit a newer file.
type ImportWizard struct {
	Phase      ImportPhase      `json:"phase"`
	StagingKey string           `json:"staging_key,omitempty"`
	Filename   string           `json:"filename,omitempty"`
	Encoding   sakeapi.Encoding `json:"encoding,omitempty"`
	Generation int64            `json:"generation"`
}

// Previewed records a freshly staged upload and advances the generation.
func (w ImportWizard) Previewed(key, filename string, enc sakeapi.Encoding) ImportWizard {
	return ImportWizard{
		Phase:      PhasePreviewed,
		StagingKey: key,
		Filename:   filename,
		Encoding:   enc.OrDefault(),
		Generation: w.Generation + 1,
	}
}

// Failed records a failed step. The staged upload is kept so a preview
// can be retried against the same file.
func (w ImportWizard) Failed() ImportWizard {
	w.Phase = PhaseFailed
	return w
}

// Committed records a finished import. The staged upload is forgotten.
func (w ImportWizard) Committed() ImportWizard {
	return ImportWizard{Phase: PhaseCommitted, Generation: w.Generation}
}

// Reset returns the wizard to idle, keeping the generation counter.
func (w ImportWizard) Reset() ImportWizard {
	return ImportWizard{Phase: PhaseIdle, Generation: w.Generation}
}

// CanCommit checks that a commit confirmed against generation applies to
// the current upload.
func (w ImportWizard) CanCommit(generation int64, confirmed bool) error {
	if w.StagingKey == "" || w.Phase != PhasePreviewed {
		return ErrNoPreview
	}
	if generation != w.Generation {
		return ErrStalePreview
	}
	if !confirmed {
		return ErrNotConfirmed
	}
	return nil
}

// Encode serializes the wizard for session storage.
func (w ImportWizard) Encode() string {
	data, _ := json.Marshal(w)
	return string(data)
}

// DecodeImportWizard restores a wizard written by Encode. Missing or
// malformed input yields an idle wizard.
func DecodeImportWizard(s string) ImportWizard {
	w := ImportWizard{Phase: PhaseIdle}
	if s == "" {
		return w
	}
	if err := json.Unmarshal([]byte(s), &w); err != nil {
		return ImportWizard{Phase: PhaseIdle}
	}
	if w.Phase == "" {
		w.Phase = PhaseIdle
	}
	return w
}
