package handlers

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"devlink.vn/backoffice/models"
)

// InvalidTransitionError reports a lifecycle action not permitted from the
// record's current status. Never retried automatically.
type InvalidTransitionError struct {
	RecordID uuid.UUID
	From     models.PaymentStatus
	Action   models.TransitionAction
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: action %q not allowed from status %q (record %s)",
		e.Action, e.From, e.RecordID)
}

// MissingEvidenceError reports that the document type required by a
// transition is not attached to the record.
type MissingEvidenceError struct {
	RecordID     uuid.UUID
	DocumentType models.DocumentType
}

func (e *MissingEvidenceError) Error() string {
	return fmt.Sprintf("missing evidence: no %q document attached to record %s",
		e.DocumentType, e.RecordID)
}

// ValidationError reports a required field missing or out of range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// UploadError reports that evidence persistence failed. The transition
// attempt is aborted entirely; the record keeps its prior status.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("evidence upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// DependencyError reports an unreachable collaborator. Contract-registry
// failures surface to the caller; notification failures are logged and
// swallowed instead of producing this.
type DependencyError struct {
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency %s unavailable: %v", e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// IsLifecycleError reports whether err belongs to the lifecycle error
// taxonomy, i.e. is a caller fault rather than an infrastructure failure.
func IsLifecycleError(err error) bool {
	var (
		it *InvalidTransitionError
		me *MissingEvidenceError
		ve *ValidationError
	)
	return errors.As(err, &it) || errors.As(err, &me) || errors.As(err, &ve)
}
