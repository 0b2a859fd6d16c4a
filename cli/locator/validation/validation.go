package validation

import (
	"fmt"
	"regexp"

	"github.com/daniil11ru/lastseen/cli/locator/errs"
)

// Default ceilings; the config may narrow them but the admission rules below
// are authoritative regardless of what the boundary layer already checked.
const (
	MaxIDLength  = 100
	MaxBatchSize = 100
	MaxListLimit = 1000
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ID checks a single identifier: non-empty, bounded length, restricted charset.
func ID(id string) error {
	if id == "" {
		return errs.New(errs.InvalidIdentifier, "identifier must not be empty")
	}
	if len(id) > MaxIDLength {
		return errs.Newf(errs.InvalidIdentifier, "identifier exceeds %d characters", MaxIDLength)
	}
	if !idPattern.MatchString(id) {
		return errs.Newf(errs.InvalidIdentifier, "identifier %q contains characters outside [A-Za-z0-9._-]", id)
	}
	return nil
}

// Batch checks an id collection against the given ceiling (0 means the
// default). Admission is all-or-nothing: a single invalid entry fails the
// whole batch, and every offender is reported.
func Batch(ids []string, maxSize int) error {
	if maxSize <= 0 {
		maxSize = MaxBatchSize
	}
	if len(ids) == 0 {
		return errs.New(errs.InvalidBatch, "batch must contain at least one identifier")
	}
	if len(ids) > maxSize {
		return errs.Newf(errs.InvalidBatch, "batch size %d exceeds the ceiling of %d", len(ids), maxSize)
	}

	var invalid []string
	for _, id := range ids {
		if err := ID(id); err != nil {
			invalid = append(invalid, fmt.Sprintf("%q", id))
		}
	}
	if len(invalid) > 0 {
		return errs.New(errs.InvalidBatch, "batch contains invalid identifiers").WithDetails(invalid...)
	}
	return nil
}

// Pagination checks listing parameters against the given limit ceiling
// (0 means the default). A zero limit means "not supplied" and is accepted;
// the orchestrator substitutes the ceiling.
func Pagination(limit, offset, maxLimit int) error {
	if maxLimit <= 0 {
		maxLimit = MaxListLimit
	}
	if limit < 0 || limit > maxLimit {
		return errs.Newf(errs.InvalidPagination, "limit must be between 1 and %d, or 0 for the default", maxLimit)
	}
	if offset < 0 {
		return errs.New(errs.InvalidPagination, "offset must not be negative")
	}
	return nil
}
