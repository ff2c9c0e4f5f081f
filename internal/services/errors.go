package services

import (
	"errors"
	"fmt"
	"strings"

	"subtext/internal/catalog"
)

var (
	ErrConfiguration    = errors.New("configuration error")
	ErrTrackUnavailable = errors.New("track unavailable")
	ErrMalformedPayload = errors.New("malformed caption payload")
	ErrFetchFailure     = errors.New("caption fetch failed")
	ErrStorageFailure   = errors.New("subtitle storage failed")
	ErrIndexFailure     = errors.New("search indexing failed")
	ErrTimeout          = errors.New("timeout")
	ErrTransient        = errors.New("transient failure")
)

// Wrap builds an error message that includes pipeline context while tagging it
// with the provided marker for later status classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a pipeline error to the track status that should be
// persisted after the step fails. Index failures never undo a stored
// subtitle, so they park the track in skipped_index instead of failed.
func FailureStatus(err error) catalog.Status {
	if errors.Is(err, ErrIndexFailure) {
		return catalog.StatusSkippedIndex
	}
	return catalog.StatusFailed
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
