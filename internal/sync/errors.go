package sync

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUploadFailed     = errors.New("upload failed")
	ErrOperationTimeout = errors.New("operation did not finish in time")
	ErrStoreLocked      = errors.New("store locked by another docsync process")
)

// UploadFailure is one file that could not be uploaded.
type UploadFailure struct {
	Path     string
	Attempts int
	Err      error
}

// UploadError aggregates every failed upload of a run.
type UploadError struct {
	Failures []UploadFailure
}

func (e *UploadError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "upload failed for %d file(s)", len(e.Failures))
	for i, f := range e.Failures {
		if i == 0 {
			sb.WriteString(": ")
		} else {
			sb.WriteString("; ")
		}
		fmt.Fprintf(&sb, "%s: %v", f.Path, f.Err)
	}
	return sb.String()
}

func (e *UploadError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures)+1)
	errs = append(errs, ErrUploadFailed)
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
