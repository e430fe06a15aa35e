package render

import (
	"errors"
	"fmt"
)

// ErrInvalidContainer is returned (wrapped) whenever the input bytes fail
// xlzip's zip-signature check. Callers distinguish it from a render failure
// with errors.Is.
var ErrInvalidContainer = errors.New("xlstpl: invalid xlsx container")

// TemplateRenderError reports a failure at a named stage of the pipeline
// (e.g. "sharedstrings", "sheet 3", "sheetops", "repack", "json").
// Callers unwrap it with errors.As to recover the underlying cause.
type TemplateRenderError struct {
	Stage string
	Err   error
}

func (e *TemplateRenderError) Error() string {
	return fmt.Sprintf("xlstpl: %s: %v", e.Stage, e.Err)
}

func (e *TemplateRenderError) Unwrap() error {
	return e.Err
}

func renderErr(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &TemplateRenderError{Stage: stage, Err: err}
}
