package orchestrator

import (
	"errors"

	apoderrors "github.com/glorpus-work/apod/pkg/errors"
)

// OutcomeKind is the presentation category of a pipeline result.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeCancelled
	OutcomeUnsupported
	OutcomeFailed
)

// Outcome is what the presentation layer shows for a result.
type Outcome struct {
	Kind   OutcomeKind
	Title  string
	Detail string
}

// Classify maps a pipeline error to its presentation outcome. Unsupported
// outcomes are expected to be recorded, not retried.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return Outcome{Kind: OutcomeSuccess, Title: "Done"}
	case errors.Is(err, apoderrors.ErrCancelled):
		return Outcome{
			Kind:   OutcomeCancelled,
			Title:  "Operation cancelled",
			Detail: "The operation was cancelled as requested.",
		}
	case errors.Is(err, apoderrors.ErrUnsupportedMediaKind):
		detail := "This day contains a media format that is not supported. Only images are loaded."
		var kindErr *apoderrors.UnsupportedMediaKindError
		if errors.As(err, &kindErr) && kindErr.Kind != "" {
			detail += " (media type: " + kindErr.Kind + ")"
		}
		return Outcome{
			Kind:   OutcomeUnsupported,
			Title:  "Not supported media format",
			Detail: detail,
		}
	default:
		return Outcome{
			Kind:   OutcomeFailed,
			Title:  "Something went wrong",
			Detail: err.Error(),
		}
	}
}
