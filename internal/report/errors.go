package report

import (
	"errors"
	"fmt"

	"hosereport/internal/inspection"
)

// Input validation errors, detected before any rendering work.
var (
	ErrNoHeader     = errors.New("no inspection header provided")
	ErrNoItems      = errors.New("no items provided")
	ErrItemsNotList = inspection.ErrItemsNotList
)

// ItemError reports a failure while normalizing one item. Index is 1-based.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("error processing item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// PageError reports a failure while rendering or rasterizing one page.
// Page is 1-based.
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("error generating page %d: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// IsInputError reports whether err was caused by the caller's payload
// rather than by the rendering backend.
func IsInputError(err error) bool {
	var itemErr *ItemError
	return errors.Is(err, ErrNoHeader) ||
		errors.Is(err, ErrNoItems) ||
		errors.Is(err, ErrItemsNotList) ||
		errors.As(err, &itemErr)
}
