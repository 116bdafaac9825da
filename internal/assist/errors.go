package assist

import (
	"errors"
	"fmt"
)

var (
	// ErrFlowFailed is the generic failure every flow error wraps.
	ErrFlowFailed = errors.New("assist: flow failed")
	// ErrEmptyInput is returned before any provider call when the input is blank.
	ErrEmptyInput = errors.New("assist: input is empty")
)

// FlowError reports a failed flow. Callers present it generically; Err keeps
// the underlying cause for logs.
type FlowError struct {
	Flow string
	Err  error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s flow failed: %v", e.Flow, e.Err)
}

func (e *FlowError) Unwrap() []error {
	return []error{ErrFlowFailed, e.Err}
}

func flowErr(flow string, err error) error {
	return &FlowError{Flow: flow, Err: err}
}
