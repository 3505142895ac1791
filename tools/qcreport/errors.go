package qcreport

import (
	"fmt"
	"strings"
)

// UnknownProcessorError is returned when a record's processor tag has no renderer
type UnknownProcessorError struct {
	Processor string
	Known     []string
}

func (e *UnknownProcessorError) Error() string {
	return fmt.Sprintf("no renderer for type %s (known: %s)", e.Processor, strings.Join(e.Known, ", "))
}

// RecordError ties a failure to the record that caused it
type RecordError struct {
	Index int
	Name  string
	Err   error
}

func (e *RecordError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("report #%d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("report #%d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
