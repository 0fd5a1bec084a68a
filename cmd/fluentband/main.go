package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0 // Command completed
	ExitPartial = 1 // Pipeline ran, some tasks still incomplete
	ExitError   = 2 // Configuration or runtime error
)

// PartialContentError indicates the pipeline ran to completion but one or
// more tasks still lack content.
type PartialContentError struct {
	Message string
}

func (e *PartialContentError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var partialErr *PartialContentError
		if errors.As(err, &partialErr) {
			os.Exit(ExitPartial)
		}
		os.Exit(ExitError)
	}
}
