package errors_test

import (
	"fmt"

	"github.com/agentstation/liftmap/pkg/errors"
)

// Example demonstrates basic error creation and checking.
func Example() {
	err := &errors.NotFoundError{
		Resource: "exercise",
		ID:       "goblet-squat",
	}

	if errors.IsNotFound(err) {
		fmt.Println("Resource not found")
	}

	// Output: Resource not found
}

// Example_kindOf demonstrates classifying pipeline failures.
func Example_kindOf() {
	err := errors.NewSourceUnavailableError([]errors.SourceAttempt{
		{Source: "primary", Err: errors.New("timeout")},
	})

	fmt.Println(errors.KindOf(err))

	// Output: source_unavailable
}
