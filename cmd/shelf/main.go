// Package main provides the shelf CLI, a typed record store over dynamically
// defined asset types.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "shelf:", err)
		if isUserError(err) {
			os.Exit(exitUserError)
		}
		os.Exit(exitSysError)
	}
}

// isUserError classifies errors caused by bad input rather than a failing
// system, for exit-code selection.
func isUserError(err error) bool {
	for _, target := range []error{
		types.ErrInvalidArgument,
		types.ErrAlreadyExists,
		types.ErrTypeNotFound,
		types.ErrSuperTypeNotFound,
		types.ErrMissingID,
		types.ErrMissingRequiredField,
		types.ErrColumnCountChanged,
		types.ErrConflict,
		types.ErrInvalidIdent,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
