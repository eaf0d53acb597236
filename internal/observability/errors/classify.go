// Package errors derives low-cardinality labels from Go errors for metric
// tagging.
package errors

import (
	goerrors "errors"
	"fmt"
	"strings"
)

// Classify reduces an error to a stable type label such as "net_opererror" or
// "errors_errorstring". The error chain is unwrapped to its root cause first;
// wrapper types carry no signal of their own.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	for {
		cause := goerrors.Unwrap(err)
		if cause == nil {
			break
		}
		err = cause
	}

	name := fmt.Sprintf("%T", err)
	name = strings.TrimLeft(name, "*")
	name = strings.ReplaceAll(name, ".", "_")
	name = strings.ToLower(name)
	if name == "" {
		return "unknown"
	}
	return name
}
