//go:build !statsview

package statsview

import (
	"errors"
	"io"
)

// ErrUnavailable is returned by Launch when built without the statsview tag.
var ErrUnavailable = errors.New("statsview not available: build with -tags statsview")

// Launch always fails without the statsview build tag.
func Launch(_ string, _ io.Writer) error {
	return ErrUnavailable
}

// Available returns true if a statsview is available to launch.
func Available() bool {
	return false
}
