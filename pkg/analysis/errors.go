package analysis

import (
	"errors"
	"fmt"
)

// ShapeError reports an image whose raster shape the pipeline cannot
// analyze, such as a single-channel grayscale source where three
// channels are required. It is fatal for that image only; a batch run
// records it and moves on.
type ShapeError struct {
	// Path is the offending image file.
	Path string

	// Reason describes what was wrong with the raster.
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unsupported image shape in %s: %s", e.Path, e.Reason)
}

// IsShapeError reports whether err is (or wraps) a ShapeError.
func IsShapeError(err error) bool {
	var se *ShapeError
	return errors.As(err, &se)
}
