package converter

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Inspect returns the number of pages in a PDF document. It never panics on
// malformed input.
func Inspect(data []byte) (pages int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = 0, fmt.Errorf("inspect pdf: %v", rec)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("inspect pdf: %w", err)
	}
	return r.NumPage(), nil
}
