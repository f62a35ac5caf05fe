package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/glorpus-work/apod/pkg/download"
)

const progressBarWidth = 30

// newProgressPrinter renders download progress as a single updating line.
func newProgressPrinter(w io.Writer, label string) download.ProgressFunc {
	return func(percent int) {
		filled := percent * progressBarWidth / 100
		bar := strings.Repeat("=", filled) + strings.Repeat(" ", progressBarWidth-filled)
		_, _ = fmt.Fprintf(w, "\r%s [%s] %3d%%", label, bar, percent)
		if percent >= 100 {
			_, _ = fmt.Fprintln(w)
		}
	}
}
