package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/glorpus-work/apod/internal/logger"
	"github.com/glorpus-work/apod/pkg/download"
	"github.com/glorpus-work/apod/pkg/model"
	"github.com/glorpus-work/apod/pkg/orchestrator"
)

// NewGetCmd creates the get command.
func NewGetCmd() *cobra.Command {
	var (
		date  string
		quiet bool
	)

	cmd := &cobra.Command{
		Use:   "get [DATE]",
		Short: "Fetch the astronomy picture of a day",
		Long: `Load the definition of a day and download its picture into the cache.
DATE is YYYY-MM-DD and defaults to today (UTC). Cached artifacts are reused.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				date = args[0]
			}
			return runGet(cmd, date, quiet)
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Date to fetch (YYYY-MM-DD)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print download progress")

	return cmd
}

func runGet(cmd *cobra.Command, dateArg string, quiet bool) error {
	date, err := parseDateArg(dateArg)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.flushMetrics()

	var progress download.ProgressFunc
	if !quiet {
		progress = newProgressPrinter(cmd.ErrOrStderr(), "Downloading "+date.String())
	}

	pic, err := p.orchestrator.GetPicture(cmd.Context(), date, progress)
	out := cmd.OutOrStdout()
	outcome := orchestrator.Classify(err)

	switch outcome.Kind {
	case orchestrator.OutcomeSuccess:
		printDefinition(out, pic.Definition, pic.MediaPath)
		return nil
	case orchestrator.OutcomeUnsupported:
		printDefinition(out, pic.Definition, "")
		_, _ = fmt.Fprintf(out, "\n%s: %s\n", outcome.Title, outcome.Detail)
		logger.Info("Date recorded as unsupported", logger.Fields{"date": date.String()})
		return nil
	default:
		return fmt.Errorf("%s: %w", outcome.Title, err)
	}
}

func parseDateArg(s string) (model.DateKey, error) {
	if s == "" {
		return model.Today(), nil
	}
	return model.ParseDateKey(s)
}

func printDefinition(w io.Writer, def *model.Definition, mediaPath string) {
	if def == nil {
		return
	}
	_, _ = fmt.Fprintf(w, "Date:        %s\n", def.Date)
	_, _ = fmt.Fprintf(w, "Title:       %s\n", def.Title)
	if def.Copyright != "" {
		_, _ = fmt.Fprintf(w, "Copyright:   %s\n", def.Copyright)
	}
	_, _ = fmt.Fprintf(w, "Media type:  %s\n", def.MediaType)
	if mediaPath != "" {
		size := ""
		if info, err := os.Stat(mediaPath); err == nil {
			size = " (" + humanize.Bytes(uint64(info.Size())) + ")"
		}
		_, _ = fmt.Fprintf(w, "Media:       %s%s\n", mediaPath, size)
	}
	if def.Explanation != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", def.Explanation)
	}
}
