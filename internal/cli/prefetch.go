package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	apoderrors "github.com/glorpus-work/apod/pkg/errors"
	"github.com/glorpus-work/apod/pkg/model"
	"github.com/glorpus-work/apod/pkg/orchestrator"
)

// NewPrefetchCmd creates the prefetch command.
func NewPrefetchCmd() *cobra.Command {
	var (
		days      int
		end       string
		withMedia bool
	)

	cmd := &cobra.Command{
		Use:   "prefetch",
		Short: "Fill the cache for a range of days",
		Long: `Load the definitions of the last --days days ending at --end (default today),
and their pictures with --media. Days are fetched in parallel, bounded by max_concurrent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrefetch(cmd, days, end, withMedia)
		},
	}

	cmd.Flags().IntVarP(&days, "days", "n", DefaultPrefetchDays, "Number of days to prefetch")
	cmd.Flags().StringVar(&end, "end", "", "Last day of the range (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&withMedia, "media", false, "Download the pictures as well")

	return cmd
}

func runPrefetch(cmd *cobra.Command, days int, endArg string, withMedia bool) error {
	if days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	end, err := parseDateArg(endArg)
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

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "DATE\tSTATUS\tTITLE")
	_, _ = fmt.Fprintln(tw, "----\t------\t-----")

	results := p.orchestrator.Prefetch(cmd.Context(), model.DateRange(end, days), orchestrator.PrefetchOptions{
		WithMedia: withMedia,
	})

	var failed, unsupported int
	for _, res := range results {
		outcome := orchestrator.Classify(res.Err)
		status := "ok"
		switch outcome.Kind {
		case orchestrator.OutcomeUnsupported:
			status = "unsupported"
			unsupported++
		case orchestrator.OutcomeCancelled:
			status = "cancelled"
			failed++
		case orchestrator.OutcomeFailed:
			status = "failed"
			failed++
		}
		title := ""
		if res.Definition != nil {
			title = truncate(res.Definition.Title, MaxTitleLength)
		} else if res.Err != nil {
			title = res.Err.Error()
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", res.Date, status, title)
	}
	_ = tw.Flush()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n%d fetched, %d unsupported, %d failed\n",
		len(results)-failed-unsupported, unsupported, failed)

	if err := cmd.Context().Err(); err != nil {
		return apoderrors.Cancelled(err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d days failed", failed, len(results))
	}
	return nil
}
