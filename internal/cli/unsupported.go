package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/apod/pkg/index"
)

// NewUnsupportedCmd creates the unsupported command.
func NewUnsupportedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unsupported",
		Short: "List cached days without a downloadable picture",
		Long:  "Scan the cached definitions and print the days whose media is not an image",
		Args:  cobra.NoArgs,
		RunE:  runUnsupported,
	}
}

func runUnsupported(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	for _, date := range index.Sorted(p.orchestrator.ScanUnsupportedDates()) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), date)
	}
	return nil
}
