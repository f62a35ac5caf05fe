package cli

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/glorpus-work/apod/internal/logger"
	"github.com/glorpus-work/apod/pkg/archive"
	"github.com/glorpus-work/apod/pkg/cache"
)

// NewCacheCmd creates the cache command with subcommands
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the artifact cache",
		Long:  "Clean, show information about, export and import the cached definitions and pictures",
	}

	cmd.AddCommand(
		newCacheCleanCmd(),
		newCacheInfoCmd(),
		newCacheDirCmd(),
		newCacheExportCmd(),
		newCacheImportCmd(),
	)

	return cmd
}

func newCacheCleanCmd() *cobra.Command {
	var opts cache.CleanOptions

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the cache",
		Long:  "Remove cached files to free up disk space. Without flags everything is removed.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheClean(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "Clean all cached files")
	cmd.Flags().BoolVar(&opts.Definitions, "definitions", false, "Clean only definitions")
	cmd.Flags().BoolVar(&opts.Media, "media", false, "Clean only downloaded media")

	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Long:  "Display the number and size of cached definitions and media",
		RunE:  runCacheInfo,
	}
}

func newCacheDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dir",
		Short: "Show cache directory path",
		Long:  "Display the path to the cache directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), store.Directory())
			return nil
		},
	}
}

func newCacheExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export ARCHIVE",
		Short: "Export the cache to a tar.gz archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			target, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("invalid archive path: %w", err)
			}
			n, err := archive.NewManager().Create(cmd.Context(), store.Directory(), target)
			if err != nil {
				return err
			}
			logger.Success("Cache exported", logger.Fields{"archive": target, "files": n})
			return nil
		},
	}
}

func newCacheImportCmd() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "import ARCHIVE",
		Short: "Import cached artifacts from a tar.gz archive",
		Long:  "Add the definitions and media of an exported archive to the cache. Existing files are kept unless --overwrite is set.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			result, err := archive.NewManager().ExtractAll(cmd.Context(), args[0], store.Directory(), overwrite)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d files (%d skipped, %d invalid)\n",
				result.Imported, result.Skipped, result.Invalid)
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace files that are already cached")

	return cmd
}

func runCacheClean(cmd *cobra.Command, opts cache.CleanOptions) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	result, err := store.Clean(opts)
	if err != nil {
		return err
	}

	if result.DefinitionFreed > 0 {
		logger.Info("Cleaned definitions", logger.Fields{"size": humanize.Bytes(uint64(result.DefinitionFreed))})
	}
	if result.MediaFreed > 0 {
		logger.Info("Cleaned media", logger.Fields{"size": humanize.Bytes(uint64(result.MediaFreed))})
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d files, freed %s\n",
		result.FilesRemoved, humanize.Bytes(uint64(result.TotalFreed)))
	return nil
}

func runCacheInfo(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	info, err := store.Info()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Cache Directory: %s\n", info.Directory)
	_, _ = fmt.Fprintf(out, "Total Size: %s\n", humanize.Bytes(uint64(info.TotalSize)))
	_, _ = fmt.Fprintf(out, "Definitions: %s (%d files)\n", humanize.Bytes(uint64(info.DefinitionSize)), info.DefinitionFiles)
	_, _ = fmt.Fprintf(out, "Media: %s (%d files)\n", humanize.Bytes(uint64(info.MediaSize)), info.MediaFiles)
	return nil
}

func openStore() (*cache.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cache.NewStore(cfg.GetCacheDir()), nil
}
