package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/apod/internal/logger"
	"github.com/glorpus-work/apod/pkg/fsutil"
	"github.com/glorpus-work/apod/pkg/hooks"
)

// NewHooksCmd creates the hooks command with subcommands.
func NewHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Work with hook scripts",
		Long:  "Create and check the Tengo scripts run after a download or for unsupported media",
	}

	cmd.AddCommand(
		newHooksTemplateCmd(),
		newHooksCheckCmd(),
	)

	return cmd
}

func newHooksTemplateCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:       "template TYPE",
		Short:     "Print a template for a hook script",
		Args:      cobra.ExactArgs(1),
		ValidArgs: hookTypeNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			hookType := hooks.HookType(args[0])
			if !hookType.Valid() {
				return hooks.ErrUnsupportedHookType(args[0])
			}
			tmpl := hooks.HookTemplate(hookType)
			if output == "" {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), tmpl)
				return nil
			}
			if err := fsutil.EnsureFileDir(output); err != nil {
				return err
			}
			if err := os.WriteFile(output, []byte(tmpl), fsutil.FileModeDefault); err != nil {
				return fmt.Errorf("failed to write template: %w", err)
			}
			logger.Success("Hook template written", logger.Fields{"path": output})
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the template to a file instead of stdout")

	return cmd
}

func newHooksCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Compile the configured hook scripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			executor, err := loadScripts(cfg.Hooks)
			if err != nil {
				return err
			}
			for _, hookType := range hooks.HookTypes {
				status := "not configured"
				if executor != nil && executor.HasScript(hookType) {
					status = "ok"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", hookType, status)
			}
			return nil
		},
	}
}

func hookTypeNames() []string {
	names := make([]string, 0, len(hooks.HookTypes))
	for _, t := range hooks.HookTypes {
		names = append(names, string(t))
	}
	return names
}
