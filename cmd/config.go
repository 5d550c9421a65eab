package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"knipclean/internal/config"
	"knipclean/internal/remedy"
)

var (
	createConfig bool
	openConfig   bool
)

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config [path]",
		Short: "Show, create or open the knip configuration",
		Long: `Print the knip configuration file of the project that contains path.
With --create a default knip.config.ts is written when none exists; an
existing file is never overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConfig,
	}

	cmd.Flags().BoolVar(&createConfig, "create", false, "Write a default configuration if none exists")
	cmd.Flags().BoolVar(&openConfig, "open", false, "Open the configuration with the system viewer")
	return cmd
}

func runConfig(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd.Context(), "config", args)
	if err != nil {
		return err
	}
	defer e.Close()

	resolver := config.NewResolver(e.logger)
	path, err := resolver.Resolve(e.root)
	switch {
	case errors.Is(err, config.ErrNotFound) && createConfig:
		path, err = resolver.Synthesize(e.root)
		if err != nil {
			return err
		}
		printSuccess("Created " + path)
	case errors.Is(err, config.ErrNotFound):
		printWarning(fmt.Sprintf("No knip configuration found in %s. Run with --create to write one.", e.root))
		return nil
	case err != nil:
		return err
	}

	if openConfig {
		return remedy.SystemViewer{Opener: e.settings.Opener}.Open(path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "# %s\n", path)
	fmt.Print(string(content))
	return nil
}
