package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tcnksm/go-latest"

	"knipclean/cmd"
	"knipclean/internal/model"
)

func checkUpdate(currentVer string) error {
	githubTag := &latest.GithubTag{
		Owner:      "knipclean",
		Repository: "knipclean",
	}

	res, err := latest.Check(githubTag, currentVer)
	if err != nil {
		return fmt.Errorf("check for updates: %w", err)
	}

	if res.Outdated {
		fmt.Printf("\n✨ A new version is available: %s (you have %s)\n", res.Current, currentVer)
		fmt.Println("👉 Download it from https://github.com/knipclean/knipclean/releases")
	} else {
		fmt.Printf("✅ You are using the latest version: %s\n", currentVer)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, model.ErrToolNotInstalled) || errors.Is(err, model.ErrNoWorkspace) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "knipclean [path]",
		Short: "Find and remove unused files, dependencies and exports with knip",
		Long: `knipclean runs knip (https://knip.dev) on a JavaScript or TypeScript
project and lets you review what it found: delete unused files, remove
unused dependencies from package.json and jump to unused exports.

Without a subcommand it runs "review" on the current directory.`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          cmd.RunReview,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	cmd.AddGlobalFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		cmd.NewReviewCmd(),
		cmd.NewScanCmd(),
		cmd.NewCleanCmd(),
		cmd.NewConfigCmd(),
		cmd.NewServeCmd(),
		cmd.NewHistoryCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	var check bool
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Printf("knipclean version %s\n", model.Version)
			if check {
				return checkUpdate(model.Version)
			}
			return nil
		},
	}
	versionCmd.Flags().BoolVar(&check, "check", false, "Check GitHub for a newer release")
	return versionCmd
}
