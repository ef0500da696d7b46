package main

import (
	"encoding/json"
	"fmt"

	"github.com/qapish/qapish/internal/cli"
	"github.com/spf13/cobra"
)

func packagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packages",
		Short: "List the active catalog",
		Long: `Print every active package with its price range, the same listing
GET /api/packages returns.`,
		RunE: runPackages,
	}

	cmd.Flags().Bool("json", false, "Print the listing as JSON")

	return cmd
}

func runPackages(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	asJSON, _ := cmd.Flags().GetBool("json")

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	source, cleanup, err := buildSource(ctx, settings)
	if err != nil {
		return err
	}
	defer cleanup()

	pkgs, err := source.Packages(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(pkgs)
	}

	if len(pkgs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No active packages. Load some with: qapish seed <file>"))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle("Catalog"))
	fmt.Fprintln(cmd.OutOrStdout(), cli.PackagesTable(pkgs))
	return nil
}
