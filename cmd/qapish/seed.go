package main

import (
	"fmt"

	"github.com/qapish/qapish/internal/catalog"
	"github.com/qapish/qapish/internal/cli"
	"github.com/qapish/qapish/internal/seed"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Load packages from a YAML catalog file",
		Long: `Insert or update packages, depreciation rules, provenance options and
images from a YAML catalog file. A package whose SKU already exists is
updated in place; its options and images are replaced.

See catalog.example.yaml for the file format.`,
		Args: cobra.ExactArgs(1),
		RunE: runSeed,
	}

	cmd.Flags().Bool("dry-run", false, "Validate the file without writing")

	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	file, err := seed.LoadFile(args[0])
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s is valid: %d packages", args[0], len(file.Packages))))
		return nil
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	bar := cli.NewProgress(cmd.ErrOrStderr(), len(file.Packages), "Seeding packages...")
	applied, err := seed.Apply(ctx, store, file, func() { cli.Step(bar) })
	if err != nil {
		return fmt.Errorf("seeded %d of %d packages: %w", applied, len(file.Packages), err)
	}

	if settings.RedisURL != "" {
		invalidateListing(cmd, settings.RedisURL)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Seeded %d packages", applied)))
	return nil
}

// invalidateListing drops the cached listing so a running server sees the
// new catalog before the TTL runs out.
func invalidateListing(cmd *cobra.Command, redisURL string) {
	ctx := cmd.Context()
	cache, err := catalog.NewRedisCache(ctx, catalog.RedisConfig{URL: redisURL})
	if err != nil {
		cmd.PrintErrln(cli.FormatWarning("Cached listing not cleared: " + err.Error()))
		return
	}
	defer func() { _ = cache.Close() }()

	if err := cache.Delete(ctx, catalog.PackagesKey); err != nil {
		cmd.PrintErrln(cli.FormatWarning("Cached listing not cleared: " + err.Error()))
	}
}
