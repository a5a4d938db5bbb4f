package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mangolauncher/mango/internal/manifest"
)

func newVersionsCmd() *cobra.Command {
	var limit int
	var snapshots bool
	var force bool

	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List available game versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			ctx := cmd.Context()

			policy := manifest.UseCacheIfValid
			if force {
				policy = manifest.ForceRefresh
			}

			stop := withSpinner(ctx, "Fetching version list...")
			catalog, degraded, err := e.resolver.Catalog(ctx, policy)
			stop()
			if err != nil {
				return err
			}
			if degraded {
				fmt.Printf("%s offline, using cached version list\n\n", yellow("!"))
			}

			recent := manifest.LoadHistory(e.cfg.VersionsDir()).RecentVersions()
			if len(recent) > 0 {
				fmt.Println("Recently launched:")
				for _, id := range recent {
					fmt.Printf("  %s %s\n", dim("•"), id)
				}
				fmt.Println()
			}

			fmt.Printf("Latest release: %s\n", bold(catalog.Latest.Release))
			if snapshots {
				fmt.Printf("Latest snapshot: %s\n", bold(catalog.Latest.Snapshot))
			}
			fmt.Println()

			shown := 0
			for _, v := range catalog.Versions {
				if !snapshots && v.Type != "release" {
					continue
				}
				if shown >= limit {
					break
				}

				line := fmt.Sprintf(" %s", bold(v.ID))
				if v.Type != "release" {
					line += fmt.Sprintf("  %s", dim(v.Type))
				}
				fmt.Println(line)
				shown++
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 15, "Maximum number of versions to show")
	cmd.Flags().BoolVar(&snapshots, "snapshots", false, "Include snapshot versions")
	cmd.Flags().BoolVar(&force, "refresh", false, "Re-fetch the version list")
	return cmd
}
