package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newCleanCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove downloaded artifacts and reset the cache index",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			size, _ := e.index.Size()

			if err := e.index.Clear(); err != nil {
				return fmt.Errorf("failed to clear cache index: %w", err)
			}
			if err := os.RemoveAll(e.cfg.LibrariesDir()); err != nil {
				return err
			}
			// Leftovers from launches that never got to clean up.
			os.RemoveAll(e.cfg.NativesDir())

			if all {
				if err := os.RemoveAll(e.cfg.VersionsDir()); err != nil {
					return err
				}
			}

			fmt.Printf("%s Cache cleared (%s freed)\n", green("✓"), humanize.Bytes(uint64(size)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Also remove cached version descriptors and the version list")
	return cmd
}
