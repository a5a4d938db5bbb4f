package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage launch profiles",
	}
	cmd.AddCommand(newProfileListCmd(), newProfileCreateCmd(), newProfileDeleteCmd())
	return cmd
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			profiles, err := e.profiles.List()
			if err != nil {
				return err
			}

			for _, p := range profiles {
				line := fmt.Sprintf(" %s  %s  %s",
					bold(p.Name),
					cyan(p.Username),
					dim(fmt.Sprintf("%d-%d MB", p.MemoryMinMB, p.MemoryMaxMB)))
				if !p.LastUsed.IsZero() {
					line += fmt.Sprintf("  %s", dim("last used "+p.LastUsed.Format("2006-01-02")))
				}
				fmt.Println(line)
			}

			return nil
		},
	}
}

func newProfileCreateCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			p, err := e.profiles.Create(args[0], username)
			if err != nil {
				return err
			}

			fmt.Printf("%s %s %s\n", green("✓"), bold(p.Name), dim("created"))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Player name for the profile")
	return cmd
}

func newProfileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.profiles.Delete(args[0]); err != nil {
				return err
			}

			fmt.Printf("%s %s %s\n", green("✓"), bold(args[0]), dim("deleted"))
			return nil
		},
	}
}
