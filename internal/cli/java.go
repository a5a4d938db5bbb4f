package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newJavaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "java",
		Short: "Manage Java runtimes",
	}
	cmd.AddCommand(newJavaListCmd(), newJavaEnsureCmd())
	return cmd
}

func newJavaListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List usable Java installations",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			stop := withSpinner(cmd.Context(), "Probing Java installations...")
			found := e.javas.Discover(cmd.Context())
			stop()

			if len(found) == 0 {
				fmt.Printf("\n%s No Java installations found\n", dim("○"))
				return nil
			}

			for _, inst := range found {
				fmt.Printf(" %s %s  %s  %s\n",
					bold(fmt.Sprintf("Java %d", inst.Major)),
					dim(fmt.Sprintf("(%s)", inst.Vendor)),
					cyan(string(inst.Source)),
					dim(inst.Path))
			}

			return nil
		},
	}
}

func newJavaEnsureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure <major>",
		Short: "Make sure a Java major version is available, provisioning it if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			major, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid major version %q", args[0])
			}

			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			stop := withSpinner(cmd.Context(), fmt.Sprintf("Ensuring Java %d...", major))
			inst, err := e.javas.Ensure(cmd.Context(), major)
			stop()
			if err != nil {
				return err
			}

			fmt.Printf("%s %s %s %s\n", green("✓"),
				bold(fmt.Sprintf("Java %d", inst.Major)),
				dim(fmt.Sprintf("(%s, %s)", inst.Vendor, inst.Source)),
				dim(inst.Path))
			return nil
		},
	}
}
