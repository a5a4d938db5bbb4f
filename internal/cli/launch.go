package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mangolauncher/mango/internal/auth"
	"github.com/mangolauncher/mango/internal/launch"
	"github.com/mangolauncher/mango/internal/manifest"
)

func newLaunchCmd() *cobra.Command {
	var profileName string
	var username string
	var force bool

	cmd := &cobra.Command{
		Use:   "launch [version]",
		Short: "Launch a game version",
		Args:  cobra.MaximumNArgs(1),
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

			catalog, degraded, err := e.resolver.Catalog(ctx, policy)
			if err != nil {
				return err
			}
			if degraded {
				fmt.Printf("%s offline, using cached version list\n", yellow("!"))
			}

			versionID := catalog.Latest.Release
			if len(args) == 1 {
				versionID = args[0]
			}

			prof, err := e.profiles.Get(profileName)
			if err != nil {
				return err
			}
			if username != "" {
				prof.Username = username
			}

			reporter := &downloadReporter{}
			e.resolver.Observer = reporter.observe

			stop := withSpinner(ctx, fmt.Sprintf("Resolving %s...", versionID))
			resolved, err := e.resolver.Resolve(ctx, versionID, policy)
			stop()
			if err != nil {
				return err
			}
			if tally := reporter.summary(); tally != "" {
				fmt.Printf("%s Downloaded %s\n", green("✓"), tally)
			}

			major := resolved.Descriptor.JavaVersion.MajorVersion
			if major == 0 {
				major = 8
			}
			stop = withSpinner(ctx, fmt.Sprintf("Preparing Java %d...", major))
			inst, err := e.javas.Ensure(ctx, major)
			stop()
			if err != nil {
				return err
			}

			identity, err := auth.NewOfflineProvider(prof.Username).CurrentIdentity()
			if err != nil {
				return err
			}

			manifest.LoadHistory(e.cfg.VersionsDir()).MarkUsed(versionID)
			e.profiles.Touch(prof.Name)

			sink, err := launch.NewFileSink(filepath.Join(e.cfg.RootDir, "logs", "latest.log"))
			if err != nil {
				return err
			}
			defer sink.Close()

			orch := launch.NewOrchestrator(e.cfg.NativesDir(), sink)
			session, err := orch.Launch(ctx, launch.Inputs{
				Resolved:  resolved,
				Java:      inst,
				Identity:  identity,
				Profile:   prof,
				GameDir:   e.cfg.GameDir(),
				AssetsDir: e.cfg.AssetsDir(),
			})
			if err != nil {
				return err
			}

			fmt.Printf("%s %s %s %s\n", green("✓"), bold(versionID),
				dim("pid"), dim(fmt.Sprint(session.PID())))

			code, err := session.Wait(ctx)
			if err != nil {
				return err
			}
			if code != 0 {
				return fmt.Errorf("game exited with code %d", code)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&profileName, "profile", "Default", "Profile to launch with")
	cmd.Flags().StringVar(&username, "username", "", "Override the profile's username")
	cmd.Flags().BoolVar(&force, "refresh", false, "Re-fetch the version list and re-verify artifacts")
	return cmd
}
