package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mangolauncher/mango/internal/cache"
	"github.com/mangolauncher/mango/internal/config"
	"github.com/mangolauncher/mango/internal/download"
	"github.com/mangolauncher/mango/internal/java"
	"github.com/mangolauncher/mango/internal/manifest"
	"github.com/mangolauncher/mango/internal/profile"
)

func Execute(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:   "mango",
		Short: "A fast Minecraft launcher",
	}
	rootCmd.AddCommand(
		newLaunchCmd(),
		newVersionsCmd(),
		newJavaCmd(),
		newProfileCmd(),
		newCleanCmd(),
		newVersionCmd(),
	)
	return rootCmd.ExecuteContext(ctx)
}

// env is the shared wiring every command starts from.
type env struct {
	cfg      *config.Config
	index    *cache.Index
	sched    *download.Scheduler
	resolver *manifest.Resolver
	javas    *java.Manager
	profiles *profile.Store
}

func newEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	index, err := cache.Open(cfg.CacheDBPath())
	if err != nil {
		return nil, err
	}

	sched := download.New(cfg.MaxParallel, cfg.AttemptTimeout)

	res := manifest.NewResolver(cfg.ManifestURL, cfg.VersionsDir(), cfg.LibrariesDir(),
		cfg.AssetsDir(), cfg.ManifestMaxAge, sched, index)

	profiles, err := profile.Open(cfg.ProfilesPath())
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:      cfg,
		index:    index,
		sched:    sched,
		resolver: res,
		javas:    java.NewManager(cfg.JavaDir(), cfg.JavaPath, cfg.ProvisionJava, sched),
		profiles: profiles,
	}, nil
}

func (e *env) close() {
	e.sched.Close()
	e.index.Close()
}
