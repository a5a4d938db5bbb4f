// Package launch assembles the game command line and supervises the spawned
// process through its lifecycle.
package launch

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/mangolauncher/mango/internal/domain"
	"github.com/mangolauncher/mango/internal/manifest"
	"github.com/mangolauncher/mango/internal/version"
)

var placeholderRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// Spec is a fully resolved command line: every placeholder substituted,
// ready to spawn. Built once per launch, never mutated.
type Spec struct {
	JavaPath string
	Args     []string // JVM args, main class, then game args
	WorkDir  string
}

// Inputs collects everything the command line is assembled from.
type Inputs struct {
	Resolved   *manifest.Resolved
	Java       *domain.JavaInstallation
	Identity   domain.Identity
	Profile    *domain.Profile
	GameDir    string
	AssetsDir  string
	NativesDir string
}

// BuildSpec expands the descriptor's argument templates against the launch
// inputs. Any placeholder left unresolved aborts the build; a spec with a
// hole in it must never reach the JVM.
func (in Inputs) BuildSpec() (*Spec, error) {
	desc := in.Resolved.Descriptor

	// Libraries first, main jar last. Earlier classpath entries win on
	// duplicate classes and the libraries are authoritative.
	cp := make([]string, 0, len(in.Resolved.Libraries)+1)
	cp = append(cp, in.Resolved.Libraries...)
	if in.Resolved.MainJar != "" {
		cp = append(cp, in.Resolved.MainJar)
	}

	assetsIndex := desc.Assets
	if desc.AssetIndex != nil {
		assetsIndex = desc.AssetIndex.ID
	}

	subs := map[string]string{
		"auth_player_name":  in.Identity.Username,
		"version_name":      desc.ID,
		"game_directory":    in.GameDir,
		"assets_root":       in.AssetsDir,
		"assets_index_name": assetsIndex,
		"auth_uuid":         in.Identity.UUID,
		"auth_access_token": in.Identity.AccessToken,
		"user_type":         in.Identity.UserType,
		"version_type":      desc.Type,
		"natives_directory": in.NativesDir,
		"classpath":         strings.Join(cp, string(os.PathListSeparator)),
		"launcher_name":     "mango",
		"launcher_version":  version.Version,
		"clientid":          "",
		"auth_xuid":         "",
	}
	if in.Profile.ResolutionW > 0 && in.Profile.ResolutionH > 0 {
		subs["resolution_width"] = strconv.Itoa(in.Profile.ResolutionW)
		subs["resolution_height"] = strconv.Itoa(in.Profile.ResolutionH)
	}

	osName := manifest.CurrentOS()

	var args []string
	args = append(args, fmt.Sprintf("-Xms%dM", in.Profile.MemoryMinMB))
	args = append(args, fmt.Sprintf("-Xmx%dM", in.Profile.MemoryMaxMB))
	args = append(args, in.Profile.JavaArgs...)

	jvm, err := expandArguments(desc.Arguments.JVM, osName, subs)
	if err != nil {
		return nil, err
	}
	if len(jvm) == 0 {
		// Older descriptors carry no JVM template.
		jvm = []string{
			"-Djava.library.path=" + in.NativesDir,
			"-cp", subs["classpath"],
		}
	}
	args = append(args, jvm...)

	if desc.MainClass == "" {
		return nil, fmt.Errorf("descriptor %s has no main class", desc.ID)
	}
	args = append(args, desc.MainClass)

	game, err := expandArguments(desc.Arguments.Game, osName, subs)
	if err != nil {
		return nil, err
	}
	args = append(args, game...)
	args = append(args, in.Profile.GameArgs...)

	if in.Profile.Fullscreen {
		args = append(args, "--fullscreen")
	} else if in.Profile.ResolutionW > 0 && in.Profile.ResolutionH > 0 {
		if !containsArg(game, "--width") {
			args = append(args,
				"--width", subs["resolution_width"],
				"--height", subs["resolution_height"])
		}
	}

	return &Spec{JavaPath: in.Java.Path, Args: args, WorkDir: in.GameDir}, nil
}

// expandArguments flattens rule-guarded argument templates for the platform
// and substitutes every ${...} placeholder.
func expandArguments(tmpl []manifest.Argument, osName string, subs map[string]string) ([]string, error) {
	var out []string

	for _, arg := range tmpl {
		if !manifest.Allowed(arg.Rules, osName) {
			continue
		}

		for _, v := range arg.Values {
			expanded, err := substitute(v, subs)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded)
		}
	}

	return out, nil
}

func substitute(arg string, subs map[string]string) (string, error) {
	var missing string

	expanded := placeholderRe.ReplaceAllStringFunc(arg, func(m string) string {
		key := m[2 : len(m)-1]
		val, ok := subs[key]
		if !ok {
			if missing == "" {
				missing = m
			}
			return m
		}
		return val
	})

	if missing != "" {
		return "", &domain.ArgumentTemplateError{Argument: arg, Placeholder: missing}
	}

	return expanded, nil
}

func containsArg(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}
