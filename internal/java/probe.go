package java

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

var versionRe = regexp.MustCompile(`version "([^"]+)"`)

// ParseMajor extracts the major version from a `java -version` banner.
// Legacy "1.8.0_392" style maps to 8, modern "17.0.9" to 17.
func ParseMajor(output string) (int, error) {
	m := versionRe.FindStringSubmatch(output)
	if m == nil {
		return 0, fmt.Errorf("could not parse java version from %q", firstLine(output))
	}

	ver := m[1]
	parts := strings.FieldsFunc(ver, func(r rune) bool { return r == '.' || r == '_' || r == '+' || r == '-' })
	if len(parts) == 0 {
		return 0, fmt.Errorf("could not parse java version %q", ver)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("could not parse java version %q", ver)
	}
	if major == 1 && len(parts) > 1 {
		// 1.x.y scheme used through Java 8.
		major, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, fmt.Errorf("could not parse java version %q", ver)
		}
	}

	return major, nil
}

// ParseVendor guesses the vendor label from the version banner.
func ParseVendor(output string) string {
	lower := strings.ToLower(output)

	switch {
	case strings.Contains(lower, "temurin"), strings.Contains(lower, "adoptium"):
		return "Eclipse Adoptium"
	case strings.Contains(lower, "corretto"):
		return "Amazon Corretto"
	case strings.Contains(lower, "zulu"):
		return "Azul Zulu"
	case strings.Contains(lower, "openjdk"):
		return "OpenJDK"
	case strings.Contains(lower, "java(tm)"), strings.Contains(lower, "oracle"):
		return "Oracle"
	default:
		return "Unknown"
	}
}

// probeExecutable runs the candidate with -version and parses the banner,
// which the JVM prints on stderr.
func probeExecutable(ctx context.Context, path string) (major int, vendor string, err error) {
	cmd := exec.CommandContext(ctx, path, "-version")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, "", fmt.Errorf("probing %s: %w", path, err)
	}

	major, err = ParseMajor(string(out))
	if err != nil {
		return 0, "", err
	}

	return major, ParseVendor(string(out)), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
