package manifest

import (
	"runtime"
	"strings"
)

// Rule is a platform predicate on a library or argument.
type Rule struct {
	Action string  `json:"action"`
	OS     *OSRule `json:"os,omitempty"`
}

type OSRule struct {
	Name string `json:"name,omitempty"`
	Arch string `json:"arch,omitempty"`
}

// CurrentOS maps runtime.GOOS onto the names the manifest format uses.
func CurrentOS() string {
	switch runtime.GOOS {
	case "darwin":
		return "osx"
	default:
		return runtime.GOOS
	}
}

func (r Rule) matches(osName string) bool {
	if r.OS == nil {
		return true
	}
	if r.OS.Name != "" && r.OS.Name != osName {
		return false
	}
	if r.OS.Arch != "" && !strings.Contains(runtime.GOARCH, strings.TrimPrefix(r.OS.Arch, "x")) {
		return false
	}
	return true
}

// Allowed evaluates a rule list for the given platform. No rules means the
// subject always applies; otherwise the last matching rule's action wins and
// the default is disallow.
func Allowed(rules []Rule, osName string) bool {
	if len(rules) == 0 {
		return true
	}

	allowed := false
	for _, rule := range rules {
		if rule.matches(osName) {
			allowed = rule.Action == "allow"
		}
	}

	return allowed
}

// AppliesTo reports whether the library should be used on the given platform.
func (l Library) AppliesTo(osName string) bool {
	return Allowed(l.Rules, osName)
}

// NativeClassifier returns the classifier key for the platform's native
// variant of this library, if any. The ${arch} token expands to the pointer
// width, matching the manifest format.
func (l Library) NativeClassifier(osName string) (string, bool) {
	key, ok := l.Natives[osName]
	if !ok {
		return "", false
	}
	return strings.ReplaceAll(key, "${arch}", "64"), true
}
