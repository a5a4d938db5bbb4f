package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedNoRules(t *testing.T) {
	assert.True(t, Allowed(nil, "linux"))
}

func TestAllowedExplicitAllow(t *testing.T) {
	rules := []Rule{{Action: "allow", OS: &OSRule{Name: "linux"}}}

	assert.True(t, Allowed(rules, "linux"))
	assert.False(t, Allowed(rules, "windows"))
}

func TestAllowedDisallowOverride(t *testing.T) {
	// Allow everywhere except osx: the manifest format's common pattern.
	rules := []Rule{
		{Action: "allow"},
		{Action: "disallow", OS: &OSRule{Name: "osx"}},
	}

	assert.True(t, Allowed(rules, "linux"))
	assert.True(t, Allowed(rules, "windows"))
	assert.False(t, Allowed(rules, "osx"))
}

func TestLibraryAppliesTo(t *testing.T) {
	lib := Library{Rules: []Rule{{Action: "allow", OS: &OSRule{Name: "windows"}}}}

	assert.True(t, lib.AppliesTo("windows"))
	assert.False(t, lib.AppliesTo("linux"))
}

func TestNativeClassifier(t *testing.T) {
	lib := Library{Natives: map[string]string{"linux": "natives-linux", "windows": "natives-windows-${arch}"}}

	key, ok := lib.NativeClassifier("linux")
	assert.True(t, ok)
	assert.Equal(t, "natives-linux", key)

	key, ok = lib.NativeClassifier("windows")
	assert.True(t, ok)
	assert.Equal(t, "natives-windows-64", key)

	_, ok = lib.NativeClassifier("osx")
	assert.False(t, ok)
}
