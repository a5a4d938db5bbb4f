package manifest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgumentUnmarshalString(t *testing.T) {
	var a Argument
	require.NoError(t, json.Unmarshal([]byte(`"--username"`), &a))
	assert.Equal(t, []string{"--username"}, a.Values)
	assert.Empty(t, a.Rules)
}

func TestArgumentUnmarshalRuled(t *testing.T) {
	raw := `{"rules":[{"action":"allow","os":{"name":"osx"}}],"value":["-XstartOnFirstThread"]}`

	var a Argument
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.Equal(t, []string{"-XstartOnFirstThread"}, a.Values)
	require.Len(t, a.Rules, 1)
	assert.Equal(t, "allow", a.Rules[0].Action)
	assert.Equal(t, "osx", a.Rules[0].OS.Name)
}

func TestArgumentUnmarshalRuledScalarValue(t *testing.T) {
	raw := `{"rules":[{"action":"allow"}],"value":"-Xss1M"}`

	var a Argument
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.Equal(t, []string{"-Xss1M"}, a.Values)
}

func TestDescriptorIgnoresUnknownFields(t *testing.T) {
	raw := `{
		"id": "1.20.1",
		"mainClass": "net.minecraft.client.main.Main",
		"javaVersion": {"majorVersion": 17, "futureField": true},
		"complianceLevel": 1,
		"someNewTopLevel": {"x": 1},
		"libraries": [
			{"name": "a:b:1", "downloads": {"artifact": {"path": "a/b/1/b-1.jar", "sha1": "deadbeef", "size": 10, "url": "http://example/b.jar"}}, "extra": 3}
		]
	}`

	var d Descriptor
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	assert.Equal(t, "1.20.1", d.ID)
	assert.Equal(t, 17, d.JavaVersion.MajorVersion)
	require.Len(t, d.Libraries, 1)
	assert.Equal(t, "a/b/1/b-1.jar", d.Libraries[0].Downloads.Artifact.Path)
}

func TestManifestFind(t *testing.T) {
	m := Manifest{Versions: []Version{{ID: "1.20.1"}, {ID: "1.19.4"}}}

	assert.NotNil(t, m.Find("1.19.4"))
	assert.Nil(t, m.Find("1.0"))
}
