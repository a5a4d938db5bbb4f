// Package manifest fetches the remote version catalog, caches per-version
// descriptors and resolves their artifacts into a verified local file set.
package manifest

import (
	"encoding/json"
	"time"
)

// Manifest is the remote version catalog. Immutable once fetched; refreshed
// wholesale. Unknown fields in the remote document are ignored.
type Manifest struct {
	Latest   Latest    `json:"latest"`
	Versions []Version `json:"versions"`
}

type Latest struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}

type Version struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	URL         string    `json:"url"`
	ReleaseTime time.Time `json:"releaseTime"`
}

// Find returns the catalog entry for id, or nil.
func (m *Manifest) Find(id string) *Version {
	for i := range m.Versions {
		if m.Versions[i].ID == id {
			return &m.Versions[i]
		}
	}
	return nil
}

// Descriptor is the per-version detail document. Owned by the resolver,
// immutable after validation.
type Descriptor struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	MainClass   string      `json:"mainClass"`
	JavaVersion JavaVersion `json:"javaVersion"`
	Libraries   []Library   `json:"libraries"`
	Downloads   Downloads   `json:"downloads"`
	AssetIndex  *AssetIndex `json:"assetIndex,omitempty"`
	Assets      string      `json:"assets,omitempty"`
	Arguments   Arguments   `json:"arguments"`
}

type JavaVersion struct {
	Component    string `json:"component,omitempty"`
	MajorVersion int    `json:"majorVersion"`
}

type Library struct {
	Name      string            `json:"name"`
	Downloads LibraryDownloads  `json:"downloads"`
	Rules     []Rule            `json:"rules,omitempty"`
	Natives   map[string]string `json:"natives,omitempty"`
}

type LibraryDownloads struct {
	Artifact    *Artifact           `json:"artifact,omitempty"`
	Classifiers map[string]Artifact `json:"classifiers,omitempty"`
}

// Artifact is a single downloadable file with its expected digest.
type Artifact struct {
	Path string `json:"path"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

type Downloads struct {
	Client *FileDownload `json:"client,omitempty"`
	Server *FileDownload `json:"server,omitempty"`
}

type FileDownload struct {
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

type AssetIndex struct {
	ID        string `json:"id"`
	SHA1      string `json:"sha1"`
	Size      int64  `json:"size"`
	TotalSize int64  `json:"totalSize,omitempty"`
	URL       string `json:"url"`
}

// AssetIndexDoc is the downloaded asset index: logical names mapped onto
// content-addressed objects.
type AssetIndexDoc struct {
	Objects map[string]AssetObject `json:"objects"`
}

type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

type Arguments struct {
	Game []Argument `json:"game,omitempty"`
	JVM  []Argument `json:"jvm,omitempty"`
}

// Argument is either a bare string or a rule-guarded value that expands to
// one or more strings.
type Argument struct {
	Values []string
	Rules  []Rule
}

func (a *Argument) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Values = []string{s}
		return nil
	}

	var obj struct {
		Rules []Rule          `json:"rules"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	a.Rules = obj.Rules

	var one string
	if err := json.Unmarshal(obj.Value, &one); err == nil {
		a.Values = []string{one}
		return nil
	}

	var many []string
	if err := json.Unmarshal(obj.Value, &many); err != nil {
		return err
	}
	a.Values = many

	return nil
}

func (a Argument) MarshalJSON() ([]byte, error) {
	if len(a.Rules) == 0 && len(a.Values) == 1 {
		return json.Marshal(a.Values[0])
	}
	return json.Marshal(struct {
		Rules []Rule   `json:"rules,omitempty"`
		Value []string `json:"value"`
	}{a.Rules, a.Values})
}
