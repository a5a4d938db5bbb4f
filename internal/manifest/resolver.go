package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/mangolauncher/mango/internal/cache"
	"github.com/mangolauncher/mango/internal/domain"
	"github.com/mangolauncher/mango/internal/download"
	"github.com/mangolauncher/mango/internal/hash"
	"github.com/mangolauncher/mango/internal/logctx"
)

type RefreshPolicy int

const (
	// UseCacheIfValid fetches the remote catalog only when the local copy is
	// stale or absent, and trusts recorded artifact digests.
	UseCacheIfValid RefreshPolicy = iota
	// ForceRefresh re-fetches the catalog and re-hashes every artifact.
	ForceRefresh
)

const (
	manifestFile = "version_manifest.json"
	stampFile    = "manifest_stamp"

	defaultResourcesURL = "https://resources.download.minecraft.net"
)

// Resolved is the outcome of resolving one version: a validated descriptor
// with every rule-matching artifact present locally and digest-valid.
type Resolved struct {
	Descriptor *Descriptor
	// Degraded is set when the remote catalog or descriptor fetch failed and
	// cached data was served instead.
	Degraded     bool
	Libraries    []string // ordered local paths, platform-filtered, no duplicates
	NativeJars   []string // native classifier jars to extract per launch
	MainJar      string
	AssetIndexID string // empty when the version declares no asset index
}

type Resolver struct {
	manifestURL  string
	versionsDir  string
	librariesDir string
	assetsDir    string
	maxAge       time.Duration

	client *http.Client
	sched  *download.Scheduler
	index  *cache.Index

	// Observer, when set, sees every download handle the resolver submits.
	// The CLI uses it to render progress.
	Observer func(*download.Handle)

	// ResourcesURL is the base URL asset objects are fetched from.
	ResourcesURL string

	flight    singleflight.Group
	refreshed atomic.Bool // a forced catalog fetch happens at most once per resolver
}

func NewResolver(manifestURL, versionsDir, librariesDir, assetsDir string, maxAge time.Duration,
	sched *download.Scheduler, index *cache.Index) *Resolver {

	return &Resolver{
		manifestURL:  manifestURL,
		versionsDir:  versionsDir,
		librariesDir: librariesDir,
		assetsDir:    assetsDir,
		maxAge:       maxAge,
		client:       &http.Client{Timeout: 30 * time.Second},
		sched:        sched,
		index:        index,
		ResourcesURL: defaultResourcesURL,
	}
}

// doShared funnels fn through the flight group. When the executing caller is
// cancelled, the shared result is poisoned with context.Canceled; callers
// whose own context is still live re-run the flight instead of inheriting a
// cancellation that was never theirs. An executor with a live context never
// produces context.Canceled itself, so the loop terminates.
func (r *Resolver) doShared(ctx context.Context, key string, fn func() (any, error)) (any, error) {
	for {
		v, err, _ := r.flight.Do(key, fn)
		if err == nil || ctx.Err() != nil || !errors.Is(err, context.Canceled) {
			return v, err
		}
		r.flight.Forget(key)
	}
}

// Catalog returns the version manifest, fetching it if the cached copy is
// stale or the policy demands it. A failed fetch with a usable cached copy
// degrades silently: the cached catalog is returned with degraded=true.
// Concurrent refreshes are coalesced into one fetch, and a successful forced
// fetch happens at most once per resolver so one operation never refreshes
// the same catalog twice.
func (r *Resolver) Catalog(ctx context.Context, policy RefreshPolicy) (*Manifest, bool, error) {
	type result struct {
		m        *Manifest
		degraded bool
	}

	v, err := r.doShared(ctx, "catalog", func() (any, error) {
		forced := policy == ForceRefresh && !r.refreshed.Load()
		if !forced && r.catalogFresh() {
			if m, err := r.loadCatalog(); err == nil {
				return result{m, false}, nil
			}
		}

		var m Manifest
		if err := r.getJSON(ctx, r.manifestURL, &m); err != nil {
			// A cancelled fetch is not a degraded fetch; surviving callers
			// re-run it instead of being served the stale copy.
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			cached, lerr := r.loadCatalog()
			if lerr != nil {
				return nil, err
			}
			logctx.LoggerFromContext(ctx).Warn("catalog fetch failed, using cached copy", "err", err)
			return result{cached, true}, nil
		}

		if err := r.storeCatalog(&m); err != nil {
			return nil, err
		}
		if forced {
			r.refreshed.Store(true)
		}
		return result{&m, false}, nil
	})
	if err != nil {
		return nil, false, err
	}

	res := v.(result)
	return res.m, res.degraded, nil
}

// Resolve ensures the named version's descriptor and all rule-matching
// artifacts are present locally and digest-valid. Concurrent resolutions of
// the same version share in-flight downloads instead of duplicating them.
func (r *Resolver) Resolve(ctx context.Context, versionID string, policy RefreshPolicy) (*Resolved, error) {
	logger := logctx.LoggerFromContext(ctx).With("version", versionID)

	m, degraded, err := r.Catalog(ctx, policy)
	if err != nil {
		return nil, err
	}

	entry := m.Find(versionID)
	if entry == nil {
		return nil, fmt.Errorf("version %q not found in catalog", versionID)
	}

	desc, ddeg, err := r.descriptor(ctx, entry, policy)
	if err != nil {
		return nil, err
	}

	res := &Resolved{Descriptor: desc, Degraded: degraded || ddeg}

	type artifact struct {
		url, dest, sha1 string
		size            int64
		priority        int
	}

	osName := CurrentOS()
	var wanted []artifact
	seen := make(map[string]bool)

	// Descriptors occasionally list the same artifact path more than once;
	// the classpath and the download plan must carry it exactly once.
	want := func(a artifact) bool {
		if seen[a.dest] {
			return false
		}
		seen[a.dest] = true
		wanted = append(wanted, a)
		return true
	}

	for _, lib := range desc.Libraries {
		if !lib.AppliesTo(osName) {
			continue
		}

		if a := lib.Downloads.Artifact; a != nil && a.URL != "" {
			dest := filepath.Join(r.librariesDir, filepath.FromSlash(a.Path))
			if want(artifact{a.URL, dest, a.SHA1, a.Size, 0}) {
				res.Libraries = append(res.Libraries, dest)
			}
		}

		if key, ok := lib.NativeClassifier(osName); ok {
			if a, ok := lib.Downloads.Classifiers[key]; ok && a.URL != "" {
				dest := filepath.Join(r.librariesDir, filepath.FromSlash(a.Path))
				if want(artifact{a.URL, dest, a.SHA1, a.Size, 0}) {
					res.NativeJars = append(res.NativeJars, dest)
				}
			}
		}
	}

	if c := desc.Downloads.Client; c != nil && c.URL != "" {
		res.MainJar = filepath.Join(r.versionsDir, desc.ID, desc.ID+".jar")
		// The main jar gates everything else, give it the queue head.
		want(artifact{c.URL, res.MainJar, c.SHA1, c.Size, 1})
	}

	if ai := desc.AssetIndex; ai != nil && ai.URL != "" {
		objects, err := r.assetObjects(ctx, ai)
		if err != nil {
			return nil, err
		}
		res.AssetIndexID = ai.ID

		for _, obj := range objects {
			prefix := obj.Hash[:2]
			dest := filepath.Join(r.assetsDir, "objects", prefix, obj.Hash)
			want(artifact{r.ResourcesURL + "/" + prefix + "/" + obj.Hash, dest, obj.Hash, obj.Size, 0})
		}
	}

	logger.Debug("resolving artifacts", "count", len(wanted))

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range wanted {
		g.Go(func() error {
			return r.ensureArtifact(gctx, w.url, w.dest, w.sha1, w.size, w.priority)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return res, nil
}

// ensureArtifact makes dest present and digest-valid, downloading at most
// once across concurrent resolutions of the same path. A digest mismatch
// after one full re-download is fatal.
func (r *Resolver) ensureArtifact(ctx context.Context, url, dest, sha1 string, size int64, priority int) error {
	_, err := r.doShared(ctx, dest, func() (any, error) {
		if sha1 != "" {
			// Always re-hash: a stale index row must never vouch for
			// corrupted bytes.
			trusted, err := r.index.Trusted(dest, sha1, true)
			if err == nil && trusted {
				return nil, nil
			}
		} else if _, err := os.Stat(dest); err == nil {
			return nil, nil
		}

		var lastErr error
		for attempt := 0; attempt < 2; attempt++ {
			h := r.sched.Submit(ctx, download.Task{
				URL: url, Dest: dest, SHA1: sha1, Size: size, Priority: priority,
			})
			if r.Observer != nil {
				r.Observer(h)
			}

			if err := h.Wait(ctx); err != nil {
				var ierr *domain.IntegrityError
				if errors.As(err, &ierr) {
					r.index.Invalidate(dest)
					lastErr = err
					continue
				}
				return nil, err
			}

			if sha1 == "" {
				return nil, nil
			}

			// Re-verify after completion: verification is always the last
			// step before an artifact counts as present.
			actual, err := hash.SHA1File(dest)
			if err != nil {
				return nil, &domain.FilesystemError{Path: dest, Err: err}
			}
			if !hash.Equal(actual, sha1) {
				os.Remove(dest)
				r.index.Invalidate(dest)
				lastErr = &domain.IntegrityError{Path: dest, Expected: sha1, Actual: actual}
				continue
			}

			info, err := os.Stat(dest)
			if err != nil {
				return nil, &domain.FilesystemError{Path: dest, Err: err}
			}
			if err := r.index.Record(dest, actual, info.Size()); err != nil {
				return nil, err
			}
			return nil, nil
		}

		return nil, lastErr
	})

	return err
}

// assetObjects makes the version's asset index present locally and returns
// its content-addressed objects, deduplicated by hash. Many index entries
// share bytes; each distinct hash is fetched once.
func (r *Resolver) assetObjects(ctx context.Context, ai *AssetIndex) ([]AssetObject, error) {
	dest := filepath.Join(r.assetsDir, "indexes", ai.ID+".json")
	// The index gates every object below it, so it rides at jar priority.
	if err := r.ensureArtifact(ctx, ai.URL, dest, ai.SHA1, ai.Size, 1); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		return nil, &domain.FilesystemError{Path: dest, Err: err}
	}

	var doc AssetIndexDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing asset index %s: %w", ai.ID, err)
	}

	byHash := make(map[string]AssetObject, len(doc.Objects))
	for _, obj := range doc.Objects {
		if len(obj.Hash) < 2 {
			continue
		}
		byHash[obj.Hash] = obj
	}

	out := make([]AssetObject, 0, len(byHash))
	for _, obj := range byHash {
		out = append(out, obj)
	}

	return out, nil
}

func (r *Resolver) descriptor(ctx context.Context, entry *Version, policy RefreshPolicy) (*Descriptor, bool, error) {
	path := filepath.Join(r.versionsDir, entry.ID, entry.ID+".json")

	if policy != ForceRefresh {
		if desc, err := loadDescriptor(path); err == nil {
			return desc, false, nil
		}
	}

	var desc Descriptor
	if err := r.getJSON(ctx, entry.URL, &desc); err != nil {
		if cached, lerr := loadDescriptor(path); lerr == nil {
			return cached, true, nil
		}
		return nil, false, err
	}

	if desc.ID == "" {
		desc.ID = entry.ID
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, false, &domain.FilesystemError{Path: filepath.Dir(path), Err: err}
	}
	data, err := json.MarshalIndent(&desc, "", "  ")
	if err != nil {
		return nil, false, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, false, &domain.FilesystemError{Path: path, Err: err}
	}

	return &desc, false, nil
}

func loadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var desc Descriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, err
	}

	return &desc, nil
}

func (r *Resolver) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "mango")

	resp, err := r.client.Do(req)
	if err != nil {
		return &domain.NetworkError{Operation: "fetch_manifest", URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &domain.NetworkError{Operation: "fetch_manifest", URL: url, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

func (r *Resolver) catalogFresh() bool {
	data, err := os.ReadFile(filepath.Join(r.versionsDir, stampFile))
	if err != nil {
		return false
	}

	sec, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return false
	}

	return time.Since(time.Unix(sec, 0)) < r.maxAge
}

func (r *Resolver) loadCatalog() (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(r.versionsDir, manifestFile))
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *Resolver) storeCatalog(m *Manifest) error {
	if err := os.MkdirAll(r.versionsDir, 0755); err != nil {
		return &domain.FilesystemError{Path: r.versionsDir, Err: err}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(r.versionsDir, manifestFile), data, 0644); err != nil {
		return &domain.FilesystemError{Path: filepath.Join(r.versionsDir, manifestFile), Err: err}
	}

	stamp := strconv.FormatInt(time.Now().Unix(), 10)
	return os.WriteFile(filepath.Join(r.versionsDir, stampFile), []byte(stamp), 0644)
}
