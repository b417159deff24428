package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/localitree/pkg/buildinfo"
	"github.com/matzehuels/localitree/pkg/cache"
	apperr "github.com/matzehuels/localitree/pkg/errors"
	"github.com/matzehuels/localitree/pkg/observability"
	"github.com/matzehuels/localitree/pkg/tree"
)

// DefaultResource is the document requested relative to a base URL.
const DefaultResource = "locality.json"

// DefaultMaxBodySize bounds the fetched document.
const DefaultMaxBodySize = 64 << 20

var (
	// ErrStatus is returned for any response other than 200 OK.
	ErrStatus = errors.New("unexpected status")

	// ErrNetwork is returned for transport failures (DNS, refused connections, resets).
	ErrNetwork = errors.New("network error")
)

// Options configures a [Loader].
type Options struct {
	// Resource is the path requested relative to base URLs and directories.
	// Defaults to [DefaultResource].
	Resource string
	// Timeout bounds the whole fetch. Zero means no timeout.
	Timeout time.Duration
	// Cache stores successful remote responses. Nil disables caching.
	Cache cache.Cache
	// TTL is the cache expiry. Defaults to [cache.DefaultTTL].
	TTL time.Duration
	// MaxBodySize rejects larger remote documents. Defaults to
	// [DefaultMaxBodySize].
	MaxBodySize int64
	// Headers are added to every request.
	Headers map[string]string
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
	// Logger receives debug output. Nil discards it.
	Logger *log.Logger
}

// Loader fetches tree documents.
type Loader struct {
	http     *http.Client
	cache    cache.Cache
	ttl      time.Duration
	timeout  time.Duration
	maxBody  int64
	resource string
	headers  map[string]string
	logger   *log.Logger
}

// New creates a Loader from opts.
func New(opts Options) *Loader {
	l := &Loader{
		http:     opts.HTTPClient,
		cache:    opts.Cache,
		ttl:      opts.TTL,
		timeout:  opts.Timeout,
		maxBody:  opts.MaxBodySize,
		resource: opts.Resource,
		headers:  opts.Headers,
		logger:   opts.Logger,
	}
	if l.http == nil {
		l.http = &http.Client{}
	}
	if l.cache == nil {
		l.cache = cache.NewNullCache()
	}
	if l.ttl == 0 {
		l.ttl = cache.DefaultTTL
	}
	if l.maxBody <= 0 {
		l.maxBody = DefaultMaxBodySize
	}
	if l.resource == "" {
		l.resource = DefaultResource
	}
	if l.logger == nil {
		l.logger = log.New(io.Discard)
	}
	return l
}

// Target is a resolved source.
type Target struct {
	URL  string // set for remote sources
	Path string // set for local sources
}

// IsRemote reports whether the target is fetched over HTTP.
func (t Target) IsRemote() bool { return t.URL != "" }

// String returns the URL or path.
func (t Target) String() string {
	if t.IsRemote() {
		return t.URL
	}
	return t.Path
}

// Resolve validates source and applies the resource path to base URLs and
// directories.
func (l *Loader) Resolve(source string) (Target, error) {
	if err := apperr.ValidateSource(source); err != nil {
		return Target{}, err
	}
	if err := apperr.ValidateResourcePath(l.resource); err != nil {
		return Target{}, err
	}

	if strings.Contains(source, "://") {
		if !strings.HasSuffix(source, "/") {
			return Target{URL: source}, nil
		}
		base, err := url.Parse(source)
		if err != nil {
			return Target{}, apperr.Wrap(apperr.ErrCodeInvalidSource, err, "parse source")
		}
		ref, err := url.Parse(l.resource)
		if err != nil {
			return Target{}, apperr.Wrap(apperr.ErrCodeInvalidSource, err, "parse resource path")
		}
		return Target{URL: base.ResolveReference(ref).String()}, nil
	}

	if info, err := os.Stat(source); err == nil && info.IsDir() {
		return Target{Path: filepath.Join(source, filepath.FromSlash(l.resource))}, nil
	}
	return Target{Path: source}, nil
}

// Load fetches and decodes the tree at source.
func (l *Loader) Load(ctx context.Context, source string) (*tree.Node, error) {
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, source)

	root, err := l.load(ctx, source)

	count := 0
	if root != nil {
		count = tree.Count(root)
	}
	observability.Pipeline().OnLoadComplete(ctx, source, count, time.Since(start), err)
	return root, err
}

func (l *Loader) load(ctx context.Context, source string) (*tree.Node, error) {
	data, err := l.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	root, err := tree.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}
	return root, nil
}

// Fetch returns the raw document at source. Remote documents are served
// from the cache when present.
func (l *Loader) Fetch(ctx context.Context, source string) ([]byte, error) {
	target, err := l.Resolve(source)
	if err != nil {
		return nil, err
	}
	if !target.IsRemote() {
		return readFile(target.Path)
	}

	key := cache.SourceKey(target.URL)
	if data, ok, err := l.cache.Get(ctx, key); err != nil {
		l.logger.Warn("cache read failed", "url", target.URL, "error", err)
	} else if ok {
		observability.Cache().OnCacheHit(ctx, "source")
		l.logger.Debug("cache hit", "url", target.URL)
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "source")

	data, err := l.get(ctx, target.URL)
	if err != nil {
		return nil, err
	}

	if err := l.cache.Set(ctx, key, data, l.ttl); err != nil {
		l.logger.Warn("cache write failed", "url", target.URL, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "source", len(data))
	}
	return data, nil
}

func (l *Loader) get(ctx context.Context, rawURL string) ([]byte, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidSource, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	for k, v := range l.headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, http.MethodGet, host, path)
	l.logger.Debug("fetching tree", "url", rawURL)

	start := time.Now()
	resp, err := l.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, host, path, err)
		return nil, transportError(ctx, rawURL, err)
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(rawURL, resp.StatusCode); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBody+1))
	if err != nil {
		return nil, transportError(ctx, rawURL, err)
	}
	if int64(len(data)) > l.maxBody {
		return nil, apperr.New(apperr.ErrCodeInvalidTree, "fetch %s: document exceeds %d bytes", rawURL, l.maxBody)
	}
	l.logger.Debug("fetched tree", "url", rawURL, "bytes", len(data), "duration", time.Since(start))
	return data, nil
}

func checkStatus(rawURL string, code int) error {
	if code == http.StatusOK {
		return nil
	}
	se := &apperr.StatusError{URL: rawURL, StatusCode: code}
	return apperr.Wrap(apperr.ErrCodeHTTPStatus, fmt.Errorf("%w: %w", ErrStatus, se), "fetch %s", rawURL)
}

func transportError(ctx context.Context, rawURL string, err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &ne) && ne.Timeout()) {
		return apperr.Wrap(apperr.ErrCodeTimeout, err, "fetch %s: timed out", rawURL)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return apperr.Wrap(apperr.ErrCodeNetwork, fmt.Errorf("%w: %v", ErrNetwork, err), "fetch %s", rawURL)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperr.Wrap(apperr.ErrCodeNotFound, err, "read %s", path)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidSource, err, "read %s", path)
	}
	return data, nil
}
