// Package assets loads the teaser's model and environment from a path,
// a file:// URL or an http(s) URL. Fetched bytes are cached per URL.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/logo-teaser/internal/engine/lighting"
	"github.com/Faultbox/logo-teaser/internal/engine/scene"
	"github.com/Faultbox/logo-teaser/internal/logger"
)

var (
	// ErrUnsupported is returned for asset formats the pipeline cannot decode.
	ErrUnsupported = errors.New("unsupported asset format")
	// ErrNoGeometry is returned when a model contains no drawable triangles.
	ErrNoGeometry = errors.New("model has no triangle geometry")
	// ErrMalformed is returned when a model references data it does not contain.
	ErrMalformed = errors.New("malformed model")
)

// maxFetchSize bounds a single remote download.
const maxFetchSize = 256 << 20

// Kind selects what a load produces.
type Kind int

const (
	KindModel Kind = iota
	KindEnvironment
)

func (k Kind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindEnvironment:
		return "environment"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Result is the outcome of an asynchronous load.
type Result struct {
	Kind        Kind
	URL         string
	Model       *scene.Node
	Environment *lighting.Environment
	Err         error
	Elapsed     time.Duration
}

// Pipeline fetches and decodes assets.
type Pipeline struct {
	client *http.Client
	cache  *Cache
	log    *zap.Logger
}

// NewPipeline creates a pipeline. A nil client uses http.DefaultClient.
func NewPipeline(client *http.Client) *Pipeline {
	if client == nil {
		client = http.DefaultClient
	}
	return &Pipeline{
		client: client,
		cache:  NewCache(),
		log:    logger.Named("assets"),
	}
}

// Cache exposes the byte cache, mainly for stats.
func (p *Pipeline) Cache() *Cache {
	return p.cache
}

// Go starts loading rawURL in the background. The returned channel yields
// exactly one Result and is then closed.
func (p *Pipeline) Go(ctx context.Context, kind Kind, rawURL string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		start := time.Now()
		res := Result{Kind: kind, URL: rawURL}
		switch kind {
		case KindModel:
			res.Model, res.Err = p.LoadModel(ctx, rawURL)
		case KindEnvironment:
			res.Environment, res.Err = p.LoadEnvironment(ctx, rawURL)
		default:
			res.Err = fmt.Errorf("%w: kind %v", ErrUnsupported, kind)
		}
		res.Elapsed = time.Since(start)
		out <- res
	}()
	return out
}

// location is a parsed asset URL: either a local path or a remote URL.
type location struct {
	path   string // local file path, empty for remote
	remote string
}

func parseLocation(rawURL string) (location, error) {
	if rawURL == "" {
		return location{}, errors.New("empty asset url")
	}
	lower := strings.ToLower(rawURL)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return location{remote: rawURL}, nil
	case strings.HasPrefix(lower, "file://"):
		u, err := url.Parse(rawURL)
		if err != nil {
			return location{}, fmt.Errorf("parsing %s: %w", rawURL, err)
		}
		return location{path: u.Path}, nil
	default:
		return location{path: rawURL}, nil
	}
}

// fetch returns the bytes behind rawURL, from cache when possible.
func (p *Pipeline) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if data, ok := p.cache.Get(rawURL); ok {
		p.log.Debug("asset cache hit", zap.String("url", rawURL))
		return data, nil
	}

	loc, err := parseLocation(rawURL)
	if err != nil {
		return nil, err
	}

	var data []byte
	if loc.remote != "" {
		data, err = p.get(ctx, loc.remote)
	} else {
		data, err = os.ReadFile(loc.path)
	}
	if err != nil {
		return nil, err
	}

	p.cache.Set(rawURL, data)
	return data, nil
}

// get performs a single GET. Failures are not retried.
func (p *Pipeline) get(ctx context.Context, remote string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remote, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", remote, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", remote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", remote, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", remote, err)
	}
	if len(data) > maxFetchSize {
		return nil, fmt.Errorf("fetching %s: body exceeds %d bytes", remote, maxFetchSize)
	}
	return data, nil
}

// extension returns the lower-case extension of rawURL's path, ignoring any query.
func extension(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		rawURL = u.Path
	}
	if i := strings.LastIndexByte(rawURL, '.'); i >= 0 && !strings.ContainsRune(rawURL[i:], '/') {
		return strings.ToLower(rawURL[i:])
	}
	return ""
}
