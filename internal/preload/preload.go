package preload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"vidplan/internal/config"
	"vidplan/internal/fileutil"
	"vidplan/internal/logging"
	"vidplan/internal/plan"
)

const (
	defaultConcurrency = 4
	defaultTimeout     = 30 * time.Second
	maxDownloadBytes   = 64 << 20
)

// Options configures a Preloader.
type Options struct {
	Dir         string
	Concurrency int
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

// Entry is the result of preloading one URL.
type Entry struct {
	URL    string `json:"url"`
	Path   string `json:"path,omitempty"`
	Bytes  int64  `json:"bytes,omitempty"`
	SHA256 string `json:"sha256,omitempty"`
	Cached bool   `json:"cached,omitempty"`
	Error  string `json:"error,omitempty"`
}

// OK reports whether the URL is available in the cache.
func (e Entry) OK() bool {
	return e.Error == "" && e.Path != ""
}

// Preloader fetches URLs into a cache directory.
type Preloader struct {
	dir         string
	concurrency int
	client      *http.Client
	logger      *slog.Logger
}

// New builds a Preloader.
func New(opts Options) *Preloader {
	p := &Preloader{
		dir:         opts.Dir,
		concurrency: opts.Concurrency,
		client:      opts.HTTPClient,
		logger:      opts.Logger,
	}
	if p.concurrency <= 0 {
		p.concurrency = defaultConcurrency
	}
	if p.client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		p.client = &http.Client{Timeout: timeout}
	}
	p.logger = logging.NewComponentLogger(p.logger, "preload")
	return p
}

// NewFromConfig builds a Preloader from the [preload] and [paths] settings.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Preloader {
	return New(Options{
		Dir:         cfg.Paths.CacheDir,
		Concurrency: cfg.Preload.Concurrency,
		Timeout:     cfg.PreloadTimeout(),
		Logger:      logger,
	})
}

// URLs collects the distinct http(s) image sources of a plan in scene and
// element order.
func URLs(p plan.VideoPlan) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, scene := range p.Scenes {
		for _, el := range scene.Elements {
			img, ok := el.Image()
			if !ok || !img.HasSource() {
				continue
			}
			src := img.Source()
			lower := strings.ToLower(src)
			if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
				continue
			}
			if _, dup := seen[src]; dup {
				continue
			}
			seen[src] = struct{}{}
			out = append(out, src)
		}
	}
	return out
}

// CachePath returns the cache file for rawURL inside dir.
func CachePath(dir, rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return filepath.Join(dir, hex.EncodeToString(sum[:])+extension(rawURL))
}

func extension(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ".bin"
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	if len(ext) < 2 || len(ext) > 6 {
		return ".bin"
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ".bin"
		}
	}
	return ext
}

// Preload fetches every URL and returns one entry per URL in input order.
// Failures are logged and recorded in the entry; they never stop the others.
func (p *Preloader) Preload(ctx context.Context, urls []string) []Entry {
	entries := make([]Entry, len(urls))
	if len(urls) == 0 {
		return entries
	}
	if strings.TrimSpace(p.dir) == "" {
		for i, u := range urls {
			entries[i] = Entry{URL: u, Error: "cache directory not configured"}
		}
		return entries
	}

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			entry := p.fetch(ctx, u)
			if entry.Error != "" {
				logging.WarnWithContext(logging.WithContext(ctx, p.logger), "asset preload failed", "preload_failed",
					logging.String("url", u),
					logging.String("error", entry.Error),
					logging.String(logging.FieldErrorHint, "the renderer will fetch the asset itself"),
					logging.String(logging.FieldImpact, "asset not cached locally"),
				)
			}
			entries[i] = entry
			return nil
		})
	}
	_ = g.Wait()

	cached := 0
	for _, e := range entries {
		if e.OK() {
			cached++
		}
	}
	p.logger.Info("preload finished",
		logging.Int("urls", len(urls)),
		logging.Int("cached", cached),
		logging.Int("failed", len(urls)-cached),
	)
	return entries
}

func (p *Preloader) fetch(ctx context.Context, rawURL string) Entry {
	entry := Entry{URL: rawURL}
	target := CachePath(p.dir, rawURL)
	if info, err := os.Stat(target); err == nil && info.Size() > 0 {
		entry.Path = target
		entry.Bytes = info.Size()
		entry.Cached = true
		return entry
	}
	if err := ctx.Err(); err != nil {
		entry.Error = err.Error()
		return entry
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		entry.Error = fmt.Sprintf("build request: %v", err)
		return entry
	}
	resp, err := p.client.Do(req)
	if err != nil {
		entry.Error = fmt.Sprintf("download: %v", err)
		return entry
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		entry.Error = fmt.Sprintf("download: http %d", resp.StatusCode)
		return entry
	}
	if resp.ContentLength > maxDownloadBytes {
		entry.Error = fmt.Sprintf("download: %d bytes exceeds limit", resp.ContentLength)
		return entry
	}

	written, err := fileutil.WriteVerified(target, &limitedReader{r: resp.Body, n: maxDownloadBytes}, resp.ContentLength)
	if err != nil {
		entry.Error = err.Error()
		return entry
	}
	entry.Path = target
	entry.Bytes = written.Bytes
	entry.SHA256 = written.SHA256
	return entry
}

var errTooLarge = errors.New("download exceeds size limit")

// limitedReader fails once more than n bytes are available, unlike
// io.LimitReader which truncates silently.
type limitedReader struct {
	r io.Reader
	n int64
}

func (l *limitedReader) Read(b []byte) (int, error) {
	if l.n <= 0 {
		var probe [1]byte
		n, err := l.r.Read(probe[:])
		if n > 0 {
			return 0, errTooLarge
		}
		return 0, err
	}
	if int64(len(b)) > l.n {
		b = b[:l.n]
	}
	n, err := l.r.Read(b)
	l.n -= int64(n)
	return n, err
}
