package sound

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"sync/atomic"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"golang.org/x/sync/errgroup"

	"go-drum/audio"
	"go-drum/debug"
)

// maxConcurrentLoads bounds LoadLibrary fan-out.
const maxConcurrentLoads = 4

// Source yields the bytes of one sound file.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// FileSource reads from the local filesystem.
type FileSource string

func (f FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(string(f))
}

func (f FileSource) String() string { return string(f) }

// HTTPSource fetches over http(s).
type HTTPSource struct {
	URL    string
	Client *http.Client // nil means http.DefaultClient
}

func (h HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, err
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fs.ErrNotExist
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

func (h HTTPSource) String() string { return h.URL }

// SourceFor picks an HTTP source for http(s) URLs and a file source otherwise.
func SourceFor(url string) Source {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return HTTPSource{URL: url}
	}
	return FileSource(strings.TrimPrefix(url, "file://"))
}

// Load fetches and decodes src into the bank under id. On failure the bank
// entry is left as it was and the error is tagged: NotFound for a missing file,
// InvalidArgument for undecodable data, Cancelled for a cancelled context.
func (b *Bank) Load(ctx context.Context, id string, src Source) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fault.New(fmt.Sprintf("decoder panic: %v", r), fmsg.With("load "+id), ftag.With(ftag.InvalidArgument))
		}
	}()

	rc, err := src.Open(ctx)
	if err != nil {
		return fault.Wrap(err, fmsg.With(fmt.Sprintf("open %s", src)), ftag.With(openKind(ctx, err)))
	}
	defer rc.Close()

	buf, err := audio.ReadWAV(rc)
	if err != nil {
		kind := ftag.InvalidArgument
		if ctx.Err() != nil {
			kind = ftag.Cancelled
		}
		return fault.Wrap(err, fmsg.With(fmt.Sprintf("decode %s", src)), ftag.With(kind))
	}

	b.Set(id, buf)
	debug.Log("sound", "loaded %s from %s (%v)", id, src, buf.Duration())
	return nil
}

func openKind(ctx context.Context, err error) ftag.Kind {
	switch {
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		return ftag.Cancelled
	case errors.Is(err, fs.ErrNotExist):
		return ftag.NotFound
	default:
		return ftag.Internal
	}
}

// LoadFromSource is Load reporting only success. Failures are logged.
func (b *Bank) LoadFromSource(ctx context.Context, id string, src Source) bool {
	if err := b.Load(ctx, id, src); err != nil {
		debug.Warn("sound", "error loading sound %s: %v (%s)", id, err, ftag.Get(err))
		return false
	}
	return true
}

// Entry names one file of a sound library.
type Entry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// LibraryResult reports a bulk load.
type LibraryResult struct {
	Loaded int
	Total  int
	OK     []bool // per entry, in input order
}

// LoadLibrary loads entries concurrently. Individual failures don't stop the
// others.
func (b *Bank) LoadLibrary(ctx context.Context, entries []Entry) LibraryResult {
	res := LibraryResult{Total: len(entries), OK: make([]bool, len(entries))}
	var loaded atomic.Int64

	var g errgroup.Group
	g.SetLimit(maxConcurrentLoads)
	for i, e := range entries {
		g.Go(func() error {
			if b.LoadFromSource(ctx, e.Name, SourceFor(e.URL)) {
				res.OK[i] = true
				loaded.Add(1)
			}
			return nil
		})
	}
	g.Wait()

	res.Loaded = int(loaded.Load())
	debug.Log("sound", "loaded %d/%d sounds", res.Loaded, res.Total)
	return res
}
