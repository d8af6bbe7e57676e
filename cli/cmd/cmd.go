package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/vela/log"
	"github.com/ardnew/vela/vela"
)

type contextKey struct{}

// WithContext returns a copy of ctx carrying the parsed kong context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(contextKey{}).(*kong.Context)

	return ktx
}

// stdinSource names standard input on the command line.
const stdinSource = "-"

// source is one program input named on the command line.
type source struct {
	name string
	io.ReadCloser
}

// fileKey identifies a file by device and inode, so that one file named
// through different paths or symlinks is read once.
type fileKey struct {
	dev uint64
	ino uint64
}

func makeFileKey(info os.FileInfo) (fileKey, bool) {
	if info == nil {
		return fileKey{}, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileKey{}, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}

// openSources opens each named file once, in order. Every "-", and any path
// that resolves to standard input, is replaced by a single stdin source
// placed last.
func openSources(paths []string) ([]source, error) {
	var (
		out      []source
		hasStdin bool
	)

	seen := make(map[fileKey]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, stdinOK := makeFileKey(stdinInfo)

	for _, path := range paths {
		if path == stdinSource {
			hasStdin = true

			continue
		}

		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			closeSources(out)

			return nil, ErrOpenSource.With(slog.String("file", path)).Wrap(err)
		}

		info, err := os.Stat(resolved)
		if err != nil {
			closeSources(out)

			return nil, ErrOpenSource.With(slog.String("file", path)).Wrap(err)
		}

		if key, ok := makeFileKey(info); ok {
			if stdinOK && key == stdinKey {
				hasStdin = true

				continue
			}

			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}
		}

		f, err := os.Open(resolved)
		if err != nil {
			closeSources(out)

			return nil, ErrOpenSource.With(slog.String("file", path)).Wrap(err)
		}

		out = append(out, source{name: path, ReadCloser: f})
	}

	if hasStdin {
		out = append(out, source{name: stdinSource, ReadCloser: io.NopCloser(os.Stdin)})
	}

	return out, nil
}

func closeSources(srcs []source) {
	for _, s := range srcs {
		_ = s.Close()
	}
}

// LoadSources evaluates the programs named by paths into in, in order.
// Loading stops at the first program that fails; its definitions are
// discarded and earlier programs stay loaded.
func LoadSources(ctx context.Context, in *vela.Interpreter, paths []string) error {
	srcs, err := openSources(paths)
	if err != nil {
		return err
	}

	defer closeSources(srcs)

	for _, s := range srcs {
		if err := in.LoadReader(ctx, s); err != nil {
			return ErrLoadSource.With(slog.String("file", s.name)).Wrap(err)
		}

		log.DebugContext(ctx, "loaded source", slog.String("file", s.name))
	}

	return nil
}

// openInput opens a single program argument, where "-" is standard input.
func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == stdinSource {
		return io.NopCloser(os.Stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, ErrOpenSource.With(slog.String("file", path)).Wrap(err)
	}

	return f, nil
}

// readInput returns the program text named by path.
func readInput(path string) (string, error) {
	r, err := openInput(path)
	if err != nil {
		return "", err
	}

	defer r.Close()

	return vela.ReadSource(r)
}

func writer(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}

	return w
}
