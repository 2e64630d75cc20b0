package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
)

type (
	contextKey struct{}
	streamsKey struct{}

	streams struct {
		in  io.Reader
		out io.Writer
	}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// kongVar returns the kong variable name, or "" if there is none.
func kongVar(ctx context.Context, name string) string {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ""
	}

	return ktx.Model.Vars()[name]
}

// WithStreams returns a new context.Context in which commands read standard
// input from in and write their output to out. A nil stream keeps the
// process default.
func WithStreams(ctx context.Context, in io.Reader, out io.Writer) context.Context {
	return context.WithValue(ctx, streamsKey{}, streams{in: in, out: out})
}

func stdin(ctx context.Context) io.Reader {
	if s, ok := ctx.Value(streamsKey{}).(streams); ok && s.in != nil {
		return s.in
	}

	return os.Stdin
}

func stdout(ctx context.Context) io.Writer {
	if s, ok := ctx.Value(streamsKey{}).(streams); ok && s.out != nil {
		return s.out
	}

	return os.Stdout
}

// stdinSource is the path naming standard input.
const stdinSource = "-"

// openSource opens the named file, or standard input for "-".
func openSource(ctx context.Context, path string) (io.ReadCloser, error) {
	if path == stdinSource {
		return io.NopCloser(stdin(ctx)), nil
	}

	return os.Open(path)
}

// readSource reads the named file, or standard input for "-".
func readSource(ctx context.Context, path string) ([]byte, error) {
	r, err := openSource(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// fileKey uniquely identifies a file by its device and inode numbers, which
// catches duplicates reached through symlinks or relative paths.
type fileKey struct {
	dev uint64
	ino uint64
}

func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// uniqueSources removes repeated sources from paths, keeping the first
// occurrence of each file. Every "-" collapses into a single standard input
// source placed last, so it is read after all regular files. A missing file
// is an error.
func uniqueSources(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	seen := make(map[fileKey]struct{})
	hasStdin := false

	for _, path := range paths {
		if path == stdinSource {
			hasStdin = true

			continue
		}

		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil, ErrReadContext.Wrap(err).With(slog.String("file", path))
		}

		info, err := os.Stat(resolved)
		if err != nil {
			return nil, ErrReadContext.Wrap(err).With(slog.String("file", path))
		}

		if key, ok := makeFileKey(info); ok {
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}
		}

		out = append(out, path)
	}

	if hasStdin {
		out = append(out, stdinSource)
	}

	return out, nil
}
