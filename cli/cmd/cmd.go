package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

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

type stdinKey struct{}

// WithStdin returns a new context.Context whose standard input, as seen by
// commands reading "-", is r.
func WithStdin(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, stdinKey{}, r)
}

func stdin(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(stdinKey{}).(io.Reader); ok && r != nil {
		return r
	}

	return os.Stdin
}

func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// readSources reads the named files and returns their contents joined into
// a single program, each file starting on a new line.
//
// Files are deduplicated by device and inode, so the same file named twice
// (or through a symlink) is read once. All occurrences of "-" read standard
// input once, after every regular file.
func readSources(ctx context.Context, sources []string) (string, error) {
	if len(sources) == 0 {
		sources = []string{stdinSource}
	}

	var (
		sb       strings.Builder
		hasStdin bool
	)

	seen := make(map[fileKey]struct{})

	if info, err := os.Stdin.Stat(); err == nil {
		if key, ok := makeFileKey(info); ok {
			// Naming the stdin device explicitly is the same as "-".
			seen[key] = struct{}{}
		}
	}

	for _, src := range sources {
		if src == stdinSource {
			hasStdin = true

			continue
		}

		data, ok, err := readUniqueFile(src, seen)
		if err != nil {
			return "", ErrReadSource.
				With(slog.String("file", src)).
				Wrap(err)
		}

		if ok {
			appendSource(&sb, data)
		}
	}

	if hasStdin {
		data, err := io.ReadAll(stdin(ctx))
		if err != nil {
			return "", ErrReadSource.
				With(slog.String("file", stdinSource)).
				Wrap(err)
		}

		appendSource(&sb, data)
	}

	return sb.String(), nil
}

func appendSource(sb *strings.Builder, data []byte) {
	if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
		sb.WriteByte('\n')
	}

	sb.Write(data)
}

// readUniqueFile reads the file at path if it hasn't been seen before.
// It resolves symlinks and uses device/inode to detect duplicates.
// A duplicate reports ok == false with a nil error.
func readUniqueFile(
	path string,
	seen map[fileKey]struct{},
) (data []byte, ok bool, err error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, false, err
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, false, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, false, err
	}

	if key, hasKey := makeFileKey(info); hasKey {
		if _, exists := seen[key]; exists {
			return nil, false, nil
		}

		seen[key] = struct{}{}
	}

	data, err = os.ReadFile(resolved)
	if err != nil {
		return nil, false, err
	}

	return data, true, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
