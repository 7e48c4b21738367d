package lang

import (
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache stores parsed programs keyed by a hash of source text and
// the options that affect parsing.
var globalCache sync.Map

// entry is populated exactly once per cache key.
type entry struct {
	once sync.Once
	prog *Program
	err  error
}

// ParseReader parses a program from an io.Reader.
// The reader content is cached after first parse unless caching is
// disabled with WithCache(false).
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Program, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	o := makeOptions(opts...)

	o.logger.TraceContext(
		ctx,
		"read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	if !o.cache {
		return parse(ctx, Tokens(string(data)), o)
	}

	return parseStringCached(ctx, string(data), o)
}

// cacheKey combines the source hash with the parse options that change
// the result.
func cacheKey(source string, o options) uint64 {
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(o.maxDepth))

	return xxh3.HashString(source) ^ xxh3.Hash(buf[:])
}

func parseStringCached(
	ctx context.Context,
	source string,
	o options,
) (*Program, error) {
	key := cacheKey(source, o)

	value, cacheHit := globalCache.LoadOrStore(key, new(entry))

	cached, _ := value.(*entry)

	o.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("key", strconv.FormatUint(key, 16)),
		slog.Bool("cache_hit", cacheHit),
	)

	cached.once.Do(func() {
		cached.prog, cached.err = parse(ctx, Tokens(source), o)
	})

	return cached.prog, cached.err
}

// ClearCache removes all cached programs.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache.Clear()
}
