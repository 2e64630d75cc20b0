package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// programCache stores parsed programs keyed by source and option hash.
var programCache sync.Map

// entry tracks the one-time compilation of a cached source.
type entry struct {
	once    sync.Once
	program *Program
	source  string
	err     error
}

// hashOptions encodes the options that affect parsing with gob and hashes
// the result with xxh3.
func hashOptions(opts optionsKey) uint64 {
	var buf bytes.Buffer

	_ = gob.NewEncoder(&buf).Encode(opts)

	return xxh3.Hash(buf.Bytes())
}

// CompileReader reads template source from r and compiles it. Parsed
// programs are cached, so compiling the same source with the same
// whitespace options again reuses the syntax tree.
func CompileReader(ctx context.Context, r io.Reader, opts ...Option) (*Template, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("source", "reader"))
	}

	cfg := makeConfig(opts...)

	cfg.logger.TraceContext(ctx, "read input",
		slog.String("template", cfg.name),
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return compileCached(ctx, string(data), cfg)
}

func compileCached(ctx context.Context, source string, cfg config) (*Template, error) {
	sourceHash := xxh3.HashString(source)
	optsHash := hashOptions(cfg.optionsKey)
	key := strconv.FormatUint(sourceHash^optsHash, 36)

	value, hit := programCache.LoadOrStore(key, new(entry))
	e, _ := value.(*entry)

	cfg.logger.TraceContext(ctx, "cache lookup",
		slog.String("template", cfg.name),
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", hit),
	)

	e.once.Do(func() {
		t, err := compile(ctx, source, cfg)
		if err != nil {
			e.err = err

			return
		}

		e.program, e.source = t.program, t.source
	})

	if e.err != nil {
		return nil, e.err
	}

	return &Template{program: e.program, source: e.source, cfg: cfg}, nil
}

// ClearCache removes every cached program.
func ClearCache() {
	programCache.Clear()
}
