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

// compileCache stores compiled resources keyed by (source ^ options)
// hash. Resources are immutable, so one compilation serves every
// caller with the same source and options.
var compileCache sync.Map

// compileState tracks one cached compilation.
type compileState struct {
	once sync.Once
	res  *Resource
	err  error
}

// hashOptions encodes the semantic options using gob and hashes with
// xxh3. The logger is excluded: it never affects compiled output.
func hashOptions(o options) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)
	_ = enc.Encode(o.stepLimit)

	return xxh3.Hash(buf.Bytes())
}

// CompileString parses and compiles source text, caching the result.
// Subsequent calls with identical source and semantic options return
// the same resource without reparsing. Failures are cached alongside
// successes; identical input fails identically.
func CompileString(
	ctx context.Context,
	source string,
	opts ...Option,
) (*Resource, error) {
	o := applyOptions(opts...)

	key := strconv.FormatUint(xxh3.Hash([]byte(source))^hashOptions(o), 36)

	value, hit := compileCache.LoadOrStore(key, new(compileState))
	st := value.(*compileState)

	o.logger.TraceContext(ctx, "compile cache",
		slog.String("key", key),
		slog.Bool("hit", hit),
	)

	st.once.Do(func() {
		ast, err := ParseString(ctx, source, opts...)
		if err != nil {
			st.err = err

			return
		}

		st.res, st.err = Compile(ast, opts...)
	})

	return st.res, st.err
}

// CompileReader reads, parses, and compiles a resource from an
// io.Reader, caching by content like [CompileString].
func CompileReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Resource, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return CompileString(ctx, string(data), opts...)
}

// ClearCache removes all cached compilations. This is primarily
// useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	compileCache = sync.Map{}
}
