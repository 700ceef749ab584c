// Package index provides the in-memory nearest-neighbor structure over a
// library's passage vectors. An index is built exactly once from the complete
// passage set and is immutable afterwards; it is reconstructed from its
// serialized artifact on every library load.
package index

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/kailas-cloud/quizdex/internal/domain"
)

// Index holds passages and their vectors for nearest-neighbor queries and
// uniform random sampling. Safe for concurrent use.
type Index struct {
	dim      int
	passages []domain.Passage
	vectors  [][]float32

	mu  sync.Mutex
	rng *rand.Rand
}

// Hit is a single query result: a passage and its Euclidean distance to the
// query vector.
type Hit struct {
	Passage  domain.Passage
	Distance float64
}

// Build creates an index from the library's ordered passage sequence and the
// matching vectors. Passages must be sorted by Seq and vectors must share one
// dimensionality.
func Build(passages []domain.Passage, vectors [][]float32) (*Index, error) {
	if len(passages) != len(vectors) {
		return nil, fmt.Errorf("passages and vectors length mismatch: %d != %d", len(passages), len(vectors))
	}

	idx := &Index{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if len(passages) == 0 {
		return idx, nil
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("zero-length vector at position 0: %w", domain.ErrVectorDimMismatch)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has dim %d, index dim %d: %w",
				i, len(v), dim, domain.ErrVectorDimMismatch)
		}
	}
	for i, p := range passages {
		if p.Seq != i {
			return nil, fmt.Errorf("passage at position %d has seq %d, expected contiguous order", i, p.Seq)
		}
	}

	idx.dim = dim
	idx.passages = append([]domain.Passage(nil), passages...)
	idx.vectors = append([][]float32(nil), vectors...)
	return idx, nil
}

// Query returns up to k passages ranked by ascending Euclidean distance.
// Equal distances resolve to the lower sequence index first.
func (i *Index) Query(vec []float32, k int) ([]Hit, error) {
	if len(i.vectors) == 0 {
		return nil, nil
	}
	if len(vec) != i.dim {
		return nil, fmt.Errorf("query dim %d, index dim %d: %w", len(vec), i.dim, domain.ErrVectorDimMismatch)
	}

	hits := make([]Hit, len(i.vectors))
	for j := range i.vectors {
		hits[j] = Hit{Passage: i.passages[j], Distance: l2(vec, i.vectors[j])}
	}
	// Stable sort over seq-ordered input keeps insertion order for ties.
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Distance < hits[b].Distance })

	if k <= 0 || k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// SampleRandom returns a passage chosen uniformly at random.
func (i *Index) SampleRandom() (domain.Passage, error) {
	if len(i.passages) == 0 {
		return domain.Passage{}, domain.ErrEmptyIndex
	}
	i.mu.Lock()
	n := i.rng.Intn(len(i.passages))
	i.mu.Unlock()
	return i.passages[n], nil
}

// Get returns the passage with the given sequence index.
func (i *Index) Get(seq int) (domain.Passage, bool) {
	if seq < 0 || seq >= len(i.passages) {
		return domain.Passage{}, false
	}
	return i.passages[seq], true
}

// Len reports the number of indexed passages.
func (i *Index) Len() int { return len(i.passages) }

// Dimensions reports the vector dimensionality, 0 for an empty index.
func (i *Index) Dimensions() int { return i.dim }

// Passages returns the ordered passage sequence.
func (i *Index) Passages() []domain.Passage { return i.passages }

// Vector returns the embedding stored for the given sequence index.
func (i *Index) Vector(seq int) ([]float32, bool) {
	if seq < 0 || seq >= len(i.vectors) {
		return nil, false
	}
	return i.vectors[seq], true
}

// Serialization layout (little-endian):
// dim(uint32), n(uint32), then per passage:
// seq(uint32), sourceLen(uint32), source, start(uint32), end(uint32),
// textLen(uint32), text, vec(float32[dim]).

// MarshalBinary serializes the index into a single artifact. The round-trip
// preserves passage order, text, and vectors exactly.
func (i *Index) MarshalBinary() ([]byte, error) {
	size := 8
	for _, p := range i.passages {
		size += 4 + 4 + len(p.Source) + 4 + 4 + 4 + len(p.Text) + 4*i.dim
	}
	out := make([]byte, 0, size)

	putU32 := func(v uint32) {
		out = binary.LittleEndian.AppendUint32(out, v)
	}
	putStr := func(s string) {
		putU32(uint32(len(s)))
		out = append(out, s...)
	}

	putU32(uint32(i.dim))
	putU32(uint32(len(i.passages)))
	for j, p := range i.passages {
		putU32(uint32(p.Seq))
		putStr(p.Source)
		putU32(uint32(p.Start))
		putU32(uint32(p.End))
		putStr(p.Text)
		for _, f := range i.vectors[j] {
			putU32(math.Float32bits(f))
		}
	}
	return out, nil
}

// Unmarshal restores an index from its serialized artifact. Truncated or
// inconsistent data fails with domain.ErrCorruptIndex.
func Unmarshal(data []byte) (*Index, error) {
	r := reader{data: data}

	dim, err := r.u32()
	if err != nil {
		return nil, err
	}
	n, err := r.u32()
	if err != nil {
		return nil, err
	}

	// Bound header counts against the payload before allocating: each passage
	// occupies at least 20 bytes (seq, start, end, two length prefixes) plus
	// its vector. An inconsistent header must fail, not exhaust memory.
	const minPassageBytes = 20
	rest := uint64(r.remaining())
	if perPassage := minPassageBytes + 4*uint64(dim); uint64(n) > rest/perPassage {
		return nil, fmt.Errorf("header dim %d and count %d exceed artifact length %d: %w", dim, n, len(data), domain.ErrCorruptIndex)
	}

	passages := make([]domain.Passage, 0, n)
	vectors := make([][]float32, 0, n)
	for j := uint32(0); j < n; j++ {
		seq, err := r.u32()
		if err != nil {
			return nil, err
		}
		source, err := r.str()
		if err != nil {
			return nil, err
		}
		start, err := r.u32()
		if err != nil {
			return nil, err
		}
		end, err := r.u32()
		if err != nil {
			return nil, err
		}
		text, err := r.str()
		if err != nil {
			return nil, err
		}
		vec := make([]float32, dim)
		for d := uint32(0); d < dim; d++ {
			bits, err := r.u32()
			if err != nil {
				return nil, err
			}
			vec[d] = math.Float32frombits(bits)
		}
		passages = append(passages, domain.Passage{
			Seq:    int(seq),
			Source: source,
			Start:  int(start),
			End:    int(end),
			Text:   text,
		})
		vectors = append(vectors, vec)
	}
	if !r.done() {
		return nil, fmt.Errorf("trailing %d bytes after %d passages: %w", r.remaining(), n, domain.ErrCorruptIndex)
	}

	idx, err := Build(passages, vectors)
	if err != nil {
		return nil, fmt.Errorf("rebuild from artifact: %w: %w", domain.ErrCorruptIndex, err)
	}
	return idx, nil
}

type reader struct {
	data []byte
	off  int
}

func (r *reader) u32() (uint32, error) {
	if r.off+4 > len(r.data) {
		return 0, fmt.Errorf("truncated at offset %d: %w", r.off, domain.ErrCorruptIndex)
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) str() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	if r.off+int(n) > len(r.data) {
		return "", fmt.Errorf("truncated string at offset %d: %w", r.off, domain.ErrCorruptIndex)
	}
	s := string(r.data[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}

func (r *reader) done() bool     { return r.off == len(r.data) }
func (r *reader) remaining() int { return len(r.data) - r.off }

func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
