package meshing

import (
	"github.com/pkg/errors"
)

// MaxVertices is the batch size at which Vertex flushes on its own. It is a
// multiple of four so a flush never splits a quad, and comfortably above the
// face count of a fully exposed 16³ chunk layer.
const MaxVertices = 100000

var (
	// ErrNoAttributes is recorded when Vertex is called before the batch
	// declared its vertex layout with Tex, Color or Plain.
	ErrNoAttributes = errors.New("vertex emitted before the batch layout was set")
	// ErrStreamChanged is recorded when a texture or color stream is switched
	// on or off after vertices were already emitted since Init.
	ErrStreamChanged = errors.New("vertex layout changed mid-batch")
)

// Batch is one submission of quads. TexCoords and Colors are nil when the
// stream is inactive; otherwise they hold 2 and 3 floats per vertex.
type Batch struct {
	Positions []float32
	TexCoords []float32
	Colors    []float32
	Vertices  int
}

// Quads returns the number of quads in the batch.
func (b Batch) Quads() int {
	return b.Vertices / 4
}

// HasTexture reports whether the batch carries texture coordinates.
func (b Batch) HasTexture() bool { return b.TexCoords != nil }

// HasColor reports whether the batch carries vertex colors.
func (b Batch) HasColor() bool { return b.Colors != nil }

// Sink receives flushed batches. The slices are only valid for the duration
// of the call; implementations that keep them must copy.
type Sink interface {
	Submit(batch Batch) error
}

// Batcher accumulates quad vertices and hands them to a Sink. Errors are
// sticky: after the first failure every call is a no-op until Init, and
// Flush returns the error.
type Batcher struct {
	sink Sink

	positions []float32
	texCoords []float32
	colors    []float32
	vertices  int

	u, v    float32
	r, g, b float32

	hasTexture bool
	hasColor   bool
	configured bool

	err error
}

// NewBatcher creates a batcher that submits to sink.
func NewBatcher(sink Sink) *Batcher {
	return &Batcher{
		sink:      sink,
		positions: make([]float32, 0, 3*1024),
	}
}

// SetSink redirects future flushes.
func (t *Batcher) SetSink(sink Sink) {
	t.sink = sink
}

// Init discards pending vertices and starts a batch with no layout.
func (t *Batcher) Init() {
	t.clear()
	t.hasTexture = false
	t.hasColor = false
	t.configured = false
	t.err = nil
}

func (t *Batcher) clear() {
	t.positions = t.positions[:0]
	t.texCoords = t.texCoords[:0]
	t.colors = t.colors[:0]
	t.vertices = 0
}

// Tex sets the texture coordinate for following vertices and enables the
// texture stream.
func (t *Batcher) Tex(u, v float32) {
	if t.err != nil {
		return
	}
	if !t.hasTexture && t.vertices > 0 {
		t.err = errors.Wrap(ErrStreamChanged, "texture enabled")
		return
	}
	t.hasTexture = true
	t.configured = true
	t.u, t.v = u, v
}

// Color sets the color for following vertices and enables the color stream.
func (t *Batcher) Color(r, g, b float32) {
	if t.err != nil {
		return
	}
	if !t.hasColor && t.vertices > 0 {
		t.err = errors.Wrap(ErrStreamChanged, "color enabled")
		return
	}
	t.hasColor = true
	t.configured = true
	t.r, t.g, t.b = r, g, b
}

// Plain declares a position-only batch.
func (t *Batcher) Plain() {
	if t.err != nil {
		return
	}
	if (t.hasTexture || t.hasColor) && t.vertices > 0 {
		t.err = errors.Wrap(ErrStreamChanged, "streams disabled")
		return
	}
	t.hasTexture = false
	t.hasColor = false
	t.configured = true
}

// VertexUV is Tex followed by Vertex.
func (t *Batcher) VertexUV(x, y, z, u, v float32) {
	t.Tex(u, v)
	t.Vertex(x, y, z)
}

// Vertex appends one vertex with the current attributes. Reaching
// MaxVertices flushes the batch.
func (t *Batcher) Vertex(x, y, z float32) {
	if t.err != nil {
		return
	}
	if !t.configured {
		t.err = ErrNoAttributes
		return
	}
	if t.hasTexture {
		t.texCoords = append(t.texCoords, t.u, t.v)
	}
	if t.hasColor {
		t.colors = append(t.colors, t.r, t.g, t.b)
	}
	t.positions = append(t.positions, x, y, z)
	t.vertices++

	if t.vertices >= MaxVertices {
		t.flush()
	}
}

// Vertices returns the number of vertices waiting to be flushed.
func (t *Batcher) Vertices() int {
	return t.vertices
}

// Err returns the sticky error, if any.
func (t *Batcher) Err() error {
	return t.err
}

// Flush submits pending vertices and returns the first error seen since Init.
func (t *Batcher) Flush() error {
	if t.err != nil {
		return t.err
	}
	t.flush()
	return t.err
}

func (t *Batcher) flush() {
	if t.vertices == 0 {
		return
	}
	batch := Batch{
		Positions: t.positions,
		Vertices:  t.vertices,
	}
	if t.hasTexture {
		batch.TexCoords = t.texCoords
	}
	if t.hasColor {
		batch.Colors = t.colors
	}
	if t.sink == nil {
		t.err = errors.New("batcher has no sink")
		return
	}
	if err := t.sink.Submit(batch); err != nil {
		t.err = errors.Wrap(err, "submit batch")
		return
	}
	t.clear()
}

// Recorder is a Sink that keeps copies of every batch it receives.
type Recorder struct {
	Batches []Batch
}

// Submit copies the batch.
func (r *Recorder) Submit(b Batch) error {
	cp := Batch{
		Positions: append([]float32(nil), b.Positions...),
		Vertices:  b.Vertices,
	}
	if b.TexCoords != nil {
		cp.TexCoords = append([]float32(nil), b.TexCoords...)
	}
	if b.Colors != nil {
		cp.Colors = append([]float32(nil), b.Colors...)
	}
	r.Batches = append(r.Batches, cp)
	return nil
}

// Reset forgets recorded batches.
func (r *Recorder) Reset() {
	r.Batches = nil
}

// Take returns the recorded batches and resets the recorder.
func (r *Recorder) Take() []Batch {
	out := r.Batches
	r.Batches = nil
	return out
}

// Vertices returns the total vertex count over all recorded batches.
func (r *Recorder) Vertices() int {
	n := 0
	for _, b := range r.Batches {
		n += b.Vertices
	}
	return n
}
