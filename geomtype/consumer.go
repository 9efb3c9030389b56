package geomtype

// Consumer is the push-based visitor protocol (spec.md §3/§9) that
// decouples geometry producers (wkb.Reader, wkt.Reader, blob.Reader) from
// sinks (wkb.Writer, wkt.Writer, blob.Writer, envelope.Accumulator). Any
// reader can drive any consumer without materialising an intermediate
// tree.
//
// Every method returns an error; a non-nil error short-circuits the
// producer, which must not call any further Consumer methods. Unset
// callbacks on BaseConsumer default to no-ops that return nil, matching
// spec.md's "unset callbacks default to no-ops that return success."
//
// Implementations: wkb.Writer, wkt.Writer, blob.Writer, envelope.Accumulator,
// foreign.Builder.
type Consumer interface {
	// Begin is called once, before the first BeginGeometry.
	Begin() error
	// End is called once, after the matching End of the outermost geometry.
	End() error
	// BeginGeometry is called when entering a geometry node, with its
	// header. Nodes nest; a producer must not exceed MaxDepth.
	BeginGeometry(h Header) error
	// EndGeometry is called when leaving a geometry node, with the same
	// header passed to the matching BeginGeometry.
	EndGeometry(h Header) error
	// Coordinates delivers a batch of points belonging to the geometry
	// most recently opened by BeginGeometry. pointCount is the number of
	// points represented in coords (skipCount ordinates of header-sized
	// stride are a carried-over prefix from a previous batch, present so
	// circular-string arc triplets are never split across callbacks).
	// coords holds (pointCount * h.Ordinates) float64 values; the first
	// skipCount values are the carried-over prefix and are not new
	// coordinates.
	Coordinates(h Header, pointCount int, coords []float64, skipCount int) error
}

// BaseConsumer implements Consumer with no-op methods that all return
// nil. Embed it to implement only the callbacks a given sink cares about.
type BaseConsumer struct{}

func (BaseConsumer) Begin() error                                              { return nil }
func (BaseConsumer) End() error                                                { return nil }
func (BaseConsumer) BeginGeometry(h Header) error                              { return nil }
func (BaseConsumer) EndGeometry(h Header) error                                { return nil }
func (BaseConsumer) Coordinates(h Header, n int, c []float64, skip int) error { return nil }
