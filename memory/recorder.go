package memory

// Store is one write observed by a Recorder.
type Store struct {
	Addr uint64
	Data []byte
}

// Recorder is a memory sink that remembers every write. It accepts any
// address and is meant for tests.
type Recorder struct {
	stores []Store
	bytes  map[uint64]byte
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{bytes: make(map[uint64]byte)}
}

// Write records a copy of data at addr.
func (r *Recorder) Write(addr uint64, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	r.stores = append(r.stores, Store{Addr: addr, Data: buf})

	for i, b := range buf {
		r.bytes[addr+uint64(i)] = b
	}
	return nil
}

// Stores returns the writes in the order they happened.
func (r *Recorder) Stores() []Store {
	return r.stores
}

// WriteCount returns the number of Write calls.
func (r *Recorder) WriteCount() int {
	return len(r.stores)
}

// BytesWritten returns the total length of all writes.
func (r *Recorder) BytesWritten() uint64 {
	var n uint64
	for _, s := range r.stores {
		n += uint64(len(s.Data))
	}
	return n
}

// Touched reports whether any write covered addr.
func (r *Recorder) Touched(addr uint64) bool {
	_, ok := r.bytes[addr]
	return ok
}

// Snapshot returns n bytes starting at addr as last written. Untouched
// bytes read as zero; use Touched to tell them apart.
func (r *Recorder) Snapshot(addr uint64, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = r.bytes[addr+uint64(i)]
	}
	return out
}

// Reset forgets all writes.
func (r *Recorder) Reset() {
	r.stores = nil
	r.bytes = make(map[uint64]byte)
}
