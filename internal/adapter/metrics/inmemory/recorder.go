package inmemory

import "sync"

type Snapshot struct {
	IngestTotal        uint64            `json:"ingestTotal"`
	IngestAccepted     uint64            `json:"ingestAccepted"`
	IngestRejected     uint64            `json:"ingestRejected"`
	IngestUnauthorized uint64            `json:"ingestUnauthorized"`
	IngestFailure      uint64            `json:"ingestFailure"`
	ByEndedReason      map[string]uint64 `json:"byEndedReason"`
}

type Recorder struct {
	mu           sync.Mutex
	accepted     uint64
	rejected     uint64
	unauthorized uint64
	failure      uint64
	byReason     map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byReason: map[string]uint64{},
	}
}

// RecordAccepted counts a stored session. An empty reason is kept as "none".
func (r *Recorder) RecordAccepted(endedReason string) {
	if endedReason == "" {
		endedReason = "none"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accepted++
	r.byReason[endedReason]++
}

func (r *Recorder) RecordRejected() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected++
}

func (r *Recorder) RecordUnauthorized() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unauthorized++
}

func (r *Recorder) RecordFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failure++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		IngestAccepted:     r.accepted,
		IngestRejected:     r.rejected,
		IngestUnauthorized: r.unauthorized,
		IngestFailure:      r.failure,
		IngestTotal:        r.accepted + r.rejected + r.unauthorized + r.failure,
		ByEndedReason:      make(map[string]uint64, len(r.byReason)),
	}
	for k, v := range r.byReason {
		out.ByEndedReason[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
