package artidx

import (
	"io"

	"github.com/hupe1980/artidx/codec"
	"github.com/hupe1980/artidx/internal/art"
)

// Stats is a point-in-time summary of an index. Node counts come from an
// unvalidated walk and are exact only while no writer is active.
type Stats struct {
	Keys   int64 `json:"keys"`
	Values int64 `json:"values"`

	// Nodes counts reachable inner nodes per variant.
	Nodes  map[string]int64 `json:"nodes"`
	Leaves int64            `json:"leaves"`
	Height int              `json:"height"`

	// LiveNodes counts allocated inner nodes per variant, including retired
	// nodes still waiting for their epoch to pass.
	LiveNodes  map[string]int64 `json:"live_nodes"`
	FreshNodes int64            `json:"fresh_nodes"`
	NodeBytes  int64            `json:"node_bytes"`

	// MemoryBytes is the leaf and TID memory charged against MemoryLimit.
	// MemoryDenied counts inserts the limit refused.
	MemoryBytes  int64 `json:"memory_bytes"`
	MemoryLimit  int64 `json:"memory_limit,omitempty"`
	MemoryDenied int64 `json:"memory_denied"`

	Epoch          uint64 `json:"epoch"`
	RetiredPending int64  `json:"retired_pending"`
	Reclaimed      int64  `json:"reclaimed"`

	// Sessions is the number of session slots; closed sessions' slots are
	// reused.
	Sessions     int   `json:"sessions"`
	IdleSessions int   `json:"idle_sessions"`
	Restarts     int64 `json:"restarts"`
}

// WriteJSON writes s as one line of JSON.
func (s Stats) WriteJSON(w io.Writer) error {
	return codec.Encode(w, codec.Default, s)
}

// Stats collects a summary of the index.
func (idx *Index) Stats() (Stats, error) {
	s, err := idx.acquire()
	if err != nil {
		return Stats{}, err
	}
	defer idx.release(s)

	if !s.enter() {
		return Stats{}, ErrClosed
	}
	defer idx.exit()

	ts := idx.tree.Stats(s.ti)
	st := Stats{
		Keys:           ts.Keys,
		Values:         ts.Values,
		Nodes:          make(map[string]int64, len(ts.Nodes)),
		Leaves:         ts.Leaves,
		Height:         ts.MaxDepth,
		LiveNodes:      make(map[string]int64, len(ts.LiveNodes)),
		FreshNodes:     ts.FreshNodes,
		NodeBytes:      ts.NodeBytes,
		MemoryBytes:    idx.rc.MemoryUsage(),
		MemoryLimit:    idx.rc.MemoryLimit(),
		MemoryDenied:   idx.rc.Denied(),
		Epoch:          ts.Epoch,
		RetiredPending: ts.Retired,
		Reclaimed:      ts.Freed,
		Sessions:       ts.Threads,
		IdleSessions:   len(idx.idle),
		Restarts:       ts.Restarts,
	}
	for k := art.KindN4; k <= art.KindN256; k++ {
		st.Nodes[k.String()] = ts.Nodes[k]
		st.LiveNodes[k.String()] = ts.LiveNodes[k]
	}
	return st, nil
}
