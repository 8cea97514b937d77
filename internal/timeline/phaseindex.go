package timeline

// PhaseIndex maps phase keys to the indices of their beats. Phases are kept
// in the order they first appear.
type PhaseIndex struct {
	order []string
	beats map[string][]int
}

// PhaseEntry is one phase with its beat indices.
type PhaseEntry struct {
	Phase string `json:"phase" yaml:"phase"`
	Beats []int  `json:"beats" yaml:"beats"`
}

// BuildPhaseIndex indexes a compiled beat list.
func BuildPhaseIndex(beats []Beat) PhaseIndex {
	idx := PhaseIndex{beats: make(map[string][]int)}
	for _, b := range beats {
		key := b.Phase
		if key == "" {
			key = "unknown"
		}
		if _, ok := idx.beats[key]; !ok {
			idx.order = append(idx.order, key)
		}
		idx.beats[key] = append(idx.beats[key], b.Index)
	}
	return idx
}

// Phases returns the phase keys in first-seen order.
func (p PhaseIndex) Phases() []string {
	return append([]string(nil), p.order...)
}

// Beats returns the beat indices of phase, or nil for an unknown phase.
func (p PhaseIndex) Beats(phase string) []int {
	return append([]int(nil), p.beats[phase]...)
}

// Has reports whether the phase has any beats.
func (p PhaseIndex) Has(phase string) bool {
	_, ok := p.beats[phase]
	return ok
}

// Entries returns the index as an ordered list.
func (p PhaseIndex) Entries() []PhaseEntry {
	entries := make([]PhaseEntry, 0, len(p.order))
	for _, phase := range p.order {
		entries = append(entries, PhaseEntry{Phase: phase, Beats: p.Beats(phase)})
	}
	return entries
}
