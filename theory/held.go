package theory

// HeldNotes is the ordered set of notes currently down. Insertion order is
// kept so the most recent note is always last.
type HeldNotes struct {
	n     int
	notes [128]uint8
}

// Add appends note unless it is already held
func (h *HeldNotes) Add(note uint8) bool {
	if note > 127 || h.index(note) >= 0 {
		return false
	}
	h.notes[h.n] = note
	h.n++
	return true
}

// Remove drops the first occurrence of note
func (h *HeldNotes) Remove(note uint8) bool {
	i := h.index(note)
	if i < 0 {
		return false
	}
	copy(h.notes[i:h.n-1], h.notes[i+1:h.n])
	h.n--
	return true
}

func (h *HeldNotes) index(note uint8) int {
	for i := 0; i < h.n; i++ {
		if h.notes[i] == note {
			return i
		}
	}
	return -1
}

// Len returns the number of held notes
func (h *HeldNotes) Len() int {
	return h.n
}

// At returns the i-th held note in press order
func (h *HeldNotes) At(i int) uint8 {
	return h.notes[i]
}

// Last returns the most recently pressed note
func (h *HeldNotes) Last() (uint8, bool) {
	if h.n == 0 {
		return 0, false
	}
	return h.notes[h.n-1], true
}

// Clear releases everything
func (h *HeldNotes) Clear() {
	h.n = 0
}

// Slice copies the held notes out (allocates; not for the audio path)
func (h *HeldNotes) Slice() []uint8 {
	out := make([]uint8, h.n)
	copy(out, h.notes[:h.n])
	return out
}
