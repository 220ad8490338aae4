package spatial

// Mask is a set of point indices with O(1) membership updates.
// A nil *Mask is a valid empty set for reads.
type Mask struct {
	set []bool
	n   int
}

// NewMask returns an empty mask able to hold indices in [0, size).
func NewMask(size int) *Mask {
	return &Mask{set: make([]bool, size)}
}

// Has reports whether i is in the mask.
func (m *Mask) Has(i int) bool {
	if m == nil || i < 0 || i >= len(m.set) {
		return false
	}
	return m.set[i]
}

// Add inserts i and reports whether it was newly added.
func (m *Mask) Add(i int) bool {
	if m.set[i] {
		return false
	}
	m.set[i] = true
	m.n++
	return true
}

// Remove deletes i and reports whether it was present.
func (m *Mask) Remove(i int) bool {
	if !m.set[i] {
		return false
	}
	m.set[i] = false
	m.n--
	return true
}

// Len returns the number of indices in the mask.
func (m *Mask) Len() int {
	if m == nil {
		return 0
	}
	return m.n
}
