package viewer

// Sequence is the ordered list of slide filenames of one project, as
// returned by the backend. It does not change after a session loads it.
type Sequence struct {
	files []string
}

// NewSequence copies files into a Sequence.
func NewSequence(files []string) Sequence {
	return Sequence{files: append([]string(nil), files...)}
}

// Len returns the number of slides.
func (s Sequence) Len() int { return len(s.files) }

// Valid reports whether i addresses a slide.
func (s Sequence) Valid(i int) bool { return i >= 0 && i < len(s.files) }

// At returns the filename at i, or "" when i is out of range.
func (s Sequence) At(i int) string {
	if !s.Valid(i) {
		return ""
	}
	return s.files[i]
}

// Files returns a copy of the filenames.
func (s Sequence) Files() []string {
	return append([]string(nil), s.files...)
}
