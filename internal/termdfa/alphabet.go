package termdfa

// byteClasses partitions the 256 possible byte values into equivalence
// classes such that every byte-range transition in the NFA respects class
// boundaries. Two bytes that always take the same transitions everywhere
// in the automaton share a class, shrinking the DFA's per-state transition
// row from 256 entries down to the number of distinct classes — the same
// idea as the teacher's alphabet reduction for its lazy DFA, applied here
// at eager-build time instead of lazily per state.
type byteClasses struct {
	classOf [256]uint8
	reps    []byte // one representative byte per class, for simulating a move
}

func newByteClasses(states []nfaState) *byteClasses {
	var boundary [257]bool
	for _, st := range states {
		if st.kind != kindByteRange {
			continue
		}
		boundary[int(st.lo)] = true
		if int(st.hi)+1 <= 256 {
			boundary[int(st.hi)+1] = true
		}
	}
	boundary[0] = true

	bc := &byteClasses{}
	class := -1
	for i := 0; i < 256; i++ {
		if boundary[i] {
			class++
			bc.reps = append(bc.reps, byte(i))
		}
		bc.classOf[i] = uint8(class)
	}
	return bc
}

func (bc *byteClasses) numClasses() int { return len(bc.reps) }

func (bc *byteClasses) classFor(b byte) int { return int(bc.classOf[b]) }
