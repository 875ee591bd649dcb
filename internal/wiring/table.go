package wiring

// MappingTable maps hardware order to design order: At(hw) is the design
// index of the hw-th LED on the data line. Tables are values; nothing
// mutates one after construction.
type MappingTable struct {
	idx []int
}

// NewMappingTable copies indices into a table. It does not validate them;
// use Validate or Bind before consuming the result.
func NewMappingTable(indices []int) MappingTable {
	return MappingTable{idx: append([]int(nil), indices...)}
}

func (t MappingTable) Len() int { return len(t.idx) }

func (t MappingTable) At(hw int) int { return t.idx[hw] }

// Indices returns a copy of the hardware→design indices.
func (t MappingTable) Indices() []int { return append([]int(nil), t.idx...) }

func (t MappingTable) Equal(o MappingTable) bool {
	if len(t.idx) != len(o.idx) {
		return false
	}
	for i, v := range t.idx {
		if o.idx[i] != v {
			return false
		}
	}
	return true
}

// Coord returns the design pixel driven by hardware index hw in a grid of width w.
func (t MappingTable) Coord(hw, w int) Coord {
	d := t.idx[hw]
	return Coord{X: d % w, Y: d / w}
}

// Binding is a table that passed Validate for a fixed pixel count. The same
// *Binding is handed to every consumer of a pattern so that preview and
// export can never disagree.
type Binding struct {
	table   MappingTable
	inverse []int
}

// Bind validates t against n pixels and precomputes its inverse.
func Bind(t MappingTable, n int) (*Binding, error) {
	if err := Validate(t, n); err != nil {
		return nil, err
	}
	inv := make([]int, n)
	for hw, d := range t.idx {
		inv[d] = hw
	}
	return &Binding{table: t, inverse: inv}, nil
}

func (b *Binding) Table() MappingTable { return b.table }

func (b *Binding) Len() int { return b.table.Len() }

// Design returns the design index shown by LED hw.
func (b *Binding) Design(hw int) int { return b.table.idx[hw] }

// Hardware returns the LED that shows design index d.
func (b *Binding) Hardware(d int) int { return b.inverse[d] }

// HardwareIndex returns the LED at design pixel (x, y) of a grid of width w.
func (b *Binding) HardwareIndex(x, y, w int) int { return b.Hardware(y*w + x) }

// Check re-runs validation on the bound table.
func (b *Binding) Check() error { return Validate(b.table, len(b.inverse)) }
