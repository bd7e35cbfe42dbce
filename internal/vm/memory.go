package vm

import (
	"fmt"
	"strings"

	"github.com/lumelang/lume/internal/config"
)

// HandlerMemory is the tagged, self-describing memory of one handler call.
// Fixed-size values live in cells; variable-length ("fractal") values live
// in nested as child HandlerMemory instances, reached through the
// indirection table. The three vectors grow in lockstep, so len(cells) is
// the logical length even when elements are variable-length.
//
// Address spaces:
//   - addr >= 0: call-local memory, read-write.
//   - -ClosureArgsCapacity <= addr < 0: closure-argument memory, read-write.
//   - addr < -ClosureArgsCapacity: global memory, read-only after load.
//
// An instance is owned by exactly one handler invocation. Cross-handler
// payloads must go through AllocPayload, never a shared reference.
type HandlerMemory struct {
	cells       []int64
	indirection []int // parallel to cells; noNested marks a plain cell
	nested      []*HandlerMemory

	closure *HandlerMemory // lazily allocated, capacity ClosureArgsCapacity
	global  *HandlerMemory // shared, immutable after load

	// registers maps a virtual address to a chain of addresses, each one
	// level deeper into nested fractals. Opcodes use chains to address
	// "element j of element i of the array at X" without copying.
	registers map[int][]int
}

const noNested = -1

// New creates an empty call-local memory backed by the given global memory.
// Global may be nil for handlers that never touch it.
func New(global *HandlerMemory) *HandlerMemory {
	return &HandlerMemory{global: global}
}

// NewGlobal creates a memory intended to hold the program's global segment.
// It must be fully populated before any handler runs, and never written
// afterwards.
func NewGlobal() *HandlerMemory {
	return &HandlerMemory{}
}

type space int

const (
	spaceLocal space = iota
	spaceClosure
	spaceGlobal
)

// resolveSpace classifies an address and translates it to an index within
// its segment. The split point between closure and global addressing is
// config.ClosureArgsCapacity.
func resolveSpace(addr int) (space, int) {
	switch {
	case addr >= 0:
		return spaceLocal, addr
	case addr >= -config.ClosureArgsCapacity:
		return spaceClosure, -addr - 1
	default:
		return spaceGlobal, -addr - config.ClosureArgsCapacity - 1
	}
}

func (h *HandlerMemory) segment(s space, op string, addr int) (*HandlerMemory, error) {
	switch s {
	case spaceClosure:
		if h.closure == nil {
			h.closure = &HandlerMemory{
				cells:       make([]int64, config.ClosureArgsCapacity),
				indirection: newIndirection(config.ClosureArgsCapacity),
				global:      h.global,
			}
		}
		return h.closure, nil
	case spaceGlobal:
		if h.global == nil {
			return nil, fmt.Errorf("%s: address %d is global but no global memory is attached", op, addr)
		}
		return h.global, nil
	default:
		return h, nil
	}
}

func newIndirection(n int) []int {
	ind := make([]int, n)
	for i := range ind {
		ind[i] = noNested
	}
	return ind
}

func (h *HandlerMemory) ensure(idx int) {
	for len(h.cells) <= idx {
		h.cells = append(h.cells, 0)
		h.indirection = append(h.indirection, noNested)
	}
}

// ReadFixed reads a fixed-size cell. Negative addresses route to global or
// closure memory per the split point.
func (h *HandlerMemory) ReadFixed(addr int) (int64, error) {
	s, idx := resolveSpace(addr)
	seg, err := h.segment(s, "read fixed", addr)
	if err != nil {
		return 0, err
	}
	if idx >= len(seg.cells) {
		return 0, fmt.Errorf("read fixed: address %d out of bounds (%d cells)", addr, len(seg.cells))
	}
	return seg.cells[idx], nil
}

// WriteFixed writes a fixed-size cell. Writing to global memory is a hard
// error: the global segment is immutable after program load, so a write
// there means the compiler emitted a bad opcode.
func (h *HandlerMemory) WriteFixed(addr int, v int64) error {
	s, idx := resolveSpace(addr)
	if s == spaceGlobal {
		return fmt.Errorf("write fixed: address %d writes to read-only global memory", addr)
	}
	seg, err := h.segment(s, "write fixed", addr)
	if err != nil {
		return err
	}
	seg.ensure(idx)
	seg.cells[idx] = v
	seg.indirection[idx] = noNested
	return nil
}

// ReadFractal returns a copy of the fractal at addr. Negative addresses
// materialize a view over global or closure memory; the copy keeps the
// caller from aliasing a segment it does not own.
func (h *HandlerMemory) ReadFractal(addr int) (*HandlerMemory, error) {
	f, err := h.Fractal(addr)
	if err != nil {
		return nil, err
	}
	return f.Clone(), nil
}

// WriteFractal stores a nested memory at addr, overwriting any previous
// fractal in that slot. Global addresses reject the write; closure
// addresses allocate a fresh closure-fractal slot.
func (h *HandlerMemory) WriteFractal(addr int, f *HandlerMemory) error {
	s, idx := resolveSpace(addr)
	if s == spaceGlobal {
		return fmt.Errorf("write fractal: address %d writes to read-only global memory", addr)
	}
	seg, err := h.segment(s, "write fractal", addr)
	if err != nil {
		return err
	}
	seg.ensure(idx)
	if n := seg.indirection[idx]; n != noNested {
		seg.nested[n] = f
		return nil
	}
	seg.nested = append(seg.nested, f)
	seg.indirection[idx] = len(seg.nested) - 1
	return nil
}

// Fractal resolves the nested memory at addr without copying. When a
// register chain is installed for addr, resolution follows the chain one
// nesting level per entry.
func (h *HandlerMemory) Fractal(addr int) (*HandlerMemory, error) {
	if chain, ok := h.registers[addr]; ok {
		return h.followChain(addr, chain)
	}
	return h.fractalAt(addr, "get fractal")
}

// MutFractal is Fractal for callers that intend to mutate the result. The
// distinction is documentation: resolution is identical, but a mutable use
// of a global address is the caller's bug.
func (h *HandlerMemory) MutFractal(addr int) (*HandlerMemory, error) {
	s, _ := resolveSpace(addr)
	if s == spaceGlobal {
		return nil, fmt.Errorf("get mut fractal: address %d is read-only global memory", addr)
	}
	return h.Fractal(addr)
}

func (h *HandlerMemory) fractalAt(addr int, op string) (*HandlerMemory, error) {
	s, idx := resolveSpace(addr)
	seg, err := h.segment(s, op, addr)
	if err != nil {
		return nil, err
	}
	if idx >= len(seg.indirection) {
		return nil, fmt.Errorf("%s: address %d out of bounds (%d cells)", op, addr, len(seg.indirection))
	}
	n := seg.indirection[idx]
	if n == noNested {
		return nil, fmt.Errorf("%s: address %d holds a fixed value, not a fractal", op, addr)
	}
	return seg.nested[n], nil
}

func (h *HandlerMemory) followChain(addr int, chain []int) (*HandlerMemory, error) {
	if len(chain) == 0 {
		return nil, fmt.Errorf("get fractal: register %d has an empty chain", addr)
	}
	cur, err := h.fractalAt(chain[0], "get fractal")
	if err != nil {
		return nil, err
	}
	for _, step := range chain[1:] {
		if step < 0 || step >= len(cur.indirection) {
			return nil, fmt.Errorf("get fractal: register %d chain step %d out of bounds (%d cells)", addr, step, len(cur.indirection))
		}
		n := cur.indirection[step]
		if n == noNested {
			return nil, fmt.Errorf("get fractal: register %d chain step %d holds a fixed value", addr, step)
		}
		cur = cur.nested[n]
	}
	return cur, nil
}

// SetRegister installs an address chain so later Fractal(addr) calls
// resolve through it.
func (h *HandlerMemory) SetRegister(addr int, chain []int) {
	if h.registers == nil {
		h.registers = make(map[int][]int)
	}
	h.registers[addr] = append([]int(nil), chain...)
}

// PushFractalFixed appends a fixed-size element to the fractal at addr.
func (h *HandlerMemory) PushFractalFixed(addr int, v int64) error {
	f, err := h.MutFractal(addr)
	if err != nil {
		return err
	}
	f.cells = append(f.cells, v)
	f.indirection = append(f.indirection, noNested)
	return nil
}

// PushNestedFractal appends a fresh empty fractal element to the fractal
// at addr and returns it.
func (h *HandlerMemory) PushNestedFractal(addr int) (*HandlerMemory, error) {
	child := New(h.global)
	if err := h.PushNestedFractalMem(addr, child); err != nil {
		return nil, err
	}
	return child, nil
}

// PushNestedFractalMem appends an existing memory as the next element of
// the fractal at addr.
func (h *HandlerMemory) PushNestedFractalMem(addr int, child *HandlerMemory) error {
	f, err := h.MutFractal(addr)
	if err != nil {
		return err
	}
	f.cells = append(f.cells, 0)
	f.nested = append(f.nested, child)
	f.indirection = append(f.indirection, len(f.nested)-1)
	return nil
}

// PopFractal removes and returns the last element of the fractal at addr.
// A fixed element comes back wrapped in a one-cell memory. Popping an
// empty fractal is an explicit error, not a panic: correct generated code
// never does it, so an occurrence points at a compiler bug upstream.
func (h *HandlerMemory) PopFractal(addr int) (*HandlerMemory, error) {
	f, err := h.MutFractal(addr)
	if err != nil {
		return nil, err
	}
	last := len(f.cells) - 1
	if last < 0 {
		return nil, fmt.Errorf("pop fractal: cannot pop empty array at address %d", addr)
	}
	var out *HandlerMemory
	if n := f.indirection[last]; n != noNested {
		out = f.nested[n]
	} else {
		out = New(h.global)
		out.cells = append(out.cells, f.cells[last])
		out.indirection = append(out.indirection, noNested)
	}
	f.cells = f.cells[:last]
	f.indirection = f.indirection[:last]
	return out, nil
}

// CopyFractal deep-clones the fractal at inAddr into outAddr, overwriting
// an existing destination slot or allocating a new one. The missing-slot
// branch tolerates a destination that was never initialized; a correct
// opcode stream initializes it first, so this is a known lenience.
func (h *HandlerMemory) CopyFractal(inAddr, outAddr int) error {
	src, err := h.Fractal(inAddr)
	if err != nil {
		return err
	}
	return h.WriteFractal(outAddr, src.Clone())
}

// Len reports the logical element count of the fractal at addr.
func (h *HandlerMemory) Len(addr int) (int, error) {
	f, err := h.Fractal(addr)
	if err != nil {
		return 0, err
	}
	return len(f.cells), nil
}

// AllocPayload produces an independent deep copy of the fractal at addr,
// detached from this handler's global segment reference. This is the only
// sanctioned way to hand a value to another handler invocation.
func (h *HandlerMemory) AllocPayload(addr int) (*HandlerMemory, error) {
	f, err := h.Fractal(addr)
	if err != nil {
		return nil, err
	}
	out := f.Clone()
	out.global = nil
	return out, nil
}

// Clone deep-copies the cell, indirection, and nested vectors. The global
// segment reference is shared, not copied: it is immutable by contract.
func (h *HandlerMemory) Clone() *HandlerMemory {
	out := &HandlerMemory{
		cells:       append([]int64(nil), h.cells...),
		indirection: append([]int(nil), h.indirection...),
		global:      h.global,
	}
	if len(h.nested) > 0 {
		out.nested = make([]*HandlerMemory, len(h.nested))
		for i, n := range h.nested {
			out.nested[i] = n.Clone()
		}
	}
	if h.closure != nil {
		out.closure = h.closure.Clone()
	}
	if len(h.registers) > 0 {
		out.registers = make(map[int][]int, len(h.registers))
		for k, v := range h.registers {
			out.registers[k] = append([]int(nil), v...)
		}
	}
	return out
}

// String renders the memory with nested fractals indented, for debugging.
func (h *HandlerMemory) String() string {
	var b strings.Builder
	h.format(&b, 0)
	return b.String()
}

func (h *HandlerMemory) format(b *strings.Builder, depth int) {
	pad := strings.Repeat("  ", depth)
	for i, c := range h.cells {
		if n := h.indirection[i]; n != noNested {
			fmt.Fprintf(b, "%s[%d] fractal:\n", pad, i)
			h.nested[n].format(b, depth+1)
			continue
		}
		fmt.Fprintf(b, "%s[%d] %d\n", pad, i, c)
	}
	if len(h.cells) == 0 {
		fmt.Fprintf(b, "%s(empty)\n", pad)
	}
}
