package ports

// Yielder is the cooperative suspension point invoked between chunks. The
// runner calls Yield once after each chunk's progress event so a host
// scheduler can interleave other work during long simulations. It is not a
// concurrency primitive: the run stays on a single goroutine and a no-op
// implementation is a valid "fast mode".
type Yielder interface {
	Yield()
}

// YieldFunc adapts a plain function to a Yielder
type YieldFunc func()

// Yield implements Yielder
func (f YieldFunc) Yield() { f() }
