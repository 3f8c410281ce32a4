package revmodel

// Revision is a value of the monotonic mutation counter. Revision 0 means
// "never mutated".
type Revision uint64

// Clock is a monotonic revision counter. Every committed mutation advances it
// exactly once.
//
// Clock performs no locking: the object graph is mutated synchronously from a
// single goroutine.
type Clock struct {
	current Revision
}

// NewClock returns a clock whose first Read is 1.
func NewClock() *Clock { return &Clock{current: 1} }

// Advance moves the clock forward by one and returns the new revision.
func (c *Clock) Advance() Revision {
	c.current++
	return c.current
}

// Read returns the current revision without advancing.
func (c *Clock) Read() Revision { return c.current }

var defaultClock = NewClock()

// DefaultClock returns the process-wide clock used by DefaultLifecycle.
func DefaultClock() *Clock { return defaultClock }

// mutation spans one public mutating operation. It advances the clock lazily,
// at most once, so that every instance touched by the operation shares the
// same stamp.
type mutation struct {
	lc  *Lifecycle
	rev Revision
}

func newMutation(lc *Lifecycle) *mutation { return &mutation{lc: lc} }

func (m *mutation) revision() Revision {
	if m.rev == 0 {
		m.rev = m.lc.Clock().Advance()
	}
	return m.rev
}

// committed reports whether the operation changed anything.
func (m *mutation) committed() bool { return m.rev != 0 }

// node is the mutation bookkeeping shared by a mutable instance and its
// read-only facade.
type node struct {
	lc    *Lifecycle
	stamp Revision
}

func (n *node) touch(m *mutation) { n.stamp = m.revision() }

func (n *node) isDirty(since Revision) bool { return n.stamp > since }
