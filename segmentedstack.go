package scopedi

import "sync"

// segmentedStack is a LIFO of in-progress request contexts partitioned into
// segments, so cycle detection can be scoped to "since the current segment
// opened" rather than the whole stack (spec.md §3, §4.5).
//
// A single ResolveOperation owns one segmentedStack and runs on one
// goroutine at a time (spec.md §5), so the mutex here guards against the
// rare case of a diagnostic sink or completion handler inspecting the stack
// from another goroutine rather than against concurrent pushes.
type segmentedStack struct {
	mu      sync.Mutex
	entries []*RequestContext
	// segmentBoundaries holds the stack depth at which each currently-open
	// segment began, most recently opened last.
	segmentBoundaries []int
}

// segmentHandle closes the segment it was returned for.
type segmentHandle struct {
	stack *segmentedStack
}

func newSegmentedStack() *segmentedStack {
	return &segmentedStack{}
}

// push appends ctx to the top of the stack.
func (s *segmentedStack) push(ctx *RequestContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, ctx)
}

// pop removes and returns the top of the stack. It panics if the stack is
// empty, since callers always pair pop with a prior push within the same
// request.
func (s *segmentedStack) pop() *RequestContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.entries)
	ctx := s.entries[n-1]
	s.entries = s.entries[:n-1]
	return ctx
}

// len reports the current stack depth.
func (s *segmentedStack) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// sliceFrom returns the contexts pushed at or after index start, in push
// order. Used by ResolveOperation to describe the in-progress chain of a
// CircularDependencyError.
func (s *segmentedStack) sliceFrom(start int) []*RequestContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	if start >= len(s.entries) {
		return nil
	}
	out := make([]*RequestContext, len(s.entries)-start)
	copy(out, s.entries[start:])
	return out
}

// currentSegmentStart returns the depth at which the innermost open segment
// began, or 0 if no segment is open (the whole stack participates).
func (s *segmentedStack) currentSegmentStart() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.segmentBoundaries) == 0 {
		return 0
	}
	return s.segmentBoundaries[len(s.segmentBoundaries)-1]
}

// containsInCurrentSegment reports whether any entry at or above the current
// segment boundary carries a registration equal to reg (spec.md §4.5, §5:
// "a request is a cycle iff an equal registration is already present in the
// current segment of the request stack").
func (s *segmentedStack) containsInCurrentSegment(reg *Registration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if len(s.segmentBoundaries) > 0 {
		start = s.segmentBoundaries[len(s.segmentBoundaries)-1]
	}

	for i := start; i < len(s.entries); i++ {
		if s.entries[i].Registration == reg {
			return true
		}
	}
	return false
}

// topScope returns the ActivationScope of the innermost in-progress request,
// or nil if the stack is empty. Used to decide whether a nested
// GetOrCreateInstance call crosses into a new scope and needs its own
// segment.
func (s *segmentedStack) topScope() *LifetimeScope {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return nil
	}
	return s.entries[len(s.entries)-1].ActivationScope
}

// enterSegment opens a new segment whose boundary equals the current depth.
// Closing the returned handle restores the previous boundary; it does not
// pop entries, which the caller is expected to have already popped back.
func (s *segmentedStack) enterSegment() *segmentHandle {
	s.mu.Lock()
	s.segmentBoundaries = append(s.segmentBoundaries, len(s.entries))
	s.mu.Unlock()

	return &segmentHandle{stack: s}
}

// close restores the previous segment boundary.
func (h *segmentHandle) close() {
	h.stack.mu.Lock()
	defer h.stack.mu.Unlock()

	n := len(h.stack.segmentBoundaries)
	if n == 0 {
		return
	}
	h.stack.segmentBoundaries = h.stack.segmentBoundaries[:n-1]
}
