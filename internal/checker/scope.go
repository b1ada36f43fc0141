package checker

import (
	"sort"

	"github.com/bahimpro2011-code/vixc/internal/vixtypes"
	"golang.org/x/exp/maps"
)

// scopeStack is a stack of flat symbol tables, innermost last. Unlike the
// teacher's parent-pointer Scope, lookups walk the stack directly — this
// keeps the stack shape aligned with the borrow tracker, which is itself
// scope-stack-indexed (see borrow.go).
type scopeStack struct {
	frames []map[string]vixtypes.Type
}

func newScopeStack() *scopeStack {
	s := &scopeStack{}
	s.push()
	return s
}

func (s *scopeStack) push() {
	s.frames = append(s.frames, make(map[string]vixtypes.Type))
}

// pop discards the innermost frame and returns the names it bound, sorted
// so borrow release (see borrow.go) happens in a stable order regardless of
// Go's randomized map iteration.
func (s *scopeStack) pop() []string {
	top := s.frames[len(s.frames)-1]
	names := maps.Keys(top)
	sort.Strings(names)
	s.frames = s.frames[:len(s.frames)-1]
	return names
}

func (s *scopeStack) insert(name string, t vixtypes.Type) {
	s.frames[len(s.frames)-1][name] = t
}

func (s *scopeStack) lookup(name string) (vixtypes.Type, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if t, ok := s.frames[i][name]; ok {
			return t, true
		}
	}
	return nil, false
}

// declaredInCurrent reports whether name is already bound in the innermost
// frame (used for the name-conflict check — shadowing an outer binding is
// fine, redeclaring in the same block is not).
func (s *scopeStack) declaredInCurrent(name string) bool {
	_, ok := s.frames[len(s.frames)-1][name]
	return ok
}

func (s *scopeStack) depth() int { return len(s.frames) }
