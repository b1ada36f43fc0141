package checker

import "github.com/bahimpro2011-code/vixc/internal/diag"

// borrowSite records where a borrow was taken, for the conflict diagnostic's
// secondary span.
type borrowSite struct {
	span diag.Span
}

// borrowTracker enforces the same rule as Rust's borrow checker, scaled
// down to what Vix's reference types need: a variable may have either one
// mutable borrow or any number of immutable borrows outstanding at a time,
// never both.
type borrowTracker struct {
	mutable   map[string]borrowSite
	immutable map[string][]borrowSite
}

func newBorrowTracker() *borrowTracker {
	return &borrowTracker{
		mutable:   make(map[string]borrowSite),
		immutable: make(map[string][]borrowSite),
	}
}

// AddMutableBorrow records a `&mut` borrow of name taken at span. It returns
// the conflicting site if name is already borrowed (mutably or immutably).
func (b *borrowTracker) AddMutableBorrow(name string, span diag.Span) (diag.Span, bool) {
	if site, ok := b.mutable[name]; ok {
		return site.span, true
	}
	if sites := b.immutable[name]; len(sites) > 0 {
		return sites[0].span, true
	}
	b.mutable[name] = borrowSite{span: span}
	return diag.Span{}, false
}

// AddImmutableBorrow records a `&` borrow of name taken at span. It returns
// the conflicting site if name is already mutably borrowed.
func (b *borrowTracker) AddImmutableBorrow(name string, span diag.Span) (diag.Span, bool) {
	if site, ok := b.mutable[name]; ok {
		return site.span, true
	}
	b.immutable[name] = append(b.immutable[name], borrowSite{span: span})
	return diag.Span{}, false
}

// Release drops every borrow held on name, called when the borrowing
// binding goes out of scope.
func (b *borrowTracker) Release(name string) {
	delete(b.mutable, name)
	delete(b.immutable, name)
}
