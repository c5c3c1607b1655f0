// Package cart implements the append-only cart ledger.
package cart

import (
	"sync"

	"github.com/sleekspace/storefront/internal/model"
)

// Ledger records the products a visitor has chosen, in click order.
// Adding the same product twice yields two entries; there is no removal
// and no quantity aggregation.
type Ledger struct {
	mu    sync.Mutex
	items []model.Product
}

// New creates an empty Ledger.
func New() *Ledger {
	return &Ledger{}
}

// Add appends p to the end of the ledger.
func (l *Ledger) Add(p model.Product) {
	l.mu.Lock()
	l.items = append(l.items, p)
	l.mu.Unlock()
}

// Items returns a copy of the ledger contents in insertion order.
func (l *Ledger) Items() []model.Product {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Product, len(l.items))
	copy(out, l.items)
	return out
}

// Count returns the number of entries, shown as the header cart badge.
func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}
