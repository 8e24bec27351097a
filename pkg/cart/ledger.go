// Package cart implements the shopping cart ledger: an immutable, ordered set
// of (product, quantity) entries with a quantity floor of one.
package cart

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/academy/pkg/types"
)

// MinQuantity is the smallest quantity an entry can hold.
const MinQuantity = 1

// Entry is one product in the cart and how many of it.
type Entry struct {
	Product  types.Product `json:"product"`
	Quantity int           `json:"quantity"`
}

// Ledger is the cart state. The zero value is an empty cart. Every operation
// returns a new Ledger and leaves the receiver untouched, so two ledgers can
// be compared with Equal to detect changes.
type Ledger struct {
	entries []Entry
}

// New returns a ledger holding entries, dropping quantities below
// MinQuantity and merging repeated products into the first occurrence.
func New(entries ...Entry) Ledger {
	var l Ledger
	for _, e := range entries {
		if e.Quantity < MinQuantity {
			continue
		}
		if i := l.index(e.Product.ID); i >= 0 {
			l.entries[i].Quantity += e.Quantity
			continue
		}
		l.entries = append(l.entries, e)
	}
	return l
}

// Add puts one more of product in the cart, appending a new entry with
// quantity 1 when the product is not there yet.
func (l Ledger) Add(product types.Product) Ledger {
	next := l.clone()
	if i := next.index(product.ID); i >= 0 {
		next.entries[i].Quantity++
		return next
	}
	next.entries = append(next.entries, Entry{Product: product, Quantity: 1})
	return next
}

// Remove drops the entry for productID whatever its quantity. Removing a
// product that is not in the cart returns an equal ledger.
func (l Ledger) Remove(productID int64) Ledger {
	i := l.index(productID)
	if i < 0 {
		return l.clone()
	}
	next := l.clone()
	next.entries = slices.Delete(next.entries, i, i+1)
	return next
}

// SetQuantityDelta changes the quantity of productID by delta. A result
// below MinQuantity leaves the entry unchanged; entries are only removed by
// Remove. Unknown products are a no-op.
func (l Ledger) SetQuantityDelta(productID int64, delta int) Ledger {
	next := l.clone()
	i := next.index(productID)
	if i < 0 {
		return next
	}
	qty := next.entries[i].Quantity + delta
	if qty < MinQuantity {
		return next
	}
	next.entries[i].Quantity = qty
	return next
}

// TotalCount is the sum of all quantities, used for the cart badge.
func (l Ledger) TotalCount() int {
	n := 0
	for _, e := range l.entries {
		n += e.Quantity
	}
	return n
}

// Subtotal is the sum of price times quantity over all entries.
func (l Ledger) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range l.entries {
		total = total.Add(e.Product.Price.Mul(decimal.NewFromInt(int64(e.Quantity))))
	}
	return total
}

// Quantity returns the quantity held for productID.
func (l Ledger) Quantity(productID int64) (int, bool) {
	if i := l.index(productID); i >= 0 {
		return l.entries[i].Quantity, true
	}
	return 0, false
}

// Len returns the number of distinct products.
func (l Ledger) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the entries in insertion order.
func (l Ledger) Entries() []Entry {
	return slices.Clone(l.entries)
}

// Equal reports whether both ledgers hold the same products, in the same
// order, with the same quantities.
func (l Ledger) Equal(other Ledger) bool {
	return slices.EqualFunc(l.entries, other.entries, func(a, b Entry) bool {
		return a.Product.ID == b.Product.ID && a.Quantity == b.Quantity
	})
}

// Lines converts the ledger to its persisted form.
func (l Ledger) Lines() []types.CartLine {
	lines := make([]types.CartLine, len(l.entries))
	for i, e := range l.entries {
		lines[i] = types.CartLine{ProductID: e.Product.ID, Quantity: e.Quantity}
	}
	return lines
}

// FromLines rebuilds a ledger from persisted lines. lookup resolves product
// ids; lines whose product cannot be resolved are dropped and their ids
// returned in missing.
func FromLines(lines []types.CartLine, lookup func(id int64) (types.Product, bool)) (l Ledger, missing []int64) {
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		p, ok := lookup(line.ProductID)
		if !ok {
			missing = append(missing, line.ProductID)
			continue
		}
		entries = append(entries, Entry{Product: p, Quantity: line.Quantity})
	}
	return New(entries...), missing
}

func (l Ledger) index(productID int64) int {
	return slices.IndexFunc(l.entries, func(e Entry) bool {
		return e.Product.ID == productID
	})
}

func (l Ledger) clone() Ledger {
	return Ledger{entries: slices.Clone(l.entries)}
}
