package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/academy/pkg/types"
)

var (
	book   = types.Product{ID: 1, Name: "Grammar book", Price: decimal.RequireFromString("12.50")}
	cards  = types.Product{ID: 2, Name: "Flash cards", Price: decimal.RequireFromString("4.00")}
	poster = types.Product{ID: 3, Name: "Alphabet poster", Price: decimal.Zero}
)

func TestLedgerAdd(t *testing.T) {
	l := Ledger{}.Add(book).Add(book)

	require.Equal(t, 1, l.Len())
	qty, ok := l.Quantity(book.ID)
	assert.True(t, ok)
	assert.Equal(t, 2, qty)

	l = l.Add(cards)
	assert.Equal(t, []int64{1, 2}, productIDs(l), "new products append in order")
}

func TestLedgerSetQuantityDelta(t *testing.T) {
	tests := []struct {
		name    string
		start   Ledger
		product int64
		delta   int
		wantQty int
		wantOK  bool
	}{
		{name: "increment", start: New(Entry{book, 1}), product: 1, delta: 3, wantQty: 4, wantOK: true},
		{name: "decrement", start: New(Entry{book, 4}), product: 1, delta: -3, wantQty: 1, wantOK: true},
		{name: "below floor is a no-op", start: Ledger{}.Add(book), product: 1, delta: -5, wantQty: 1, wantOK: true},
		{name: "exactly to zero is a no-op", start: New(Entry{book, 2}), product: 1, delta: -2, wantQty: 2, wantOK: true},
		{name: "zero delta", start: New(Entry{book, 2}), product: 1, delta: 0, wantQty: 2, wantOK: true},
		{name: "unknown product", start: New(Entry{book, 2}), product: 9, delta: 1, wantQty: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.start.SetQuantityDelta(tt.product, tt.delta)
			qty, ok := got.Quantity(tt.product)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantQty, qty)
			assert.Equal(t, tt.start.Len(), got.Len(), "delta never adds or removes entries")
		})
	}
}

func TestLedgerRemove(t *testing.T) {
	l := Ledger{}.Add(book).Add(cards).Remove(book.ID)

	assert.Equal(t, []int64{2}, productIDs(l))
	assert.Equal(t, 1, l.TotalCount())

	once := New(Entry{book, 3}, Entry{cards, 1}).Remove(book.ID)
	twice := once.Remove(book.ID)
	assert.True(t, once.Equal(twice), "remove is idempotent")

	assert.True(t, l.Equal(l.Remove(42)), "removing an absent product changes nothing")
}

func TestLedgerImmutable(t *testing.T) {
	base := New(Entry{book, 1}, Entry{cards, 2})
	snapshot := base.Entries()

	_ = base.Add(book)
	_ = base.Add(poster)
	_ = base.SetQuantityDelta(cards.ID, 5)
	_ = base.Remove(book.ID)

	assert.Equal(t, snapshot, base.Entries())
}

func TestLedgerTotals(t *testing.T) {
	l := New(Entry{book, 2}, Entry{cards, 3}, Entry{poster, 1})

	assert.Equal(t, 6, l.TotalCount())
	assert.True(t, decimal.RequireFromString("37.00").Equal(l.Subtotal()), "got %s", l.Subtotal())
	assert.Equal(t, 0, Ledger{}.TotalCount())
	assert.True(t, Ledger{}.Subtotal().IsZero())
}

func TestNew(t *testing.T) {
	l := New(Entry{book, 1}, Entry{cards, 0}, Entry{book, 2})

	assert.Equal(t, []int64{1}, productIDs(l))
	qty, _ := l.Quantity(book.ID)
	assert.Equal(t, 3, qty, "repeated products merge")
}

func TestLedgerEqual(t *testing.T) {
	a := Ledger{}.Add(book).Add(cards)
	b := Ledger{}.Add(book).Add(cards)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(b.Add(book)))
	assert.False(t, a.Equal(Ledger{}.Add(cards).Add(book)), "order matters")
	assert.True(t, Ledger{}.Equal(New()))
}

func TestLinesRoundTrip(t *testing.T) {
	l := New(Entry{book, 2}, Entry{cards, 1})
	lines := l.Lines()
	assert.Equal(t, []types.CartLine{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}, lines)

	catalog := map[int64]types.Product{book.ID: book}
	got, missing := FromLines(lines, func(id int64) (types.Product, bool) {
		p, ok := catalog[id]
		return p, ok
	})
	assert.Equal(t, []int64{cards.ID}, missing)
	assert.Equal(t, []int64{1}, productIDs(got))
}

func productIDs(l Ledger) []int64 {
	var out []int64
	for _, e := range l.Entries() {
		out = append(out, e.Product.ID)
	}
	return out
}
