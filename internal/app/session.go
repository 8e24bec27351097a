// Package app holds the presentation-side state of an academy client: the
// active language, the selected lesson with its related-articles grid, and
// the shopping cart. Mutations are optimistic: the new state is applied
// locally first and rolled back when the catalog rejects the write.
package app

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/academy/pkg/cart"
	"github.com/mesh-intelligence/academy/pkg/slots"
	"github.com/mesh-intelligence/academy/pkg/types"
)

// Options configures a Session.
type Options struct {
	// Language is the initial display language. Empty selects the first
	// entry of Languages.
	Language string
	// Languages lists the supported display languages.
	Languages []string
	// SlotCount is the size of the related-articles grid; zero selects
	// slots.DefaultSlotCount.
	SlotCount int
	// CartID names the stored cart; empty selects types.DefaultCartID.
	CartID string
}

// Session owns the client state. It is not safe for concurrent use; callers
// issue operations in event order.
type Session struct {
	catalog types.Catalog
	opts    Options
	logger  *zap.Logger

	lang    string
	lesson  *types.Lesson
	related []types.Article
	ledger  cart.Ledger
}

// NewSession validates opts and returns a session bound to catalog.
func NewSession(catalog types.Catalog, opts Options, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.Languages) == 0 {
		opts.Languages = []string{"en"}
	}
	if opts.Language == "" {
		opts.Language = opts.Languages[0]
	}
	if !slices.Contains(opts.Languages, opts.Language) {
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedLanguage, opts.Language)
	}
	if opts.SlotCount == 0 {
		opts.SlotCount = slots.DefaultSlotCount
	}
	if opts.SlotCount < 0 {
		return nil, slots.ErrInvalidSlotCount
	}
	if opts.CartID == "" {
		opts.CartID = types.DefaultCartID
	}

	return &Session{
		catalog: catalog,
		opts:    opts,
		logger:  logger.With(zap.String("cart_id", opts.CartID)),
		lang:    opts.Language,
	}, nil
}

// Language returns the active display language.
func (s *Session) Language() string {
	return s.lang
}

// SetLanguage switches the display language. Returns ErrUnsupportedLanguage
// for languages outside Options.Languages.
func (s *Session) SetLanguage(lang string) error {
	if !slices.Contains(s.opts.Languages, lang) {
		return fmt.Errorf("%w: %s", types.ErrUnsupportedLanguage, lang)
	}
	s.lang = lang
	s.logger.Debug("language changed", zap.String("language", lang))
	return nil
}

// ActiveLesson returns a copy of the selected lesson.
func (s *Session) ActiveLesson() (types.Lesson, bool) {
	if s.lesson == nil {
		return types.Lesson{}, false
	}
	return *s.lesson, true
}

// RelatedArticles returns the grid computed for the selected lesson.
func (s *Session) RelatedArticles() []types.Article {
	return slices.Clone(s.related)
}

// Cart returns the current cart ledger.
func (s *Session) Cart() cart.Ledger {
	return s.ledger
}

// SelectLesson loads a lesson and fills its related-articles grid. Locked
// lessons resolve like any other.
func (s *Session) SelectLesson(id int64) ([]types.Article, error) {
	lesson, err := s.loadLesson(id)
	if err != nil {
		return nil, err
	}
	grid, err := s.fillGrid(lesson)
	if err != nil {
		return nil, err
	}
	s.lesson = lesson
	s.related = grid
	s.logger.Debug("lesson selected",
		zap.Int64("lesson_id", id),
		zap.Bool("locked", lesson.Locked),
		zap.Int("slots", len(grid)))
	return slices.Clone(grid), nil
}

// UpdateLesson stores lesson and makes it the active lesson. The new state
// is applied first; if the write fails the previous active lesson and grid
// come back, re-fetched from the catalog when the failed lesson was the
// active one. A write that succeeds stays in place even when the grid cannot
// be rebuilt afterwards; the grid is cleared in that case.
func (s *Session) UpdateLesson(lesson types.Lesson) error {
	prev, prevRelated := s.lesson, s.related
	next := lesson
	s.lesson = &next

	lessons, err := s.table(types.TableLessons)
	if err == nil {
		id := ""
		if next.ID > 0 {
			id = idString(next.ID)
		}
		_, err = lessons.Set(id, &next)
	}
	if err != nil {
		s.revertLesson(next.ID, prev, prevRelated, err)
		return fmt.Errorf("updating lesson %d: %w", next.ID, err)
	}

	grid, err := s.fillGrid(s.lesson)
	if err != nil {
		s.related = nil
		return fmt.Errorf("lesson %d stored, filling related articles: %w", next.ID, err)
	}
	s.related = grid
	s.logger.Info("lesson updated", zap.Int64("lesson_id", next.ID))
	return nil
}

// UnlockLesson clears the lock on a lesson, stores it, and makes it the
// active lesson. Unlocking an unlocked lesson is a no-op.
func (s *Session) UnlockLesson(id int64) error {
	var lesson types.Lesson
	if s.lesson != nil && s.lesson.ID == id {
		lesson = *s.lesson
	} else {
		loaded, err := s.loadLesson(id)
		if err != nil {
			return err
		}
		lesson = *loaded
	}
	if !lesson.Locked {
		return nil
	}
	lesson.Unlock()
	return s.UpdateLesson(lesson)
}

// revertLesson restores the active lesson and its grid after a failed
// write. When the failed lesson was the active one the stored copy wins over
// the local snapshot.
func (s *Session) revertLesson(id int64, prev *types.Lesson, prevRelated []types.Article, cause error) {
	defer s.logger.Warn("lesson update reverted", zap.Int64("lesson_id", id), zap.Error(cause))

	s.lesson, s.related = prev, prevRelated
	if prev == nil || prev.ID != id {
		return
	}
	stored, err := s.loadLesson(id)
	if err != nil {
		return
	}
	grid, err := s.fillGrid(stored)
	if err != nil {
		return
	}
	s.lesson, s.related = stored, grid
}

// OpenCart loads the configured cart. A cart that was never stored opens
// empty; lines whose product no longer exists are dropped.
func (s *Session) OpenCart() (cart.Ledger, error) {
	carts, err := s.table(types.TableCarts)
	if err != nil {
		return cart.Ledger{}, err
	}
	got, err := carts.Get(s.opts.CartID)
	if errors.Is(err, types.ErrNotFound) {
		s.ledger = cart.New()
		return s.ledger, nil
	}
	if err != nil {
		return cart.Ledger{}, fmt.Errorf("loading cart: %w", err)
	}
	stored, ok := got.(*types.Cart)
	if !ok {
		return cart.Ledger{}, types.ErrInvalidData
	}

	products, err := s.table(types.TableProducts)
	if err != nil {
		return cart.Ledger{}, err
	}
	var lookupErr error
	ledger, missing := cart.FromLines(stored.Lines, func(id int64) (types.Product, bool) {
		p, err := getProduct(products, id)
		if err != nil {
			if !errors.Is(err, types.ErrNotFound) && lookupErr == nil {
				lookupErr = err
			}
			return types.Product{}, false
		}
		return *p, true
	})
	if lookupErr != nil {
		return cart.Ledger{}, fmt.Errorf("loading cart products: %w", lookupErr)
	}
	if len(missing) > 0 {
		s.logger.Warn("dropped cart lines for missing products", zap.Int64s("product_ids", missing))
	}
	s.ledger = ledger
	return ledger, nil
}

// AddToCart adds one unit of a product.
func (s *Session) AddToCart(productID int64) (cart.Ledger, error) {
	products, err := s.table(types.TableProducts)
	if err != nil {
		return s.ledger, err
	}
	p, err := getProduct(products, productID)
	if err != nil {
		return s.ledger, fmt.Errorf("adding product %d: %w", productID, err)
	}
	return s.applyCart("add", productID, s.ledger.Add(*p))
}

// RemoveFromCart removes a product entirely. Absent products are a no-op.
func (s *Session) RemoveFromCart(productID int64) (cart.Ledger, error) {
	return s.applyCart("remove", productID, s.ledger.Remove(productID))
}

// AdjustQuantity changes a product's quantity by delta. Changes that would
// drop the quantity below one leave the cart unchanged.
func (s *Session) AdjustQuantity(productID int64, delta int) (cart.Ledger, error) {
	return s.applyCart("adjust", productID, s.ledger.SetQuantityDelta(productID, delta))
}

// applyCart makes next the current ledger and persists it, restoring the
// previous ledger when the write fails.
func (s *Session) applyCart(op string, productID int64, next cart.Ledger) (cart.Ledger, error) {
	if next.Equal(s.ledger) {
		return s.ledger, nil
	}

	err := commit(&s.ledger, next, func() error {
		carts, err := s.table(types.TableCarts)
		if err != nil {
			return err
		}
		_, err = carts.Set(s.opts.CartID, &types.Cart{CartID: s.opts.CartID, Lines: next.Lines()})
		return err
	})
	if err != nil {
		s.logger.Warn("cart change reverted",
			zap.String("op", op),
			zap.Int64("product_id", productID),
			zap.Error(err))
		return s.ledger, fmt.Errorf("saving cart: %w", err)
	}

	s.logger.Info("cart changed",
		zap.String("op", op),
		zap.Int64("product_id", productID),
		zap.Int("items", s.ledger.TotalCount()))
	return s.ledger, nil
}

// commit sets *state to next and runs persist; on failure *state goes back
// to its previous value.
func commit[T any](state *T, next T, persist func() error) error {
	prev := *state
	*state = next
	if err := persist(); err != nil {
		*state = prev
		return err
	}
	return nil
}

func (s *Session) fillGrid(lesson *types.Lesson) ([]types.Article, error) {
	articles, err := s.loadArticles()
	if err != nil {
		return nil, err
	}
	return slots.Fill(lesson.RelatedArticles, articles, s.opts.SlotCount)
}

func (s *Session) loadLesson(id int64) (*types.Lesson, error) {
	lessons, err := s.table(types.TableLessons)
	if err != nil {
		return nil, err
	}
	got, err := lessons.Get(idString(id))
	if err != nil {
		return nil, fmt.Errorf("loading lesson %d: %w", id, err)
	}
	lesson, ok := got.(*types.Lesson)
	if !ok {
		return nil, types.ErrInvalidData
	}
	return lesson, nil
}

func (s *Session) loadArticles() ([]types.Article, error) {
	tbl, err := s.table(types.TableArticles)
	if err != nil {
		return nil, err
	}
	rows, err := tbl.Fetch(nil)
	if err != nil {
		return nil, fmt.Errorf("loading articles: %w", err)
	}
	articles := make([]types.Article, 0, len(rows))
	for _, row := range rows {
		if a, ok := row.(*types.Article); ok {
			articles = append(articles, *a)
		}
	}
	return articles, nil
}

func (s *Session) table(name string) (types.Table, error) {
	tbl, err := s.catalog.GetTable(name)
	if err != nil {
		return nil, fmt.Errorf("opening %s table: %w", name, err)
	}
	return tbl, nil
}

func getProduct(products types.Table, id int64) (*types.Product, error) {
	got, err := products.Get(idString(id))
	if err != nil {
		return nil, err
	}
	p, ok := got.(*types.Product)
	if !ok {
		return nil, types.ErrInvalidData
	}
	return p, nil
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
