package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shopcart/internal/model"
)

// Storage persists serialized session carts. The Redis-backed implementation
// lives in pkg/redis; tests plug in an in-memory one.
type Storage interface {
	Load(ctx context.Context, sessionID string) ([]byte, bool, error)
	Save(ctx context.Context, sessionID string, payload []byte) error
	Delete(ctx context.Context, sessionID string) error
}

// sessionLine is one line of an anonymous cart. Product and variant are
// denormalized snapshots captured at add time and never refreshed; the
// persistent path re-reads the catalog instead.
type sessionLine struct {
	LineID    string                `json:"line_id"`
	ProductID uint                  `json:"product_id"`
	VariantID *uint                 `json:"variant_id"`
	Quantity  int                   `json:"quantity"`
	Price     int64                 `json:"price"`
	Product   model.Product         `json:"product"`
	Variant   *model.ProductVariant `json:"variant"`
}

// SessionStore keeps anonymous carts in session storage while validating
// products, variants and stock against the database.
type SessionStore struct {
	db      *gorm.DB
	storage Storage
}

func NewSessionStore(db *gorm.DB, storage Storage) *SessionStore {
	return &SessionStore{db: db, storage: storage}
}

func (s *SessionStore) load(ctx context.Context, sessionID string) ([]sessionLine, error) {
	payload, found, err := s.storage.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	var lines []sessionLine
	if err := json.Unmarshal(payload, &lines); err != nil {
		return nil, fmt.Errorf("decode session cart: %w", err)
	}
	return lines, nil
}

func (s *SessionStore) save(ctx context.Context, sessionID string, lines []sessionLine) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return s.storage.Save(ctx, sessionID, payload)
}

func toCart(lines []sessionLine) *Cart {
	out := &Cart{Lines: make([]Line, 0, len(lines))}
	for i := range lines {
		l := lines[i]
		product := l.Product
		out.TotalAmount += l.Price * int64(l.Quantity)
		out.Lines = append(out.Lines, Line{
			ID:        l.LineID,
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			Price:     l.Price,
			Product:   &product,
			Variant:   l.Variant,
		})
	}
	return out
}

func sameVariant(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *SessionStore) Add(ctx context.Context, id Identity, productID uint, variantID *uint, quantity int) (*Cart, error) {
	product, variant, err := loadProductVariant(s.db.WithContext(ctx), productID, variantID)
	if err != nil {
		return nil, err
	}
	if quantity > availableStock(product, variant) {
		return nil, ErrInsufficientStock
	}

	lines, err := s.load(ctx, id.SessionID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range lines {
		if lines[i].ProductID == productID && sameVariant(lines[i].VariantID, variantID) {
			lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, sessionLine{
			LineID:    uuid.NewString(),
			ProductID: productID,
			VariantID: variantID,
			Quantity:  quantity,
			Price:     unitPrice(product, variant),
			Product:   *product,
			Variant:   variant,
		})
	}

	if err := s.save(ctx, id.SessionID, lines); err != nil {
		return nil, err
	}
	return toCart(lines), nil
}

func (s *SessionStore) View(ctx context.Context, id Identity) (*Cart, error) {
	lines, err := s.load(ctx, id.SessionID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	return toCart(lines), nil
}

func (s *SessionStore) UpdateItem(ctx context.Context, id Identity, itemID string, quantity int) (*Cart, error) {
	lines, err := s.load(ctx, id.SessionID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	idx := -1
	for i := range lines {
		if lines[i].LineID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotFound
	}

	// Stock is validated against the live catalog, not the snapshot.
	product, variant, err := loadProductVariant(s.db.WithContext(ctx), lines[idx].ProductID, lines[idx].VariantID)
	if err != nil {
		return nil, err
	}
	if quantity > availableStock(product, variant) {
		return nil, ErrInsufficientStock
	}

	lines[idx].Quantity = quantity
	if err := s.save(ctx, id.SessionID, lines); err != nil {
		return nil, err
	}
	return toCart(lines), nil
}

func (s *SessionStore) RemoveItem(ctx context.Context, id Identity, itemID string) (*Cart, error) {
	lines, err := s.load(ctx, id.SessionID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	kept := lines[:0]
	removed := false
	for _, l := range lines {
		if l.LineID == itemID {
			removed = true
			continue
		}
		kept = append(kept, l)
	}
	if !removed {
		return nil, ErrNotFound
	}

	if err := s.save(ctx, id.SessionID, kept); err != nil {
		return nil, err
	}
	return toCart(kept), nil
}

func (s *SessionStore) Clear(ctx context.Context, id Identity) error {
	return s.storage.Delete(ctx, id.SessionID)
}
