package bot

import (
	"context"
	"fmt"

	"github.com/Sam1808/Fish-shop-bot/models"
	"github.com/Sam1808/Fish-shop-bot/session"
)

// fakeCommerce is an in-memory stand-in for the commerce backend. Carts
// behave like the real one: adding merges lines, removing drops them.
type fakeCommerce struct {
	products  []models.Product
	files     map[string]string
	carts     map[string][]models.CartItem
	customers map[string]models.Customer
	custSeq   int

	addCalls      []string // "cartID/productID/qty"
	removeCalls   []string // "cartID/productID"
	createdEmails []string
	createdNames  []string
	customerReads []string

	err error // when set, every operation fails with it
}

func newFakeCommerce(products ...models.Product) *fakeCommerce {
	return &fakeCommerce{
		products:  products,
		files:     map[string]string{},
		carts:     map[string][]models.CartItem{},
		customers: map[string]models.Customer{},
	}
}

func (f *fakeCommerce) ListProducts(context.Context) ([]models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func (f *fakeCommerce) GetProduct(_ context.Context, productID string) (models.Product, error) {
	if f.err != nil {
		return models.Product{}, f.err
	}
	for _, p := range f.products {
		if p.ID == productID {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("product %s not found", productID)
}

func (f *fakeCommerce) GetFileURL(_ context.Context, fileID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if url, ok := f.files[fileID]; ok {
		return url, nil
	}
	return "https://cdn.example.com/" + fileID + ".jpg", nil
}

func (f *fakeCommerce) AddToCart(ctx context.Context, cartID, productID string, quantity int) error {
	if f.err != nil {
		return f.err
	}
	f.addCalls = append(f.addCalls, fmt.Sprintf("%s/%s/%d", cartID, productID, quantity))

	product, err := f.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	items := f.carts[cartID]
	for i, item := range items {
		if item.ProductID == productID {
			items[i].Quantity += quantity
			return nil
		}
	}
	f.carts[cartID] = append(items, models.CartItem{
		ID:                 "item-" + productID,
		ProductID:          productID,
		Name:               product.Name,
		Description:        product.Description,
		Quantity:           quantity,
		UnitPriceFormatted: product.PriceFormatted,
		TotalFormatted:     product.PriceFormatted,
	})
	return nil
}

func (f *fakeCommerce) RemoveFromCart(_ context.Context, cartID, productID string) error {
	if f.err != nil {
		return f.err
	}
	f.removeCalls = append(f.removeCalls, cartID+"/"+productID)

	items := f.carts[cartID]
	kept := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	f.carts[cartID] = kept
	return nil
}

func (f *fakeCommerce) GetCart(_ context.Context, cartID string) (models.CartSummary, error) {
	if f.err != nil {
		return models.CartSummary{}, f.err
	}
	return models.CartSummary{TotalFormatted: fmt.Sprintf("%d line(s)", len(f.carts[cartID]))}, nil
}

func (f *fakeCommerce) GetCartItems(_ context.Context, cartID string) ([]models.CartItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.carts[cartID], nil
}

func (f *fakeCommerce) CreateCustomer(_ context.Context, name, email string) (models.Customer, error) {
	if f.err != nil {
		return models.Customer{}, f.err
	}
	f.createdNames = append(f.createdNames, name)
	f.createdEmails = append(f.createdEmails, email)

	f.custSeq++
	customer := models.Customer{ID: fmt.Sprintf("cust-%d", f.custSeq), Name: name, Email: email}
	f.customers[customer.ID] = customer
	return customer, nil
}

func (f *fakeCommerce) GetCustomer(_ context.Context, customerID string) (models.Customer, error) {
	if f.err != nil {
		return models.Customer{}, f.err
	}
	f.customerReads = append(f.customerReads, customerID)
	customer, ok := f.customers[customerID]
	if !ok {
		return models.Customer{}, fmt.Errorf("customer %s not found", customerID)
	}
	return customer, nil
}

// screen is one recorded render call.
type screen struct {
	kind string // "choices", "photo", "text"
	text string
	url  string
	rows [][]Button
}

// payloads flattens the screen's button payloads.
func (s screen) payloads() []string {
	var out []string
	for _, row := range s.rows {
		for _, b := range row {
			out = append(out, b.Payload)
		}
	}
	return out
}

// recordRenderer records what handlers asked to show.
type recordRenderer struct {
	screens []screen
	err     error
}

func (r *recordRenderer) Choices(text string, rows [][]Button) error {
	if r.err != nil {
		return r.err
	}
	r.screens = append(r.screens, screen{kind: "choices", text: text, rows: rows})
	return nil
}

func (r *recordRenderer) Photo(url, caption string, rows [][]Button) error {
	if r.err != nil {
		return r.err
	}
	r.screens = append(r.screens, screen{kind: "photo", text: caption, url: url, rows: rows})
	return nil
}

func (r *recordRenderer) Text(text string, rows [][]Button) error {
	if r.err != nil {
		return r.err
	}
	r.screens = append(r.screens, screen{kind: "text", text: text, rows: rows})
	return nil
}

func (r *recordRenderer) last() screen {
	return r.screens[len(r.screens)-1]
}

// brokenStore fails reads and/or writes on demand, delegating the rest to a
// memory store.
type brokenStore struct {
	*session.MemoryStore
	getErr error
	setErr error
}

func (s *brokenStore) Get(ctx context.Context, chatID int64) (models.State, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.MemoryStore.Get(ctx, chatID)
}

func (s *brokenStore) Set(ctx context.Context, chatID int64, state models.State) error {
	if s.setErr != nil {
		return s.setErr
	}
	return s.MemoryStore.Set(ctx, chatID, state)
}
