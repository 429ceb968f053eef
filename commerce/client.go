package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Sam1808/Fish-shop-bot/models"
)

// Transient failures (network errors, 5xx) are retried a fixed number of
// times with a short pause, matching the backend's own guidance.
const (
	retryAttempts = 3
	retryPause    = 1 * time.Second
)

// Client talks to the Moltin-style commerce backend. It owns its OAuth
// client-credentials token and refreshes it once the backend-reported expiry
// passes; callers never see token handling.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *http.Client
	pause        time.Duration

	mu          sync.Mutex
	token       string
	tokenExpiry int64 // unix seconds, as reported by the backend
}

// New builds a client for the given backend. Secrets are kept on the client;
// there is no package-level state.
func New(baseURL, clientID, clientSecret string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         &http.Client{Timeout: 30 * time.Second},
		pause:        retryPause,
	}
}

// -------- Response Structs --------

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Expires     int64  `json:"expires"`
}

type displayPrice struct {
	WithTax struct {
		Formatted string `json:"formatted"`
		Unit      struct {
			Formatted string `json:"formatted"`
		} `json:"unit"`
		Value struct {
			Formatted string `json:"formatted"`
		} `json:"value"`
	} `json:"with_tax"`
}

type productResource struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Meta        struct {
		DisplayPrice displayPrice `json:"display_price"`
	} `json:"meta"`
	Relationships struct {
		MainImage struct {
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		} `json:"main_image"`
	} `json:"relationships"`
}

type cartItemResource struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Meta        struct {
		DisplayPrice displayPrice `json:"display_price"`
	} `json:"meta"`
}

type customerResource struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (p productResource) toModel() models.Product {
	return models.Product{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		PriceFormatted: p.Meta.DisplayPrice.WithTax.Formatted,
		ImageFileID:    p.Relationships.MainImage.Data.ID,
	}
}

func (i cartItemResource) toModel() models.CartItem {
	return models.CartItem{
		ID:                 i.ID,
		ProductID:          i.ProductID,
		Name:               i.Name,
		Description:        i.Description,
		Quantity:           i.Quantity,
		UnitPriceFormatted: i.Meta.DisplayPrice.WithTax.Unit.Formatted,
		TotalFormatted:     i.Meta.DisplayPrice.WithTax.Value.Formatted,
	}
}

// -------- Catalog --------

// ListProducts returns the whole catalog.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out struct {
		Data []productResource `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v2/products", nil, &out); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products := make([]models.Product, 0, len(out.Data))
	for _, p := range out.Data {
		products = append(products, p.toModel())
	}
	return products, nil
}

// GetProduct returns a single catalog entry.
func (c *Client) GetProduct(ctx context.Context, productID string) (models.Product, error) {
	var out struct {
		Data productResource `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v2/products/"+productID, nil, &out); err != nil {
		return models.Product{}, fmt.Errorf("get product %s: %w", productID, err)
	}
	return out.Data.toModel(), nil
}

// GetFileURL resolves an uploaded file id to its public download link.
func (c *Client) GetFileURL(ctx context.Context, fileID string) (string, error) {
	var out struct {
		Data struct {
			Link struct {
				Href string `json:"href"`
			} `json:"link"`
		} `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v2/files/"+fileID, nil, &out); err != nil {
		return "", fmt.Errorf("get file %s: %w", fileID, err)
	}
	return out.Data.Link.Href, nil
}

// -------- Cart --------

// AddToCart puts quantity units of a product into the cart. The backend
// creates the cart on first use.
func (c *Client) AddToCart(ctx context.Context, cartID, productID string, quantity int) error {
	body := map[string]any{
		"data": map[string]any{
			"id":       productID,
			"type":     "cart_item",
			"quantity": quantity,
		},
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v2/carts/"+cartID+"/items", body, nil); err != nil {
		return fmt.Errorf("add %s x%d to cart %s: %w", productID, quantity, cartID, err)
	}
	return nil
}

// RemoveFromCart deletes a product's line from the cart.
func (c *Client) RemoveFromCart(ctx context.Context, cartID, productID string) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/v2/carts/"+cartID+"/items/"+productID, nil, nil); err != nil {
		return fmt.Errorf("remove %s from cart %s: %w", productID, cartID, err)
	}
	return nil
}

// GetCart returns the cart-wide totals.
func (c *Client) GetCart(ctx context.Context, cartID string) (models.CartSummary, error) {
	var out struct {
		Data struct {
			Meta struct {
				DisplayPrice displayPrice `json:"display_price"`
			} `json:"meta"`
		} `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v2/carts/"+cartID, nil, &out); err != nil {
		return models.CartSummary{}, fmt.Errorf("get cart %s: %w", cartID, err)
	}
	return models.CartSummary{TotalFormatted: out.Data.Meta.DisplayPrice.WithTax.Formatted}, nil
}

// GetCartItems returns the cart's line items.
func (c *Client) GetCartItems(ctx context.Context, cartID string) ([]models.CartItem, error) {
	var out struct {
		Data []cartItemResource `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v2/carts/"+cartID+"/items", nil, &out); err != nil {
		return nil, fmt.Errorf("get cart %s items: %w", cartID, err)
	}
	items := make([]models.CartItem, 0, len(out.Data))
	for _, i := range out.Data {
		items = append(items, i.toModel())
	}
	return items, nil
}

// -------- Customers --------

// CreateCustomer registers a customer at checkout. The backend does the
// e-mail validation; none happens here.
func (c *Client) CreateCustomer(ctx context.Context, name, email string) (models.Customer, error) {
	body := map[string]any{
		"data": map[string]any{
			"type":  "customer",
			"name":  name,
			"email": email,
		},
	}
	var out struct {
		Data customerResource `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v2/customers", body, &out); err != nil {
		return models.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return models.Customer(out.Data), nil
}

// GetCustomer fetches a customer by id.
func (c *Client) GetCustomer(ctx context.Context, customerID string) (models.Customer, error) {
	var out struct {
		Data customerResource `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v2/customers/"+customerID, nil, &out); err != nil {
		return models.Customer{}, fmt.Errorf("get customer %s: %w", customerID, err)
	}
	return models.Customer(out.Data), nil
}

// -------- Token & transport --------

// accessToken returns a cached token or fetches a fresh one. The backend
// reports the expiry as an absolute unix timestamp.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Unix() < c.tokenExpiry {
		return c.token, nil
	}

	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"grant_type":    {"client_credentials"},
	}
	var tok tokenResponse
	err := c.withRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/oauth/access_token", strings.NewReader(form.Encode()))
		if err != nil {
			return permanent(err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return c.decode(req, &tok)
	})
	if err != nil {
		return "", fmt.Errorf("acquire access token: %w", err)
	}

	c.token = tok.AccessToken
	c.tokenExpiry = tok.Expires
	return c.token, nil
}

// doJSON performs an authenticated request, retrying transient failures, and
// decodes the response into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	return c.withRetry(ctx, func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return c.decode(req, out)
	})
}

// decode runs one request and decodes the body. 5xx and transport errors are
// returned as retryable; other non-2xx statuses are permanent.
func (c *Client) decode(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err // transport error, retryable
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("backend %d: %s", resp.StatusCode, raw)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return permanent(fmt.Errorf("backend %d: %s", resp.StatusCode, raw))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return permanent(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// permanentError marks a failure that retrying cannot fix (4xx, bad input).
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error { return permanentError{err: err} }

// withRetry runs fn up to retryAttempts times with a fixed pause between
// attempts, stopping early on permanent errors or context cancellation.
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		var perm permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt == retryAttempts {
			break
		}
		select {
		case <-time.After(c.pause):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("after %d attempts: %w", retryAttempts, err)
}
