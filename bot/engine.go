// Package bot holds the conversation engine: a finite-state machine keyed by
// chat id that maps each incoming message or button press to a handler and
// persists the handler's returned state.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/Sam1808/Fish-shop-bot/models"
	"github.com/Sam1808/Fish-shop-bot/session"
)

// Commerce is everything the handlers need from the commerce backend.
// Satisfied by *commerce.Client; tests plug in a fake.
type Commerce interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, productID string) (models.Product, error)
	GetFileURL(ctx context.Context, fileID string) (string, error)
	AddToCart(ctx context.Context, cartID, productID string, quantity int) error
	RemoveFromCart(ctx context.Context, cartID, productID string) error
	GetCart(ctx context.Context, cartID string) (models.CartSummary, error)
	GetCartItems(ctx context.Context, cartID string) ([]models.CartItem, error)
	CreateCustomer(ctx context.Context, name, email string) (models.Customer, error)
	GetCustomer(ctx context.Context, customerID string) (models.Customer, error)
}

// Event is one inbound user action, already attributed to a chat.
type Event struct {
	ChatID   int64
	Username string
	Input    string // message text or raw callback payload
	Callback bool   // true when Input came from a button press
}

// Engine resolves an event's state, runs the matching handler, and writes
// the next state back to the session store.
type Engine struct {
	store    session.Store
	commerce Commerce
}

// NewEngine wires the engine's collaborators.
func NewEngine(store session.Store, commerce Commerce) *Engine {
	return &Engine{store: store, commerce: commerce}
}

// HandleEvent runs one conversation turn. An error means the turn failed and
// the stored state was left untouched; the caller logs it and moves on.
func (e *Engine) HandleEvent(ctx context.Context, event Event, render Renderer) error {
	// 8 chars of the uuid are enough to correlate one process's log lines;
	// the collision odds are accepted.
	turnID := uuid.NewString()[:8]

	state := e.resolveState(ctx, event, turnID)
	if !state.Valid() {
		return fmt.Errorf("[%s] chat %d: no handler for stored state %q", turnID, event.ChatID, state)
	}

	t := &turn{
		event:    event,
		payload:  models.ParsePayload(event.Input),
		commerce: e.commerce,
		render:   render,
	}

	var next models.State
	var err error
	switch state {
	case models.StateStart:
		next, err = t.start(ctx)
	case models.StateMenu:
		next, err = t.menu(ctx)
	case models.StateDescription:
		next, err = t.description(ctx)
	case models.StateCart:
		next, err = t.cart(ctx)
	case models.StateEmail:
		next, err = t.email(ctx)
	default:
		// Unreachable: Valid was checked above. Kept so the switch always
		// assigns next.
		return fmt.Errorf("[%s] chat %d: no handler for stored state %q", turnID, event.ChatID, state)
	}
	if err != nil {
		return fmt.Errorf("[%s] chat %d state %s: %w", turnID, event.ChatID, state, err)
	}

	if err := e.store.Set(ctx, event.ChatID, next); err != nil {
		// The reply is already on screen; a lost write only costs the user a
		// /start. Logged, never propagated.
		log.Printf("❌ [%s] chat %d: persist state %s: %v", turnID, event.ChatID, next, err)
	}
	return nil
}

// resolveState maps the event to the handler that should run. Shortcut
// tokens are recognized before the store lookup, so /back, /cart and /pay
// work from any screen, including a fresh or unknown session. This ordering
// is a deliberate contract; see DESIGN.md.
func (e *Engine) resolveState(ctx context.Context, event Event, turnID string) models.State {
	switch event.Input {
	case models.CmdStart, models.CmdBack:
		return models.StateStart
	case models.CmdCart:
		return models.StateCart
	case models.CmdPay:
		return models.StateEmail
	}

	state, err := e.store.Get(ctx, event.ChatID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			log.Printf("⚠️ [%s] chat %d: session read failed, starting over: %v", turnID, event.ChatID, err)
		}
		return models.StateStart
	}
	return state
}
