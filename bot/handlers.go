package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sam1808/Fish-shop-bot/models"
)

// The quantities offered on a product card, in kilograms.
var quantities = []int{1, 5, 10}

// turn carries one event through its handler. The chat id doubles as the
// commerce cart id, so clearing a session never clears its backend cart.
type turn struct {
	event    Event
	payload  models.Payload
	commerce Commerce
	render   Renderer
}

func (t *turn) cartID() string {
	return strconv.FormatInt(t.event.ChatID, 10)
}

func backCartRows() [][]Button {
	return [][]Button{
		{{Label: "Back", Payload: models.CmdBack}},
		{{Label: "Cart", Payload: models.CmdCart}},
	}
}

// start lists the whole catalog, one button per product.
func (t *turn) start(ctx context.Context) (models.State, error) {
	products, err := t.commerce.ListProducts(ctx)
	if err != nil {
		return "", err
	}

	rows := make([][]Button, 0, len(products)+1)
	for _, product := range products {
		rows = append(rows, []Button{{Label: product.Name, Payload: product.ID}})
	}
	rows = append(rows, []Button{{Label: "Cart", Payload: models.CmdCart}})

	if err := t.render.Choices("Today's catch:", rows); err != nil {
		return "", err
	}
	return models.StateMenu, nil
}

// menu shows the selected product's card: photo, description, price, and the
// fixed quantity choices.
func (t *turn) menu(ctx context.Context) (models.State, error) {
	product, err := t.commerce.GetProduct(ctx, t.event.Input)
	if err != nil {
		return "", err
	}
	photoURL, err := t.commerce.GetFileURL(ctx, product.ImageFileID)
	if err != nil {
		return "", err
	}

	caption := fmt.Sprintf("%s\n\n%s\n\nPrice: %s per kg",
		product.Name, product.Description, product.PriceFormatted)

	qtyRow := make([]Button, 0, len(quantities))
	for _, qty := range quantities {
		qtyRow = append(qtyRow, Button{
			Label:   fmt.Sprintf("%d kg", qty),
			Payload: models.QuantityPayload(product.ID, qty),
		})
	}
	rows := append([][]Button{qtyRow}, backCartRows()...)

	if err := t.render.Photo(photoURL, caption, rows); err != nil {
		return "", err
	}
	return models.StateDescription, nil
}

// description adds the chosen quantity to the cart and confirms. A payload
// that is not a quantity choice reprompts instead of failing the turn.
func (t *turn) description(ctx context.Context) (models.State, error) {
	if t.payload.Kind != models.PayloadQuantity {
		if err := t.render.Text("Please pick a quantity with the buttons above.", backCartRows()); err != nil {
			return "", err
		}
		return models.StateDescription, nil
	}

	if err := t.commerce.AddToCart(ctx, t.cartID(), t.payload.ProductID, t.payload.Quantity); err != nil {
		return "", err
	}
	product, err := t.commerce.GetProduct(ctx, t.payload.ProductID)
	if err != nil {
		return "", err
	}

	message := fmt.Sprintf("Added to your cart:\n%s\nQuantity: %d kg", product.Name, t.payload.Quantity)
	if err := t.render.Text(message, backCartRows()); err != nil {
		return "", err
	}
	return models.StateDescription, nil
}

// cart renders the cart contents with a per-line remove button. A delete
// payload removes its line first, then the fresh cart is re-read and shown.
func (t *turn) cart(ctx context.Context) (models.State, error) {
	if t.payload.Kind == models.PayloadDelete {
		if err := t.commerce.RemoveFromCart(ctx, t.cartID(), t.payload.ProductID); err != nil {
			return "", err
		}
	}

	summary, err := t.commerce.GetCart(ctx, t.cartID())
	if err != nil {
		return "", err
	}
	items, err := t.commerce.GetCartItems(ctx, t.cartID())
	if err != nil {
		return "", err
	}

	var text strings.Builder
	rows := make([][]Button, 0, len(items)+1)
	for _, item := range items {
		fmt.Fprintf(&text, "%s\n%s\nPrice per kg: %s\nQuantity: %d kg\nSubtotal: %s\n\n",
			item.Name, item.Description, item.UnitPriceFormatted, item.Quantity, item.TotalFormatted)
		rows = append(rows, []Button{{
			Label:   "Remove: " + item.Name,
			Payload: models.DeletePayload(item.ProductID),
		}})
	}
	fmt.Fprintf(&text, "Total: %s", summary.TotalFormatted)

	rows = append(rows, []Button{
		{Label: "Menu", Payload: models.CmdBack},
		{Label: "Pay", Payload: models.CmdPay},
	})

	if err := t.render.Text(text.String(), rows); err != nil {
		return "", err
	}
	return models.StateCart, nil
}

// email drives checkout: prompt for an e-mail, echo it back for
// confirmation, and create the customer once confirmed. The address goes to
// the backend exactly as typed; the only validation is the user's own tap.
func (t *turn) email(ctx context.Context) (models.State, error) {
	switch t.payload.Kind {
	case models.PayloadConfirmEmail:
		created, err := t.commerce.CreateCustomer(ctx, t.event.Username, t.payload.Email)
		if err != nil {
			return "", err
		}
		// Read the record back so the confirmation shows what the backend
		// actually stored, not just what was sent.
		customer, err := t.commerce.GetCustomer(ctx, created.ID)
		if err != nil {
			return "", err
		}
		message := fmt.Sprintf("Order registered.\nCustomer: %s\nE-mail: %s\nID: %s",
			customer.Name, customer.Email, customer.ID)
		if err := t.render.Text(message, nil); err != nil {
			return "", err
		}
		return models.StateEmail, nil

	case models.PayloadRejectEmail:
		if err := t.render.Text("Please send your e-mail again.", nil); err != nil {
			return "", err
		}
		return models.StateEmail, nil
	}

	// Arriving via the /pay shortcut (or any other button) is the entry
	// prompt; anything typed is treated as a candidate e-mail.
	if t.event.Callback || t.event.Input == models.CmdPay || t.event.Input == "" {
		if err := t.render.Text("Please send your e-mail to place the order.", nil); err != nil {
			return "", err
		}
		return models.StateEmail, nil
	}

	rows := [][]Button{{
		{Label: "Correct", Payload: models.ConfirmEmailPayload(t.event.Input)},
		{Label: "I mistyped", Payload: models.RejectEmailPayload()},
	}}
	message := fmt.Sprintf("You sent this e-mail: %s", t.event.Input)
	if err := t.render.Choices(message, rows); err != nil {
		return "", err
	}
	return models.StateEmail, nil
}
