package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Commands and payload prefixes below are the wire contract with inline
// keyboard buttons. Buttons already on a user's screen keep their old
// payloads, so these values must not change between deployments.
const (
	CmdStart = "/start"
	CmdBack  = "/back"
	CmdCart  = "/cart"
	CmdPay   = "/pay"

	deletePrefix   = "delete"
	customerPrefix = "/create_customer"
	wrongEmail     = "/wrong_email"

	payloadSep = ">"
)

// PayloadKind discriminates the structured button payloads.
type PayloadKind int

const (
	PayloadNone PayloadKind = iota // free text or a bare product id
	PayloadQuantity                // "<productID>><qty>"
	PayloadDelete                  // "delete><productID>"
	PayloadConfirmEmail            // "/create_customer><email>"
	PayloadRejectEmail             // "/wrong_email"
)

// Payload is a parsed button payload. Parsing happens once, at the engine
// boundary; handlers never re-split the raw string.
type Payload struct {
	Kind      PayloadKind
	ProductID string
	Quantity  int
	Email     string
}

// ParsePayload classifies raw callback data. Anything that does not match a
// structured shape comes back as PayloadNone and is handled as free input by
// the current state.
func ParsePayload(data string) Payload {
	if data == wrongEmail {
		return Payload{Kind: PayloadRejectEmail}
	}

	head, tail, found := strings.Cut(data, payloadSep)
	if !found || tail == "" {
		return Payload{Kind: PayloadNone}
	}

	switch head {
	case deletePrefix:
		return Payload{Kind: PayloadDelete, ProductID: tail}
	case customerPrefix:
		return Payload{Kind: PayloadConfirmEmail, Email: tail}
	}

	qty, err := strconv.Atoi(tail)
	if err != nil || qty <= 0 || head == "" {
		return Payload{Kind: PayloadNone}
	}
	return Payload{Kind: PayloadQuantity, ProductID: head, Quantity: qty}
}

// QuantityPayload builds the payload for a quantity button.
func QuantityPayload(productID string, qty int) string {
	return fmt.Sprintf("%s%s%d", productID, payloadSep, qty)
}

// DeletePayload builds the payload for a per-line cart remove button.
func DeletePayload(productID string) string {
	return deletePrefix + payloadSep + productID
}

// ConfirmEmailPayload builds the "yes, that e-mail is right" payload. The
// e-mail rides inside the payload so confirmation needs no extra storage.
func ConfirmEmailPayload(email string) string {
	return customerPrefix + payloadSep + email
}

// RejectEmailPayload is the "I mistyped it" payload.
func RejectEmailPayload() string {
	return wrongEmail
}
