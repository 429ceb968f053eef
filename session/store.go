// Package session persists each chat's conversation state.
package session

import (
	"context"
	"errors"

	"github.com/Sam1808/Fish-shop-bot/models"
)

// ErrNotFound is returned by Get for a chat that has no stored state yet.
var ErrNotFound = errors.New("session: not found")

// Store is the key-value contract the conversation engine needs: one state
// string per chat id.
type Store interface {
	Get(ctx context.Context, chatID int64) (models.State, error)
	Set(ctx context.Context, chatID int64, state models.State) error
}
