// Defines shared service dependencies for handlers.

package handlers

import "github.com/maruel/wishlist/internal/storage"

// Services holds all service dependencies for handlers.
type Services struct {
	Store *storage.Store
}
