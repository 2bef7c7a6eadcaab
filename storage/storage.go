// Package storage provides the durable backends a cart is saved to.
package storage

import (
	"github.com/mytheresa/go-bulk-cart/cart"
)

// DefaultKey is the storage key carts are saved under.
const DefaultKey = "cart"

// ErrNotFound is returned (wrapped) when nothing is stored under the key.
var ErrNotFound = cart.ErrNotStored
