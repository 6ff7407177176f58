package debounce

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	domain "github.com/paperloft/api/internal/domain"
)

// DefaultWindow is the default duration within which a repeated identical
// order attempt is rejected.
const DefaultWindow = 5 * time.Second

// Guard suppresses rapid duplicate order submissions. A key identifies one
// shopper/cart combination; Reserve succeeds at most once per window.
type Guard interface {
	// Reserve records an attempt for key. It returns false when an attempt
	// for the same key was already recorded within the window.
	Reserve(ctx context.Context, key string, now time.Time, window time.Duration) (bool, error)
	// Release forgets the reservation so a retry can proceed immediately,
	// typically after the guarded operation failed.
	Release(ctx context.Context, key string) error
	// Prune discards reservations older than maxAge and reports how many
	// were removed.
	Prune(ctx context.Context, now time.Time, maxAge time.Duration) (int, error)
}

// Fingerprint derives the guard key for an order attempt from the shopper
// email and the cart contents. Identical carts submitted twice by the same
// email map to the same key; any difference in lines yields a new one.
func Fingerprint(email string, lines []domain.CartLine) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.TrimSpace(email)))
	for _, line := range lines {
		fmt.Fprintf(&b, "|%s:%d", line.ProductID, line.Quantity)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
