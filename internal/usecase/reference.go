package usecase

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/bloomcart/internal/domain/model"
)

const referencePrefix = "BC"

// newReference builds a merchant reference: millisecond timestamp plus eight
// random hex characters.
func newReference(now time.Time) string {
	id := uuid.New()
	return fmt.Sprintf("%s-%d-%s", referencePrefix, now.UnixMilli(), hex.EncodeToString(id[:4]))
}

// orderNumber picks the natural key an order is stored under. Stripe sessions
// are keyed by session id; other providers by merchant reference.
func orderNumber(provider model.Provider, sessionID, reference string) string {
	if provider == model.ProviderStripe || reference == "" {
		return sessionID
	}
	return reference
}
