package replay

import (
	"context"
	"time"

	"github.com/jcmexdev/course-marketplace/internal/pkg/cache"
)

// Guard claims payment ids in the shared cache so a confirmation is
// redeemed at most once across replicas.
type Guard struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewGuard(c cache.Cache, ttl time.Duration) *Guard {
	return &Guard{cache: c, ttl: ttl}
}

func (g *Guard) Claim(ctx context.Context, paymentID string) (bool, error) {
	return g.cache.SetNX(ctx, g.key(paymentID), "1", g.ttl)
}

func (g *Guard) Release(ctx context.Context, paymentID string) error {
	return g.cache.Delete(ctx, g.key(paymentID))
}

func (g *Guard) key(paymentID string) string {
	return g.cache.GenerateKey("payment-claim", paymentID)
}
