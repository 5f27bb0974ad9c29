package server

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kira8ke/GloHub/internal/game"
)

// RunReconciler retries deferred storage writes and evicts finished games
// every interval until ctx is done. A non-positive interval disables it.
func RunReconciler(ctx context.Context, coord *game.Coordinator, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if failing := coord.Reconcile(ctx); failing > 0 {
				log.Warn().Int("failing", failing).Msg("deferred writes still failing")
			}
			coord.Sweep(ctx)
		}
	}
}
