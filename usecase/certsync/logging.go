package certsync

import (
	"context"

	"github.com/kompox/nbcertsync/domain/model"
	"github.com/kompox/nbcertsync/internal/logging"
)

// withSyncLogger emits SYNC:Sync/S and returns a cleanup that emits
// SYNC:Sync/EOK or SYNC:Sync/EFAIL with stage, attempts and elapsed.
func withSyncLogger(ctx context.Context, req model.TriggerRequest, target model.LoadBalancerTarget) (context.Context, func(res *model.SyncResult)) {
	logger := logging.FromContext(ctx).With("secret", req.Key(), "target", target.String())
	if req.Issuer != "" {
		logger = logger.With("issuer", req.Issuer)
	}
	ctx = logging.WithLogger(ctx, logger)

	logger.Info(ctx, "SYNC:Sync/S", "source", req.Source)

	cleanup := func(res *model.SyncResult) {
		kv := []any{
			"stage", string(res.Stage),
			"fetchAttempts", res.FetchAttempts,
			"pushAttempts", res.PushAttempts,
			"elapsed", res.Elapsed.Seconds(),
		}
		if res.Err == nil {
			logger.Info(ctx, "SYNC:Sync/EOK", append(kv, "skipped", res.Skipped)...)
			return
		}
		logger.Warn(ctx, "SYNC:Sync/EFAIL", append(kv, "err", res.Err.Error())...)
	}
	return ctx, cleanup
}
