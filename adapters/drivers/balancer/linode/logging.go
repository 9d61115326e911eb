package linode

import (
	"context"
	"time"

	"github.com/kompox/nbcertsync/domain/model"
	"github.com/kompox/nbcertsync/internal/logging"
)

// withMethodLogger emits LINODE:<method>:START and returns a cleanup that
// emits LINODE:<method>:END:OK or LINODE:<method>:END:FAILED with err and elapsed.
//
//	ctx, cleanup := d.withMethodLogger(ctx, "PushCertificate", target)
//	defer func() { cleanup(err) }()
func (d *driver) withMethodLogger(ctx context.Context, method string, target model.LoadBalancerTarget) (context.Context, func(err error)) {
	startAt := time.Now()

	logger := logging.FromContext(ctx).With("driver", "LINODE."+method, "target", target.String())
	ctx = logging.WithLogger(ctx, logger)

	logger.Info(ctx, "LINODE:"+method+":START")

	cleanup := func(err error) {
		elapsed := time.Since(startAt).Seconds()
		if err == nil {
			logger.Info(ctx, "LINODE:"+method+":END:OK", "err", "", "elapsed", elapsed)
			return
		}
		logger.Warn(ctx, "LINODE:"+method+":END:FAILED", "err", logging.TruncateErr(err), "elapsed", elapsed)
	}

	return ctx, cleanup
}
