package certsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/kompox/nbcertsync/domain/model"
	"github.com/kompox/nbcertsync/internal/logging"
	"github.com/kompox/nbcertsync/internal/naming"
	"github.com/kompox/nbcertsync/internal/retry"
)

// Sync validates req, fetches the referenced Secret and pushes its material
// to the configured target. It never returns nil.
//
// Runs against the target are serialized; each one fetches the Secret itself,
// so the last trigger always pushes what the cluster holds after the previous
// push. There is no rollback: the Secret is only read, so a failed run leaves
// nothing to undo.
func (u *UseCase) Sync(ctx context.Context, req model.TriggerRequest) *model.SyncResult {
	startAt := time.Now()
	ctx, cleanup := withSyncLogger(ctx, req, u.Target)

	var res *model.SyncResult
	if err := req.Validate(); err != nil {
		res = &model.SyncResult{Request: req, Target: u.Target, Stage: model.StageValidation, Err: err}
	} else if err := u.serial.Acquire(ctx, 1); err != nil {
		res = &model.SyncResult{Request: req, Target: u.Target, Stage: model.StageFetch, Err: fmt.Errorf("waiting for in-flight sync: %w", err)}
	} else {
		res = u.run(ctx, req)
		u.serial.Release(1)
	}
	res.Elapsed = time.Since(startAt)

	result := "success"
	switch {
	case res.Err != nil:
		result = "failure"
	case res.Skipped:
		result = "skipped"
	}
	u.Metrics.ObserveSync(string(res.Stage), result, res.Elapsed)
	cleanup(res)
	return res
}

func (u *UseCase) run(ctx context.Context, req model.TriggerRequest) *model.SyncResult {
	res := &model.SyncResult{Request: req, Target: u.Target}
	logger := logging.FromContext(ctx)

	material, attempts, err := u.fetch(ctx, req)
	res.FetchAttempts = attempts
	if err != nil {
		res.Stage, res.Err = model.StageFetch, err
		return res
	}
	fp := material.Fingerprint()
	res.Fingerprint = fp
	logger.Debug(ctx, "fetched certificate material", "fingerprint", naming.ShortHash(fp, 12), "attempts", attempts)

	targetKey := u.Target.String()
	if u.recent != nil {
		if item := u.recent.Get(targetKey); item != nil && item.Value() == fp {
			logger.Info(ctx, "material already pushed recently, skipping", "fingerprint", naming.ShortHash(fp, 12))
			res.Stage, res.Skipped = model.StageDone, true
			return res
		}
	}

	pr, err := u.Pusher.PushCertificate(ctx, u.Target, material)
	if pr != nil {
		res.PushAttempts = pr.Attempts
	}
	if err != nil {
		var pe *model.PushError
		if errors.As(err, &pe) {
			res.PushAttempts = pe.Attempts
		}
		res.Stage, res.Err = model.StagePush, err
		return res
	}
	if u.recent != nil {
		u.recent.Set(targetKey, fp, ttlcache.DefaultTTL)
	}
	res.Stage = model.StageDone
	return res
}

// fetch reads the Secret, retrying while it is not found yet or a single read
// times out. Malformed Secrets and other cluster errors end the run at once.
func (u *UseCase) fetch(ctx context.Context, req model.TriggerRequest) (*model.CredentialMaterial, int, error) {
	logger := logging.FromContext(ctx)
	var material *model.CredentialMaterial
	attempts, err := retry.Do(ctx, u.Policy.FetchRetry, func(ctx context.Context, attempt int) error {
		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if u.Policy.FetchTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, u.Policy.FetchTimeout)
		}
		defer cancel()

		m, err := u.Fetcher.Fetch(callCtx, req.SecretNamespace, req.SecretName)
		if err == nil {
			material = m
			return nil
		}
		switch {
		case errors.Is(err, model.ErrSecretNotFound):
			logger.Debug(ctx, "secret not found yet", "attempt", attempt)
			return retry.Retryable(err)
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			logger.Warn(ctx, "secret read timed out", "attempt", attempt)
			return retry.Retryable(err)
		}
		return err
	})
	return material, attempts, retry.Cause(err)
}
