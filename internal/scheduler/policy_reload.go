package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/shellgate/shellgate/internal/guard"
	"github.com/shellgate/shellgate/internal/logger"
)

// PolicyReloader re-reads the command policy file periodically and on
// manual trigger. A load failure after startup keeps the previous policy
// in force, the gateway never runs without one.
type PolicyReloader struct {
	path          string
	holder        *guard.Holder
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

func NewPolicyReloader(
	path string,
	holder *guard.Holder,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *PolicyReloader {
	return &PolicyReloader{
		path:          path,
		holder:        holder,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the policy once, failing startup on a broken file, then
// begins the periodic reload loop.
func (pr *PolicyReloader) Start(ctx context.Context) error {
	if err := pr.Reload(); err != nil {
		return fmt.Errorf("initial policy load failed: %w", err)
	}

	ticker := time.NewTicker(pr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := pr.Reload(); err != nil {
					pr.logger.Error("policy reload failed, keeping previous policy",
						logger.Error(err))
				}
			case <-pr.manualTrigger:
				pr.logger.Info("manual policy reload triggered")
				if err := pr.Reload(); err != nil {
					pr.logger.Error("policy reload failed, keeping previous policy",
						logger.Error(err))
				}
			case <-pr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader.
func (pr *PolicyReloader) Stop() {
	close(pr.stopCh)
}

// Reload reads the policy file and swaps it in. The holder is untouched
// when the file does not parse.
func (pr *PolicyReloader) Reload() error {
	policy, err := guard.LoadFile(pr.path)
	if err != nil {
		return err
	}

	pr.holder.Replace(policy, pr.path)
	pr.logger.Info("command policy loaded",
		logger.String("path", pr.path),
		logger.Int("blocked", len(policy.Blocked)),
		logger.Int("allowed_prefixes", len(policy.AllowedPrefixes)))
	return nil
}
