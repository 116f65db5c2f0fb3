package observability

import (
	"log/slog"

	"github.com/aretw0/cuepoint/pkg/domain"
)

// Chain merges hook sets; each callback runs the non-nil callbacks of every
// set in order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var (
		fires, errs, aborts []func(*domain.TriggerEvent)
		branches            []func(*domain.BranchTaken)
	)
	for _, h := range sets {
		if h.OnTriggerFire != nil {
			fires = append(fires, h.OnTriggerFire)
		}
		if h.OnActionError != nil {
			errs = append(errs, h.OnActionError)
		}
		if h.OnChainAbort != nil {
			aborts = append(aborts, h.OnChainAbort)
		}
		if h.OnBranchTaken != nil {
			branches = append(branches, h.OnBranchTaken)
		}
	}

	return domain.LifecycleHooks{
		OnTriggerFire: fanOut(fires),
		OnActionError: fanOut(errs),
		OnChainAbort:  fanOut(aborts),
		OnBranchTaken: fanOut(branches),
	}
}

func fanOut[T any](fns []func(T)) func(T) {
	switch len(fns) {
	case 0:
		return nil
	case 1:
		return fns[0]
	}
	return func(v T) {
		for _, fn := range fns {
			fn(v)
		}
	}
}

// LogHooks returns hooks that record trigger activity on logger.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTriggerFire: func(ev *domain.TriggerEvent) {
			logger.Debug("trigger fired",
				"trigger_id", ev.TriggerID,
				"event", ev.Event,
				"action", ev.Action,
				"matched", ev.Matched,
			)
		},
		OnActionError: func(ev *domain.TriggerEvent) {
			logger.Warn("action failed",
				"trigger_id", ev.TriggerID,
				"action", ev.Action,
				"err", ev.Err,
			)
		},
		OnBranchTaken: func(b *domain.BranchTaken) {
			logger.Info("branch taken", "decision_point", b.From, "target", b.To, "default", b.Default)
		},
		OnChainAbort: func(ev *domain.TriggerEvent) {
			logger.Warn("reaction chain aborted", "trigger_id", ev.TriggerID, "event", ev.Event)
		},
	}
}
