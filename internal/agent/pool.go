package agent

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/exp/constraints"
	"golang.org/x/sync/errgroup"

	"github.com/nhdewitt/netscope/internal/config"
	"github.com/nhdewitt/netscope/internal/protocol"
)

// job is one probe in a sweep.
type job struct {
	Target string
	Port   int
}

type probeFunc func(ctx context.Context, j job) protocol.ProbeOutcome

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// effectiveWorkers bounds the requested worker count by MaxWorkers and by a
// quarter of the open-files limit, leaving descriptors for everything else.
func effectiveWorkers(requested int, openFiles int64) int {
	hi := config.MaxWorkers
	if openFiles > 0 {
		hi = int(clamp(openFiles/4, 1, int64(config.MaxWorkers)))
	}
	return clamp(requested, 1, hi)
}

// sweep runs probe for every job with at most a.workers in flight and
// returns outcomes in job order. Jobs that have not settled when the sweep
// deadline passes are reported as errors.
func (a *Agent) sweep(ctx context.Context, jobs []job, probe probeFunc) []protocol.ProbeOutcome {
	ctx, cancel := context.WithTimeout(ctx, a.Config.SweepTimeout.D())
	defer cancel()

	results := make([]protocol.ProbeOutcome, len(jobs))
	settled := make([]bool, len(jobs))

	var g errgroup.Group
	g.SetLimit(a.workers)

	for i, j := range jobs {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					a.log.Error("panic recovered in probe", zap.Any("panic", r), zap.String("target", j.Target), zap.Int("port", j.Port))
					results[i] = protocol.ErrorOutcome(j.Target, j.Port, fmt.Sprintf("probe panicked: %v", r))
					settled[i] = true
				}
			}()

			if ctx.Err() != nil {
				return nil
			}

			out := probe(ctx, j)
			// A failure caused by the sweep deadline is not the probe's verdict.
			if ctx.Err() != nil && !out.Succeeded() {
				return nil
			}

			results[i] = out
			settled[i] = true
			return nil
		})
	}
	_ = g.Wait()

	reason := abandonReason(ctx)
	for i, j := range jobs {
		if !settled[i] {
			results[i] = protocol.ErrorOutcome(j.Target, j.Port, reason)
		}
		a.log.Debug("probe settled",
			zap.String("target", j.Target),
			zap.Int("port", j.Port),
			zap.String("kind", string(results[i].Kind)),
			zap.String("message", results[i].Message),
		)
	}

	return results
}

func abandonReason(ctx context.Context) string {
	if errors.Is(ctx.Err(), context.Canceled) {
		return "canceled"
	}
	return "timeout"
}
