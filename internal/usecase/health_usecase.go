package usecase

import (
	"context"
	"time"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthUsecase interface {
	// Check returns per-dependency status and whether all are up.
	Check(ctx context.Context) (map[string]string, bool)
}

type healthUsecase struct {
	deps map[string]Pinger
}

// NewHealthUsecase checks every named dependency. Nil entries are skipped.
func NewHealthUsecase(deps map[string]Pinger) HealthUsecase {
	filtered := make(map[string]Pinger, len(deps))
	for name, p := range deps {
		if p != nil {
			filtered[name] = p
		}
	}
	return &healthUsecase{deps: filtered}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	result := map[string]string{"status": "ok"}
	healthy := true

	for name, dep := range u.deps {
		pingCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		err := dep.Ping(pingCtx)
		cancel()
		if err != nil {
			result[name] = "down"
			healthy = false
			continue
		}
		result[name] = "up"
	}

	if !healthy {
		result["status"] = "degraded"
	}
	return result, healthy
}
