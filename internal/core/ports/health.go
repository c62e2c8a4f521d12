package ports

import "context"

//go:generate mockgen -source=health.go -destination=mocks/health.go -package=mocks

// HealthChecker reports liveness of a backing dependency.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Name() string
}
