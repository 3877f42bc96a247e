package server

import "context"

type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

type OkHealthChecker struct {
}

func NewOkHealthChecker() *OkHealthChecker {
	return &OkHealthChecker{}
}

func (hc *OkHealthChecker) Healthy(ctx context.Context) bool {
	return true
}

// HealthCheckFunc adapts a plain function to HealthChecker
type HealthCheckFunc func(ctx context.Context) bool

func (f HealthCheckFunc) Healthy(ctx context.Context) bool {
	return f(ctx)
}
