// Package health aggregates the reachability of the gateway's downstream
// services into one report.
package health

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/hugmood/internal/logging"
	"github.com/dmitrijs2005/hugmood/internal/netx"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"

	DefaultTimeout = 2 * time.Second
)

type ServiceStatus struct {
	Status string `json:"status"`
	URL    string `json:"url"`
}

type Report struct {
	Status   string                   `json:"status"`
	Services map[string]ServiceStatus `json:"services"`
}

// Healthy reports whether every probed service is healthy.
func (r *Report) Healthy() bool {
	return r.Status == StatusHealthy
}

// HealthChecker is the subset of healthpb.HealthClient used by probes.
type HealthChecker interface {
	Check(ctx context.Context, in *healthpb.HealthCheckRequest, opts ...grpc.CallOption) (*healthpb.HealthCheckResponse, error)
}

// GRPCProbe checks one service through the standard gRPC health protocol.
type GRPCProbe struct {
	Name    string
	Addr    string
	Service string
	Client  HealthChecker
}

type Checker struct {
	services map[string]string
	grpc     []GRPCProbe
	client   *http.Client
	timeout  time.Duration
	logger   logging.Logger
}

func NewChecker(services map[string]string, grpcProbes []GRPCProbe, client *http.Client, timeout time.Duration, logger logging.Logger) *Checker {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Checker{
		services: services,
		grpc:     grpcProbes,
		client:   client,
		timeout:  timeout,
		logger:   logger.With("module", "health"),
	}
}

// Check probes every service concurrently, each with its own timeout.
func (c *Checker) Check(ctx context.Context) *Report {
	report := &Report{
		Status:   StatusHealthy,
		Services: map[string]ServiceStatus{"gateway": {Status: StatusHealthy, URL: "self"}},
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	set := func(name string, st ServiceStatus) {
		mu.Lock()
		report.Services[name] = st
		if st.Status != StatusHealthy {
			report.Status = StatusDegraded
		}
		mu.Unlock()
	}

	for name, url := range c.services {
		wg.Add(1)
		go func() {
			defer wg.Done()
			set(name, ServiceStatus{Status: c.probeHTTP(ctx, name, url), URL: url})
		}()
	}
	for _, p := range c.grpc {
		wg.Add(1)
		go func() {
			defer wg.Done()
			set(p.Name, ServiceStatus{Status: c.probeGRPC(ctx, p), URL: p.Addr})
		}()
	}
	wg.Wait()

	return report
}

func (c *Checker) probeHTTP(ctx context.Context, name, url string) string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := netx.Do(ctx, c.client, http.MethodGet, strings.TrimRight(url, "/")+"/health", nil, nil)
	if err != nil {
		c.logger.Debug(ctx, "health probe failed", "service", name, "error", err)
		return StatusUnhealthy
	}
	if resp.Status != http.StatusOK {
		return StatusUnhealthy
	}
	return StatusHealthy
}

func (c *Checker) probeGRPC(ctx context.Context, p GRPCProbe) string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := p.Client.Check(ctx, &healthpb.HealthCheckRequest{Service: p.Service})
	if err != nil {
		c.logger.Debug(ctx, "grpc health probe failed", "service", p.Name, "error", err)
		return StatusUnhealthy
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return StatusUnhealthy
	}
	return StatusHealthy
}
