package health

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the document store is failing.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentDatabase = "database"
	ComponentCache    = "cache"
)

// DefaultCheckTimeout bounds each component check.
const DefaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type component struct {
	name     string
	pinger   Pinger
	required bool
}

// Service checks the document store and, when configured, the shared cache tier.
type Service struct {
	components []component
	timeout    time.Duration
}

// New creates a health service. cache can be nil when no shared tier is configured.
func New(db, cache Pinger) *Service {
	s := &Service{
		components: []component{{name: ComponentDatabase, pinger: db, required: true}},
		timeout:    DefaultCheckTimeout,
	}
	if cache != nil {
		s.components = append(s.components, component{name: ComponentCache, pinger: cache})
	}
	return s
}

// Check pings all components concurrently. A failing required component
// makes the service Unhealthy; a failing optional one only Degraded.
func (s *Service) Check(ctx context.Context) Report {
	results := make([]CheckResult, len(s.components))

	var g errgroup.Group
	for i, c := range s.components {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			results[i] = CheckOK
			if err := c.pinger.Ping(pctx); err != nil {
				results[i] = CheckError
			}
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Status: Healthy, Checks: make(map[string]CheckResult, len(s.components))}
	for i, c := range s.components {
		report.Checks[c.name] = results[i]
		if results[i] == CheckOK {
			continue
		}
		if c.required {
			report.Status = Unhealthy
		} else if report.Status == Healthy {
			report.Status = Degraded
		}
	}
	return report
}
