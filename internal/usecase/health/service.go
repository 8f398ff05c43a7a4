package health

import (
	"context"
	"sort"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the search engine is unreachable.
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

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	// Cluster is the engine cluster status (green, yellow, red), empty when unknown.
	Cluster string
}

type backend struct {
	name    string
	checker Checker
}

// Service coordinates health checks.
type Service struct {
	search   SearchPinger
	cluster  ClusterInspector
	backends []backend
}

// New creates a Service. cluster can be nil.
func New(search SearchPinger, cluster ClusterInspector) *Service {
	return &Service{search: search, cluster: cluster}
}

// WithBackend adds a named storage backend check.
func (s *Service) WithBackend(name string, c Checker) *Service {
	s.backends = append(s.backends, backend{name: name, checker: c})
	sort.SliceStable(s.backends, func(i, j int) bool { return s.backends[i].name < s.backends[j].name })
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Status: Healthy, Checks: make(map[string]CheckResult)}

	if err := s.search.Ping(ctx); err != nil {
		r.Checks["search"] = CheckError
		r.Status = Unhealthy
	} else {
		r.Checks["search"] = CheckOK
	}

	if s.cluster != nil && r.Status != Unhealthy {
		h, err := s.cluster.ClusterHealth(ctx)
		switch {
		case err != nil:
			r.Checks["cluster"] = CheckError
		case h.Status == "red":
			r.Cluster = h.Status
			r.Checks["cluster"] = CheckError
		default:
			r.Cluster = h.Status
			r.Checks["cluster"] = CheckOK
		}
	}

	for _, b := range s.backends {
		if err := b.checker.Ping(ctx); err != nil {
			r.Checks[b.name] = CheckError
		} else {
			r.Checks[b.name] = CheckOK
		}
	}

	if r.Status == Healthy {
		for _, v := range r.Checks {
			if v == CheckError {
				r.Status = Degraded
				break
			}
		}
	}
	return r
}
