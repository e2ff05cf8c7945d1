// Package health exposes liveness and readiness probes over HTTP. Probes are
// registered as plain error-returning functions; a failing required probe
// makes the service not ready, a failing optional probe only degrades it.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Probe inspects one dependency. The detail string is included in the
// readiness report whether or not the probe fails.
type Probe func(ctx context.Context) (detail string, err error)

// ProbeResult is the outcome of a single probe run.
type ProbeResult struct {
	Name     string `json:"name"`
	Detail   string `json:"detail,omitempty"`
	Error    string `json:"error,omitempty"`
	Took     string `json:"took"`
	Required bool   `json:"required"`
}

// Report aggregates one run of every registered probe.
type Report struct {
	Status    string        `json:"status"`
	Probes    []ProbeResult `json:"probes"`
	CheckedAt time.Time     `json:"checked_at"`
}

const (
	statusReady    = "ready"
	statusDegraded = "degraded"
	statusNotReady = "not_ready"
)

type entry struct {
	name     string
	required bool
	probe    Probe
}

// Checker runs registered probes in registration order.
type Checker struct {
	entries      []entry
	probeTimeout time.Duration
}

// New returns a Checker with a per-probe timeout.
func New(probeTimeout time.Duration) *Checker {
	if probeTimeout <= 0 {
		probeTimeout = 2 * time.Second
	}
	return &Checker{probeTimeout: probeTimeout}
}

// Add registers a probe. Required probes gate readiness; optional probes can
// only degrade the report. Registration is expected to happen during startup,
// before the HTTP server accepts traffic.
func (c *Checker) Add(name string, required bool, p Probe) {
	c.entries = append(c.entries, entry{name: name, required: required, probe: p})
}

// Report runs every probe once and aggregates the outcome.
func (c *Checker) Report(ctx context.Context) Report {
	rep := Report{Status: statusReady, CheckedAt: time.Now().UTC()}
	for _, e := range c.entries {
		probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
		start := time.Now()
		detail, err := e.probe(probeCtx)
		cancel()

		res := ProbeResult{
			Name:     e.name,
			Detail:   detail,
			Took:     time.Since(start).Round(time.Millisecond).String(),
			Required: e.required,
		}
		if err != nil {
			res.Error = err.Error()
			if e.required {
				rep.Status = statusNotReady
			} else if rep.Status == statusReady {
				rep.Status = statusDegraded
			}
		}
		rep.Probes = append(rep.Probes, res)
	}
	return rep
}

// Liveness answers 200 as long as the process can serve HTTP at all.
func (c *Checker) Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
	}
}

// Readiness runs the probes and answers 503 when a required one fails.
func (c *Checker) Readiness() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep := c.Report(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if rep.Status == statusNotReady {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(rep)
	}
}
