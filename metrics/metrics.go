// Mgmt
// Copyright (C) 2013-2024+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package metrics collects Prometheus metrics for the process manager and
// the hub client. Collectors are registered against a caller-supplied
// prometheus.Registerer; cmd/ruled passes the global default registerer,
// which is what the API's /metrics route serves.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors bundles every metric this engine exposes. Build one with New
// and register it once at startup.
type Collectors struct {
	ConditionsInstalled prometheus.Gauge
	ActionsFired        prometheus.Counter
	HubCallDuration     *prometheus.HistogramVec
}

// New builds a Collectors and registers it against reg.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		ConditionsInstalled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ruled",
			Name:      "conditions_installed",
			Help:      "Number of conditions currently tracked by the process manager.",
		}),
		ActionsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ruled",
			Name:      "actions_fired_total",
			Help:      "Number of condition actions fired.",
		}),
		HubCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ruled",
			Name:      "hub_call_duration_seconds",
			Help:      "Latency of outbound hub adapter calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	reg.MustRegister(c.ConditionsInstalled, c.ActionsFired, c.HubCallDuration)
	return c
}

// ConditionInstalled implements procmgr.Metrics.
func (c *Collectors) ConditionInstalled() { c.ConditionsInstalled.Inc() }

// ConditionRemoved implements procmgr.Metrics.
func (c *Collectors) ConditionRemoved() { c.ConditionsInstalled.Dec() }

// ActionFired implements procmgr.Metrics.
func (c *Collectors) ActionFired() { c.ActionsFired.Inc() }

// ObserveHubCall records the duration of a single hub adapter call, labeled
// by the method name (load_devices, send_command, get_attribute).
func (c *Collectors) ObserveHubCall(method string, d time.Duration) {
	c.HubCallDuration.WithLabelValues(method).Observe(d.Seconds())
}
