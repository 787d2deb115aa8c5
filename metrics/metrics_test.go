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

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestConditionInstalledTracksGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ConditionInstalled()
	c.ConditionInstalled()
	c.ConditionRemoved()

	m := &dto.Metric{}
	c.ConditionsInstalled.Write(m)
	if got := m.GetGauge().GetValue(); got != 1 {
		t.Fatalf("expected gauge value 1, got %v", got)
	}
}

func TestActionFiredIncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ActionFired()
	c.ActionFired()

	m := &dto.Metric{}
	c.ActionsFired.Write(m)
	if got := m.GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected counter value 2, got %v", got)
	}
}

func TestObserveHubCallRecordsHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveHubCall("load_devices", 10*time.Millisecond)

	m := &dto.Metric{}
	c.HubCallDuration.WithLabelValues("load_devices").(prometheus.Histogram).Write(m)
	if got := m.GetHistogram().GetSampleCount(); got != 1 {
		t.Fatalf("expected one histogram sample, got %v", got)
	}
}
