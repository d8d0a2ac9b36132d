//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"sort"
	"time"
)

// SystemStatus is the Control API's view of the platform.
type SystemStatus struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
	Uptime   float64           `json:"uptime"`
	Version  string            `json:"version"`
}

// Halted reports whether an override halt is in effect.
func (s SystemStatus) Halted() bool { return s.Status == "HALT" }

// UptimeDuration converts the uptime seconds to a duration.
func (s SystemStatus) UptimeDuration() time.Duration {
	return time.Duration(s.Uptime * float64(time.Second))
}

// ServiceHealth is one row of the service table.
type ServiceHealth struct {
	Name   string
	Health string
}

// SortedServices returns the services ordered by name.
func (s SystemStatus) SortedServices() []ServiceHealth {
	out := make([]ServiceHealth, 0, len(s.Services))
	for name, health := range s.Services {
		out = append(out, ServiceHealth{Name: name, Health: health})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Healthy reports whether every service reports "healthy".
func (s SystemStatus) Healthy() bool {
	for _, h := range s.Services {
		if h != "healthy" {
			return false
		}
	}
	return true
}
