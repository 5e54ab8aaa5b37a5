// Package metrics counts adapter activity on a private prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "aimm"

// Metrics holds the adapter counters. A nil *Metrics is valid and counts
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	FilesParsed    *prometheus.CounterVec
	ParseFailures  *prometheus.CounterVec
	Diagnostics    *prometheus.CounterVec
	Identification *prometheus.CounterVec
	CatalogWrites  *prometheus.CounterVec
}

// New returns Metrics registered on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		FilesParsed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "files",
				Name:      "parsed_total",
				Help:      "Files parsed, by format",
			},
			[]string{"format"},
		),

		ParseFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "files",
				Name:      "failures_total",
				Help:      "Files that failed to parse, by format",
			},
			[]string{"format"},
		),

		Diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "labview",
				Name:      "diagnostics_total",
				Help:      "Malformed header fragments, by section",
			},
			[]string{"section"},
		),

		Identification: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "xray",
				Name:      "identifications_total",
				Help:      "Element identifications, by outcome (matched or unmatched)",
			},
			[]string{"outcome"},
		),

		CatalogWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "catalog",
				Name:      "writes_total",
				Help:      "Catalog entries written, by container",
			},
			[]string{"container"},
		),
	}
	m.registry.MustRegister(
		m.FilesParsed,
		m.ParseFailures,
		m.Diagnostics,
		m.Identification,
		m.CatalogWrites,
	)
	return m
}

// Registry returns the registry the counters are registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Parsed counts a parse attempt of the given format.
func (m *Metrics) Parsed(format string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ParseFailures.WithLabelValues(format).Inc()
		return
	}
	m.FilesParsed.WithLabelValues(format).Inc()
}

// Diagnosed counts a header diagnostic in section.
func (m *Metrics) Diagnosed(section string) {
	if m == nil {
		return
	}
	m.Diagnostics.WithLabelValues(section).Inc()
}

// Identified counts an identification outcome.
func (m *Metrics) Identified(found bool) {
	if m == nil {
		return
	}
	outcome := "unmatched"
	if found {
		outcome = "matched"
	}
	m.Identification.WithLabelValues(outcome).Inc()
}

// Wrote counts a catalog write into container.
func (m *Metrics) Wrote(container string) {
	if m == nil {
		return
	}
	if container == "" {
		container = "root"
	}
	m.CatalogWrites.WithLabelValues(container).Inc()
}

// WriteFile writes the registry in the text exposition format, for the
// node exporter's textfile collector.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
