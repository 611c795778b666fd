// Package report turns a finished run into artefacts for people: a YAML
// summary of the configuration and burning series, and a line chart.
package report

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"forest-ca/internal/sims/forestfire"
)

// Report is the end-of-run summary handed to plotting and storage.
type Report struct {
	Config      forestfire.Config `yaml:"config"`
	Steps       int               `yaml:"steps"`
	Peak        int               `yaml:"peak"`
	PeakStep    int               `yaml:"peak_step"`
	TotalBurned int               `yaml:"total_burned"`
	Burning     []int             `yaml:"burning"`
}

// New summarises a series recorded under cfg.
func New(cfg forestfire.Config, series forestfire.Series) Report {
	peak, at := series.Peak()
	return Report{
		Config:      cfg,
		Steps:       series.Len() - 1,
		Peak:        peak,
		PeakStep:    at,
		TotalBurned: series.Total(),
		Burning:     series.Values(),
	}
}

// FromSeries summarises burning counts loaded from storage, step 0 first.
func FromSeries(cfg forestfire.Config, burning []int) Report {
	var s forestfire.Series
	for _, n := range burning {
		s.Append(n)
	}
	return New(cfg, s)
}

// FromDriver summarises the run held by d.
func FromDriver(d *forestfire.Driver) Report {
	return New(d.Config(), d.Series())
}

// Title names the run the way the chart header does.
func (r Report) Title() string {
	return fmt.Sprintf("Forest Fire Simulation (size=%dx%d, p=%g, lightning=%g)",
		r.Config.Width, r.Config.Height, r.Config.GrowProbability, r.Config.LightningProbability)
}

// WriteYAML encodes the report.
func (r Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

// ReadYAML decodes a report previously written by WriteYAML.
func ReadYAML(rd io.Reader) (Report, error) {
	var r Report
	if err := yaml.NewDecoder(rd).Decode(&r); err != nil {
		return Report{}, fmt.Errorf("decode report: %w", err)
	}
	if len(r.Burning) == 0 {
		return Report{}, fmt.Errorf("decode report: no burning series")
	}
	return r, nil
}
