package ui

import (
	"strings"

	"forest-ca/internal/core"
)

// Lines formats a sim's parameter snapshot as HUD text, one group header
// followed by its "label: value" rows. Sims without parameters show their name.
func Lines(sim core.Sim) []string {
	provider, ok := sim.(core.ParameterProvider)
	if !ok {
		return []string{sim.Name()}
	}
	var lines []string
	for _, g := range provider.Parameters().Groups {
		header := g.Name
		if g.Summary != "" {
			header += " (" + g.Summary + ")"
		}
		lines = append(lines, header)
		for _, p := range g.Params {
			lines = append(lines, "  "+p.Label+": "+p.Value)
		}
	}
	return lines
}

// Title is the panel heading for sim, e.g. "Forestfire Controls".
func Title(sim core.Sim) string {
	if sim == nil || sim.Name() == "" {
		return "Controls"
	}
	name := sim.Name()
	return strings.ToUpper(name[:1]) + name[1:] + " Controls"
}
