// Package report formats route results as plain text and saves them to disk.
package report

import (
	"fmt"
	"strings"

	"github.com/waypointcli/waypoint/internal/geocoding"
	"github.com/waypointcli/waypoint/internal/routing"
)

// MilesPerKilometer converts kilometres to statute miles.
const MilesPerKilometer = 0.621371

// Miles converts kilometres to miles.
func Miles(km float64) float64 {
	return km * MilesPerKilometer
}

// FormatDuration renders seconds as HH:MM:SS. Hours are not wrapped at 24.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatSummary renders the route summary block. Every line ends in "\n".
func FormatSummary(points []geocoding.ResolvedPoint, profile routing.Profile, route *routing.Route) string {
	var b strings.Builder

	b.WriteString("=== Route Summary ===\n")
	for i, p := range points {
		if i == 0 {
			fmt.Fprintf(&b, "From: %s\n", p.Name)
			continue
		}
		fmt.Fprintf(&b, "  → %s\n", p.Name)
	}

	km := route.DistanceMeters / 1000
	fmt.Fprintf(&b, "Vehicle: %s\n", profile)
	fmt.Fprintf(&b, "Distance: %.2f km (%.2f mi)\n", km, Miles(km))
	fmt.Fprintf(&b, "Duration: %s\n", FormatDuration(route.DurationSeconds))

	return b.String()
}

// FormatInstructions renders the numbered turn-by-turn list.
func FormatInstructions(route *routing.Route) string {
	var b strings.Builder

	b.WriteString("=== Step-by-step Instructions ===\n")
	for i, inst := range route.Instructions {
		fmt.Fprintf(&b, "%2d. %s [%.2f km]\n", i+1, inst.Text, inst.DistanceMeters/1000)
	}

	return b.String()
}
