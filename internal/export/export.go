// Package export renders viewport ring overlays for headless output.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/litescript/ls-twinmap/internal/rings"
	"github.com/litescript/ls-twinmap/internal/state"
	"github.com/litescript/ls-twinmap/internal/viewport"
)

// Source is the read side of the state manager.
type Source interface {
	Snapshot() state.Snapshot
	Rings(id viewport.ID) (rings.Set, bool)
}

// SnapshotExport is the JSON document written by --geojson.
type SnapshotExport struct {
	Timestamp     time.Time        `json:"timestamp"`
	HoveredRadius *float64         `json:"hovered_radius,omitempty"`
	Viewports     []ViewportExport `json:"viewports"`
}

// ViewportExport is one viewport with its overlay collections.
type ViewportExport struct {
	ID            string                     `json:"id"`
	Label         string                     `json:"label"`
	Center        [2]float64                 `json:"center"` // lon, lat
	Zoom          float64                    `json:"zoom"`
	Bearing       float64                    `json:"bearing"`
	Locked        bool                       `json:"locked"`
	AllowRotation bool                       `json:"allow_rotation"`
	Rings         *geojson.FeatureCollection `json:"rings"`
	Labels        *geojson.FeatureCollection `json:"labels"`
}

// ExportSnapshot collects every attached viewport and its current ring set.
func ExportSnapshot(src Source, at time.Time) *SnapshotExport {
	snap := src.Snapshot()
	export := &SnapshotExport{
		Timestamp:     at,
		HoveredRadius: snap.HoveredRadius,
		Viewports:     make([]ViewportExport, 0, len(snap.Viewports)),
	}

	for _, st := range snap.Viewports {
		set, _ := src.Rings(st.ID)
		export.Viewports = append(export.Viewports, ViewportExport{
			ID:            string(st.ID),
			Label:         st.Label,
			Center:        [2]float64{st.Center.Lon, st.Center.Lat},
			Zoom:          st.Zoom,
			Bearing:       st.Bearing,
			Locked:        st.Locked,
			AllowRotation: st.AllowRotation,
			Rings:         set.FeatureCollection(),
			Labels:        set.LabelCollection(),
		})
	}
	return export
}

// WriteJSON writes the snapshot as JSON to the given writer.
func (s *SnapshotExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// SummaryRow is one labeled ring in the summary table.
type SummaryRow struct {
	Viewport string
	Ring     int
	Radius   string
	Lon      float64
	Lat      float64
}

// GenerateSummaryRows lists the visible ring labels of every viewport.
func GenerateSummaryRows(src Source) []SummaryRow {
	var rows []SummaryRow
	for _, st := range src.Snapshot().Viewports {
		set, ok := src.Rings(st.ID)
		if !ok {
			continue
		}
		for _, l := range set.Labels() {
			rows = append(rows, SummaryRow{
				Viewport: string(st.ID),
				Ring:     l.Index,
				Radius:   l.Text,
				Lon:      l.Point.Lon,
				Lat:      l.Point.Lat,
			})
		}
	}
	return rows
}

// WriteSummaryTable writes a text table of viewports and label positions.
func WriteSummaryTable(w io.Writer, src Source, timestamp time.Time) {
	snap := src.Snapshot()

	fmt.Fprintf(w, "Twin map @ %s\n", timestamp.Format(time.RFC3339))
	fmt.Fprintln(w, strings.Repeat("─", 72))

	if len(snap.Viewports) == 0 {
		fmt.Fprintln(w, "No viewports")
		return
	}

	fmt.Fprintf(w, "%-10s %-24s %-22s %6s %8s %-6s\n",
		"Viewport", "Label", "Center", "Zoom", "Bearing", "Lock")
	for _, st := range snap.Viewports {
		lock := "free"
		if st.Locked {
			lock = "locked"
		}
		fmt.Fprintf(w, "%-10s %-24s %-22s %6.1f %8s %-6s\n",
			truncateStr(string(st.ID), 10),
			truncateStr(st.Label, 24),
			st.Center.String(),
			st.Zoom,
			viewport.FormatBearing(st.Bearing),
			lock,
		)
	}

	rows := GenerateSummaryRows(src)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-10s %4s %-8s %11s %11s\n", "Viewport", "Ring", "Radius", "Lon", "Lat")
	fmt.Fprintln(w, strings.Repeat("─", 72))
	for _, r := range rows {
		fmt.Fprintf(w, "%-10s %4d %-8s %11.6f %11.6f\n",
			truncateStr(r.Viewport, 10), r.Ring, r.Radius, r.Lon, r.Lat)
	}

	fmt.Fprintf(w, "\nTotal: %d labeled rings\n", len(rows))
}

func truncateStr(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-2]) + ".."
}
