package tui

import (
	"fmt"
	"strconv"

	table "github.com/charmbracelet/bubbles/table"

	"geostyle/internal/style"
)

var stylerColumns = []table.Column{
	{Title: "#", Width: 3},
	{Title: "item", Width: 14},
	{Title: "kind", Width: 8},
	{Title: "symbolizer", Width: 14},
	{Title: "state", Width: 7},
	{Title: "prims", Width: 6},
	{Title: "bbox", Width: 34},
}

// refreshStylerTable lists every styler of the scene.
func (m *Model) refreshStylerTable() {
	var rows []table.Row
	for _, it := range m.scene.Root.Items() {
		for _, st := range it.Stylers() {
			rows = append(rows, table.Row{
				strconv.Itoa(len(rows) + 1),
				it.Name,
				st.Kind().String(),
				symbolizerName(st.Symbolizer()),
				st.State().String(),
				primitiveCount(st),
				bboxString(st),
			})
		}
	}
	// rows must never be wider than the columns
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(stylerColumns)
	m.tbl.SetRows(rows)
}

func symbolizerName(sym style.Symbolizer) string {
	if sym == nil {
		return ""
	}
	return sym.Base().Name
}

func primitiveCount(st style.Styler) string {
	switch st.Kind() {
	case style.KindPoint, style.KindLine, style.KindPolygon:
		n, err := walkPrimitives(st, nil)
		if err != nil {
			return "err"
		}
		return strconv.Itoa(n)
	}
	return "-"
}

func bboxString(st style.Styler) string {
	b := st.BoundingBox()
	if b == nil || b.IsNull() {
		return "-"
	}
	return fmt.Sprintf("%.2f,%.2f %.2f,%.2f", b.MinX, b.MinY, b.MaxX, b.MaxY)
}
