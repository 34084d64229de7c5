package report

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"entres/internal/resolve"
)

const missingValue = "-"

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// ClusterTable renders one row per record, grouped by cluster. Field
// columns follow schema order; a metadata column is added when any record
// carries metadata.
func ClusterTable(groups []resolve.Group) string {
	fields := fieldNames(groups)
	withMeta := hasMetadata(groups)

	headers := append([]string{"Cluster", "Ref"}, fields...)
	aligns := []columnAlignment{alignRight, alignRight}
	if withMeta {
		headers = append(headers, "Metadata")
	}

	blocks := make([][][]string, 0, len(groups))
	for _, g := range groups {
		rows := make([][]string, 0, len(g.Records))
		for i, rec := range g.Records {
			cluster := ""
			if i == 0 {
				cluster = strconv.FormatUint(g.ClusterID, 10)
			}
			row := []string{cluster, strconv.FormatUint(rec.ReferenceID, 10)}
			for _, name := range fields {
				row = append(row, formatValue(rec, name))
			}
			if withMeta {
				row = append(row, metadataText(rec))
			}
			rows = append(rows, row)
		}
		blocks = append(blocks, rows)
	}
	return renderTable(headers, blocks, aligns)
}

// renderTable draws each block of rows with a separator between blocks.
func renderTable(headers []string, blocks [][][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for b, rows := range blocks {
		if b > 0 {
			tw.AppendSeparator()
		}
		for _, row := range rows {
			r := make(table.Row, columns)
			for i := 0; i < columns; i++ {
				if i < len(row) {
					r[i] = row[i]
				} else {
					r[i] = ""
				}
			}
			tw.AppendRow(r)
		}
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func fieldNames(groups []resolve.Group) []string {
	for _, g := range groups {
		for _, rec := range g.Records {
			names := make([]string, len(rec.Fields))
			for i, f := range rec.Fields {
				names[i] = f.Name
			}
			return names
		}
	}
	return nil
}

func hasMetadata(groups []resolve.Group) bool {
	for _, g := range groups {
		for _, rec := range g.Records {
			if len(rec.Metadata) > 0 {
				return true
			}
		}
	}
	return false
}

func formatValue(rec resolve.RecordView, name string) string {
	v, ok := rec.Value(name)
	if !ok {
		return missingValue
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func metadataText(rec resolve.RecordView) string {
	if len(rec.Metadata) == 0 {
		return missingValue
	}
	return string(rec.Metadata)
}
