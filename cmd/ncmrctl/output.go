package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"ncmr/internal/ncmr/models"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validateOutput(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
}

// render writes v as JSON or YAML, or calls table for the table format.
func render(w io.Writer, format string, v any, table func(tw *tabwriter.Writer)) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		out, err := toYAML(v)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	}
}

// toYAML goes through JSON so field names and key order match the JSON
// output.
func toYAML(v any) ([]byte, error) {
	js, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(js, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)
	return yaml.Marshal(&node)
}

func blockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" {
		n.Style &^= yaml.DoubleQuotedStyle
	}
	for _, child := range n.Content {
		blockStyle(child)
	}
}

func recordsTable(records []models.Record) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tNCMR\tPART\tNAME\tQTY\tSUPPLIER\tSEVERITY\tSTATUS\tCREATED")
		for _, r := range records {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.NCMRNumber, r.PartNumber, r.PartName, strconv.Itoa(r.Quantity),
				dash(r.Supplier), r.Severity, r.Status, r.CreatedAt.Format("2006-01-02"))
		}
	}
}

func recordDetail(r models.Record) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		rows := [][2]string{
			{"ID", r.ID},
			{"NCMR", r.NCMRNumber},
			{"Part number", r.PartNumber},
			{"Part name", r.PartName},
			{"Quantity", strconv.Itoa(r.Quantity)},
			{"Lot", dash(r.LotNumber)},
			{"Supplier", dash(r.Supplier)},
			{"Severity", string(r.Severity)},
			{"Reported by", dash(r.ReportedBy)},
			{"Department", dash(r.Department)},
			{"Defect", r.DefectDescription},
			{"Disposition", dash(r.DispositionAction)},
			{"Status", string(r.Status)},
			{"Created", r.CreatedAt.Format("2006-01-02 15:04")},
		}
		for _, row := range rows {
			fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
		}
	}
}

func summaryTable(s models.Summary) func(tw *tabwriter.Writer) {
	return func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "TOTAL\tOPEN\tIN PROGRESS\tCLOSED")
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\n", s.Total, s.Open, s.InProgress, s.Closed)
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
