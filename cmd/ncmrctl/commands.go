package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ncmr/internal/ncmr/controller"
	"ncmr/internal/ncmr/models"
)

func (c *cli) listCmd() *cobra.Command {
	var search, status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List NCMRs, most recent first",
		Long: `List NCMRs matching an optional search term and status.

The search term is matched case-insensitively against the NCMR number,
part number, part name and supplier.

Examples:
  ncmrctl list
  ncmrctl list --search bracket --status open -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := models.ParseStatusFilter(status)
			if err != nil {
				return err
			}
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(cmd, a)

			records := a.Controller.QueryAll(models.Filter{Search: search, Status: filter})
			if records == nil {
				records = []models.Record{}
			}
			return render(cmd.OutOrStdout(), c.outputFmt, records, recordsTable(records))
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search term")
	cmd.Flags().StringVar(&status, "status", "all", "Status filter: all, open, in-progress, closed")
	return cmd
}

func (c *cli) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show counts by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(cmd, a)

			s := a.Controller.Summary()
			return render(cmd.OutOrStdout(), c.outputFmt, s, summaryTable(s))
		},
	}
}

func (c *cli) createCmd() *cobra.Command {
	var d models.Draft
	var severity string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Report a new NCMR",
		Long: `Report a new NCMR. Part number, part name, a positive quantity and a
defect description are required.

Example:
  ncmrctl create --part-number BR-200 --part-name Bracket --quantity 5 \
    --defect "Crack along weld" --disposition Scrap --severity major`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sev, err := models.ParseSeverity(severity)
			if err != nil {
				return err
			}
			d.Severity = sev
			if err := d.Validate(); err != nil {
				return err
			}
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(cmd, a)

			record, err := a.Controller.Create(cmd.Context(), d)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), c.outputFmt, record, recordDetail(record))
		},
	}
	f := cmd.Flags()
	f.StringVar(&d.PartNumber, "part-number", "", "Part number (required)")
	f.StringVar(&d.PartName, "part-name", "", "Part name (required)")
	f.IntVar(&d.Quantity, "quantity", 0, "Nonconforming quantity (required)")
	f.StringVar(&d.LotNumber, "lot", "", "Lot number")
	f.StringVar(&d.Supplier, "supplier", "", "Supplier")
	f.StringVar(&severity, "severity", "minor", "Severity: minor, major, critical")
	f.StringVar(&d.ReportedBy, "reported-by", "", "Reporter")
	f.StringVar(&d.Department, "department", "", "Department")
	f.StringVar(&d.DefectDescription, "defect", "", "Defect description (required)")
	f.StringVar(&d.DispositionAction, "disposition", "", "Disposition action")
	return cmd
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <open|in-progress|closed>",
		Short: "Change the status of an NCMR",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := models.ParseStatus(args[1])
			if err != nil {
				return err
			}
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(cmd, a)

			if err := a.Controller.UpdateStatus(cmd.Context(), args[0], status); err != nil {
				return err
			}
			record, err := a.Controller.Select(args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), c.outputFmt, record, recordDetail(record))
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an NCMR (local mode only)",
		Long: `Delete an NCMR from the local store. Asks for confirmation unless --yes
is given. The hosted record service does not support deletion.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(cmd, a)

			confirm := controller.Confirmed
			if !yes {
				confirm = prompt(cmd.InOrStdin(), cmd.ErrOrStderr())
			}
			deleted, err := a.Controller.Delete(cmd.Context(), args[0], confirm)
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintln(cmd.ErrOrStderr(), "aborted")
				return nil
			}
			if c.outputFmt != formatTable {
				return render(cmd.OutOrStdout(), c.outputFmt, map[string]any{"id": args[0], "deleted": true}, nil)
			}
			return render(cmd.OutOrStdout(), c.outputFmt, nil, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "deleted %s\n", args[0])
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// prompt asks on out and reads one answer from in. Anything but y or yes
// declines.
func prompt(in io.Reader, out io.Writer) controller.Confirmer {
	return func(r models.Record) bool {
		fmt.Fprintf(out, "Delete %s (%s %s)? [y/N]: ", r.NCMRNumber, r.PartNumber, r.PartName)
		answer, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && answer == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		}
		return false
	}
}
