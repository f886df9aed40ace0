package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/services"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
)

func statusColor(s domain.AssignmentStatus) *color.Color {
	switch s {
	case domain.StatusAutoAssigned, domain.StatusAuthorizedAssigned, domain.StatusManuallyAssigned:
		return okColor
	case domain.StatusPendingViolation:
		return warnColor
	}
	return errColor
}

func printIngest(out io.Writer, res services.IngestResult) {
	mark := okColor.Sprint("OK")
	if len(res.Errors) > 0 {
		mark = errColor.Sprint("ERR")
	}
	fmt.Fprintf(out, "%-3s %s: %d records", mark, res.Source, res.RecordsParsed)
	if res.Skipped > 0 {
		fmt.Fprintf(out, ", %d skipped", res.Skipped)
	}
	fmt.Fprintln(out)

	for _, e := range res.Errors {
		fmt.Fprintf(out, "    %s %s\n", errColor.Sprint("error:"), e)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "    %s %s\n", warnColor.Sprint("warning:"), w)
	}
}

func printStatus(out io.Writer, st services.Status) {
	if len(st.ValidationWarnings) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, color.New(color.Bold).Sprint("Cross-file checks"))
	for _, w := range st.ValidationWarnings {
		fmt.Fprintf(out, "  %s %s\n", warnColor.Sprint("!"), w)
	}
}

func printAssignments(out io.Writer, res services.AssignResult) error {
	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROUTE\tSERVICE TYPE\tVIN\tVEHICLE\tDRIVER\tSTATUS")
	for _, a := range res.Assignments {
		vin := a.VIN
		if vin == "" {
			vin = "-"
		}
		status := string(a.Status)
		if a.FallbackUsed {
			status += " (fallback)"
		}
		if a.AffinityUsed {
			status += " (affinity)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			a.RouteCode, a.RequestedServiceType, vin, a.VehicleName, a.DriverName,
			statusColor(a.Status).Sprint(status))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, f := range res.Failed {
		fmt.Fprintf(out, "  %s %s: %s\n", statusColor(f.Status).Sprint(f.RouteCode), f.Status, f.Reason)
	}

	fmt.Fprintf(out, "\nAssigned %d/%d routes (%.1f%%), %d via fallback.\n",
		res.AssignedCount, res.TotalRoutes, res.SuccessRate, res.FallbacksUsed)
	return nil
}
