package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"route-assignment-service/internal/adapters/repositories"
)

// InitCmd creates the history schema.
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the assignment and affinity history tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Schema ready (%s).\n", s.dialect)
			return nil
		},
	}
	addStoreFlags(cmd)
	return cmd
}

// SeedAffinityCmd imports driver-vehicle usage from a JSON export.
func SeedAffinityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-affinity <file.json>",
		Short: "Import driver-vehicle usage history from JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := repositories.SeedAffinityFromJSON(cmd.Context(), s.conn, s.dialect, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d usage records.\n", n)
			return nil
		},
	}
	addStoreFlags(cmd)
	return cmd
}

// PruneAffinityCmd drops usage older than the retention window.
func PruneAffinityCmd(now func() time.Time) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune-affinity",
		Short: "Delete driver-vehicle usage older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := loadRules(cmd)
			if err != nil {
				return err
			}
			retention := rules.Retention()
			if days, _ := cmd.Flags().GetInt("days"); days > 0 {
				retention = time.Duration(days) * 24 * time.Hour
			}

			s, err := openStore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			cutoff := now().Add(-retention)
			n, err := s.affinity().Prune(cmd.Context(), cutoff)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d usage records before %s.\n", n, cutoff.Format(time.DateOnly))
			return nil
		},
	}
	cmd.Flags().Int("days", 0, "Retention in days (default from rules)")
	addRulesFlag(cmd)
	addStoreFlags(cmd)
	return cmd
}

// AffinityCmd prints usage counts per driver and vehicle.
func AffinityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "affinity",
		Short: "Show how often each driver used each vehicle",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			stats, err := s.affinity().Stats(cmd.Context())
			if err != nil {
				return err
			}
			if len(stats) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No usage recorded.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DRIVER\tVIN\tUSES\tLAST USED")
			for _, st := range stats {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", st.DriverName, st.VIN,
					color.New(color.Bold).Sprint(st.Count), st.LastUsed.Format(time.DateOnly))
			}
			return w.Flush()
		},
	}
	addStoreFlags(cmd)
	return cmd
}
