package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"route-assignment-service/internal/adapters/pdftext"
	"route-assignment-service/internal/adapters/sheets"
	"route-assignment-service/internal/services"
)

type runOptions struct {
	dop     string
	fleet   string
	cortex  string
	sheets  []string
	persist bool
	cycleID string
}

// RunCmd executes a whole cycle over local files and prints the result.
func RunCmd(now func() time.Time) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Ingest local files and assign vehicles to routes",
		Long: `Ingest a route plan, fleet list, driver assignments and load manifests,
validate them against each other, then assign vehicles and print the result.

Examples:
  routectl run --dop dop.xlsx --fleet fleet.xlsx
  routectl run --dop dop.csv --fleet fleet.csv --cortex cortex.csv --sheets cx101.pdf,cx102.pdf
  routectl run --dop dop.csv --fleet fleet.csv --persist --db data/app.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.dop == "" || opts.fleet == "" {
				return errors.New("--dop and --fleet are required")
			}

			rules, err := loadRules(cmd)
			if err != nil {
				return err
			}
			deps, err := rules.CycleDeps()
			if err != nil {
				return err
			}
			deps.Sheets = sheets.NewReader()
			deps.Text = pdftext.NewExtractor()
			deps.Now = now

			if opts.persist {
				s, err := openStore(cmd.Context(), cmd)
				if err != nil {
					return err
				}
				defer s.Close()
				deps.Affinity = s.affinity()
				deps.History = s.history()
			}

			c := services.NewCycle(opts.cycleID, deps)
			return runCycle(cmd.Context(), cmd.OutOrStdout(), c, opts)
		},
	}

	cmd.Flags().StringVar(&opts.dop, "dop", "", "Route plan (DOP) spreadsheet")
	cmd.Flags().StringVar(&opts.fleet, "fleet", "", "Fleet spreadsheet")
	cmd.Flags().StringVar(&opts.cortex, "cortex", "", "Driver assignments (Cortex) spreadsheet")
	cmd.Flags().StringSliceVar(&opts.sheets, "sheets", nil, "Load manifest files (PDF or text), comma separated")
	cmd.Flags().BoolVar(&opts.persist, "persist", false, "Use and record driver affinity and assignment history")
	cmd.Flags().StringVar(&opts.cycleID, "cycle", "cli-"+now().Format("20060102"), "Cycle ID recorded with the history")
	addRulesFlag(cmd)
	addStoreFlags(cmd)
	return cmd
}

func runCycle(ctx context.Context, out io.Writer, c *services.Cycle, opts runOptions) error {
	type step struct {
		path   string
		ingest func(context.Context, services.Upload) (services.IngestResult, error)
	}
	steps := []step{
		{opts.dop, c.IngestRoutePlan},
		{opts.fleet, c.IngestFleet},
		{opts.cortex, c.IngestDriverAssignments},
	}

	for _, s := range steps {
		if s.path == "" {
			continue
		}
		up, err := readFile(s.path)
		if err != nil {
			return err
		}
		res, err := s.ingest(ctx, up)
		if err != nil {
			return err
		}
		printIngest(out, res)
	}

	if len(opts.sheets) > 0 {
		uploads := make([]services.Upload, 0, len(opts.sheets))
		for _, p := range opts.sheets {
			up, err := readFile(p)
			if err != nil {
				return err
			}
			uploads = append(uploads, up)
		}
		res, err := c.IngestLoadManifests(ctx, uploads)
		if err != nil {
			return err
		}
		printIngest(out, res)
	}

	printStatus(out, c.Status())

	res, err := c.AssignVehicles(ctx)
	if err != nil {
		return err
	}
	return printAssignments(out, res)
}

func readFile(path string) (services.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return services.Upload{}, fmt.Errorf("read %s: %w", path, err)
	}
	return services.Upload{Name: filepath.Base(path), Data: data}, nil
}
