package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lounaagency/agri-admin-dashboard/internal/app"
	"github.com/lounaagency/agri-admin-dashboard/internal/config"
	"github.com/lounaagency/agri-admin-dashboard/internal/dashboard"
	"github.com/lounaagency/agri-admin-dashboard/internal/database"
	"github.com/lounaagency/agri-admin-dashboard/internal/integrity"
	"github.com/lounaagency/agri-admin-dashboard/internal/logger"
	"github.com/lounaagency/agri-admin-dashboard/internal/reports"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "vola-admin",
	Short:         "Maintso Vola operator CLI",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withApp loads the config, connects and hands the wired services to fn
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	// CLI output goes to stdout, logs stay quiet unless something is wrong
	cfg.Logging.Format = "console"
	if cfg.Logging.Level == "info" {
		cfg.Logging.Level = "warn"
	}
	log := logger.Must(cfg.Logging)
	defer log.Sync()

	ctx := cmd.Context()
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json", "path to the JSON config file")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and seed the roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := database.Migrate(ctx, a.DB, a.Config.Database.EnablePostGIS, a.Logger); err != nil {
					return err
				}
				fmt.Println("Schema up to date")
				return nil
			})
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the dashboard counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				st := a.Dashboard.GetStats(ctx)
				cyan := color.New(color.FgCyan)
				cyan.Print("Utilisateurs:        ")
				fmt.Printf("%d (+%d cette semaine)\n", st.UserCount, st.NewUserCount)
				cyan.Print("Projets actifs:      ")
				fmt.Println(st.ActiveProjects)
				cyan.Print("Projets en attente:  ")
				fmt.Println(st.PendingProjects)
				cyan.Print("Cultures:            ")
				fmt.Println(st.CultureCount)
				cyan.Print("Investissements:     ")
				color.New(color.FgGreen).Println(dashboard.FormatAriary(st.TotalRevenue))
				return nil
			})
		},
	}

	rootCmd.AddCommand(migrateCmd, statsCmd, integrityCommand(), exportCommand())
}

func integrityCommand() *cobra.Command {
	integrityCmd := &cobra.Command{
		Use:   "integrity",
		Short: "Find and repair inconsistent rows",
	}

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "List users without role, orphan project cultures and drifted cost statuses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				report, err := a.Integrity.Scan(ctx)
				if err != nil {
					return err
				}
				if err := printJSON(report); err != nil {
					return err
				}
				if report.Total() == 0 {
					color.New(color.FgGreen).Fprintln(os.Stderr, "No integrity issues")
					return nil
				}
				yellow := color.New(color.FgYellow)
				counts := report.Counts()
				for _, kind := range integrity.Kinds {
					if counts[kind] > 0 {
						yellow.Fprintf(os.Stderr, "%-24s %d\n", kind, counts[kind])
					}
				}
				return nil
			})
		},
	}

	repairCmd := &cobra.Command{
		Use:   "repair",
		Short: "Repair every issue a scan reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				result, err := a.Integrity.Repair(ctx)
				if err != nil {
					return err
				}
				if err := printJSON(result); err != nil {
					return err
				}
				color.New(color.FgGreen).Fprintf(os.Stderr, "Repaired: %d roles, %d project cultures, %d cost statuses\n",
					result.RolesAssigned, result.CulturesDeleted, result.StatusesRepaired)
				if len(result.Failures) > 0 {
					return fmt.Errorf("%d items could not be repaired", len(result.Failures))
				}
				return nil
			})
		},
	}

	integrityCmd.AddCommand(scanCmd, repairCmd)
	return integrityCmd
}

func exportCommand() *cobra.Command {
	var (
		out       string
		archive   bool
		projectID int
	)

	exportCmd := &cobra.Command{
		Use:       "export dashboard|projects|finance",
		Short:     "Generate a report file",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"dashboard", "projects", "finance"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				var (
					file *reports.File
					err  error
				)
				switch args[0] {
				case "dashboard":
					file, err = a.Reports.DashboardPDF(ctx)
				case "projects":
					file, err = a.Reports.ProjectsCSV(ctx)
				case "finance":
					if projectID <= 0 {
						return fmt.Errorf("--project is required for the finance export")
					}
					file, err = a.Reports.ProjectFinanceWorkbook(ctx, projectID)
				}
				if err != nil {
					return err
				}

				if archive {
					archived, err := a.Reports.Archive(ctx, file)
					if err != nil {
						return err
					}
					return printJSON(archived)
				}

				path := out
				if path == "" {
					path = fmt.Sprintf("%s.%s", file.Name, file.Format)
				}
				if err := os.WriteFile(path, file.Data, 0o644); err != nil {
					return err
				}
				a.Logger.Debug("Export written", zap.String("path", path), zap.Int("bytes", len(file.Data)))
				fmt.Println(path)
				return nil
			})
		},
	}

	exportCmd.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to the report name)")
	exportCmd.Flags().BoolVar(&archive, "archive", false, "upload to the report bucket and print a download link")
	exportCmd.Flags().IntVar(&projectID, "project", 0, "project id for the finance export")
	return exportCmd
}
