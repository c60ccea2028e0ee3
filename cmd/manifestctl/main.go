// Package main provides manifestctl, an offline tool that works on the same
// manifest snapshot and sync backend as the service.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"manifest/cmd"
	"manifest/internal/adapters/out/exchange"
	"manifest/internal/core/application/usecases/commands"
	"manifest/internal/core/application/usecases/queries"
	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/services"
)

const appName = "manifestctl"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	envFile  string
	logLevel string
}

func rootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           appName,
		Short:         "Inspect and maintain the delivery manifest",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Environment file to load if present")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		listCmd(&flags),
		exportCmd(&flags),
		importCmd(&flags),
		purgeCmd(&flags),
		summaryCmd(&flags),
		syncCmd(&flags),
	)
	return root
}

// withApp builds the composition root, loads the manifest, runs fn and flushes.
func withApp(flags *globalFlags, fn func(ctx context.Context, app *cmd.CompositionRoot) error) error {
	if err := godotenv.Load(flags.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", flags.envFile, err)
	}
	cfg, err := cmd.LoadConfig(os.Getenv)
	if err != nil {
		return err
	}
	logger := cmd.NewLogger(flags.logLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := cmd.OpenRedis(ctx, cfg)
	if err != nil {
		return err
	}
	gormDB, err := cmd.OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	app, err := cmd.NewCompositionRoot(cfg, logger, redisClient, gormDB)
	if err != nil {
		return err
	}
	if err := app.Store().Load(ctx); err != nil {
		return err
	}

	runErr := fn(ctx, app)
	return errors.Join(runErr, app.Shutdown(context.WithoutCancel(ctx)))
}

func listCmd(flags *globalFlags) *cobra.Command {
	var status, sortMode string

	c := &cobra.Command{
		Use:   "list",
		Short: "Print the work list",
		RunE: func(c *cobra.Command, _ []string) error {
			return withApp(flags, func(_ context.Context, app *cmd.CompositionRoot) error {
				listed, err := listItems(app, status, sortMode)
				if err != nil {
					return err
				}
				return printList(c.OutOrStdout(), listed)
			})
		},
	}
	c.Flags().StringVar(&status, "status", "", "Only items with this status")
	c.Flags().StringVar(&sortMode, "sort", string(services.SortCustom), "Sort mode")
	return c
}

func listItems(app *cmd.CompositionRoot, status, sortMode string) (queries.ListItemsResponse, error) {
	filter, err := item.ParseStatusFilter(status)
	if err != nil {
		return queries.ListItemsResponse{}, err
	}
	mode, err := services.ParseSortMode(sortMode)
	if err != nil {
		return queries.ListItemsResponse{}, err
	}
	query, err := queries.NewListItemsQuery(filter, mode, nil)
	if err != nil {
		return queries.ListItemsResponse{}, err
	}
	return app.CreateListItemsQueryHandler().Handle(query)
}

func printList(w io.Writer, listed queries.ListItemsResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCODE\tSTATUS\tNAME\tADDRESS")
	for _, row := range listed.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			row.Position, row.Item.Code(), row.Item.Status(), row.Item.Name(), row.Item.Address())
	}
	fmt.Fprintf(tw, "\n%d listed, %d items, %d mapped\n", len(listed.Items), listed.PinCount, listed.Mapped)
	return tw.Flush()
}

func exportCmd(flags *globalFlags) *cobra.Command {
	var format, out string

	c := &cobra.Command{
		Use:   "export",
		Short: "Write the manifest as CSV or XLSX",
		RunE: func(c *cobra.Command, _ []string) error {
			return withApp(flags, func(_ context.Context, app *cmd.CompositionRoot) error {
				listed, err := listItems(app, "", string(services.SortCustom))
				if err != nil {
					return err
				}
				items := make([]*item.Item, len(listed.Items))
				for i, row := range listed.Items {
					items[i] = row.Item
				}

				w := c.OutOrStdout()
				if out != "" {
					f, err := os.Create(out)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}

				switch strings.ToLower(format) {
				case "csv":
					return exchange.WriteCSV(w, items)
				case "xlsx":
					return exchange.WriteXLSX(w, items)
				default:
					return fmt.Errorf("unknown format %q", format)
				}
			})
		},
	}
	c.Flags().StringVar(&format, "format", "csv", "Output format (csv, xlsx)")
	c.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return c
}

func importCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Merge a CSV export into the manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			items, rowErrs, err := exchange.ReadCSV(f)
			if err != nil {
				return err
			}
			for _, rowErr := range rowErrs {
				fmt.Fprintf(c.ErrOrStderr(), "skipped: %v\n", rowErr)
			}
			if len(items) == 0 {
				fmt.Fprintln(c.OutOrStdout(), "nothing to import")
				return nil
			}

			return withApp(flags, func(ctx context.Context, app *cmd.CompositionRoot) error {
				command, err := commands.NewImportItemsCommand(items)
				if err != nil {
					return err
				}
				h := app.CreateImportItemsCommandHandler()
				report, err := h.Handle(ctx, command)
				if err != nil {
					return err
				}
				for _, rejected := range report.Rejected {
					fmt.Fprintf(c.ErrOrStderr(), "rejected: %v\n", rejected)
				}
				fmt.Fprintf(c.OutOrStdout(), "imported %d of %d items\n", report.Inserted, len(items))
				return nil
			})
		},
	}
}

func purgeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-delivered",
		Short: "Remove every delivered item",
		RunE: func(c *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, app *cmd.CompositionRoot) error {
				h := app.CreatePurgeDeliveredCommandHandler()
				removed, err := h.Handle(ctx, commands.NewPurgeDeliveredCommand())
				if err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "removed %d delivered items\n", removed)
				return nil
			})
		},
	}
}

func summaryCmd(flags *globalFlags) *cobra.Command {
	var day string

	c := &cobra.Command{
		Use:   "summary",
		Short: "Print the day's totals from the sync backend",
		RunE: func(c *cobra.Command, _ []string) error {
			when := time.Now()
			if day != "" {
				parsed, err := time.ParseInLocation(time.DateOnly, day, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --day: %w", err)
				}
				when = parsed
			}

			return withApp(flags, func(ctx context.Context, app *cmd.CompositionRoot) error {
				h := app.CreateGetDaySummaryQueryHandler()
				if h == nil {
					return errors.New("sync backend is not configured (DB_HOST)")
				}
				query, err := queries.NewGetDaySummaryQuery(when)
				if err != nil {
					return err
				}
				resp, err := h.Handle(ctx, query)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "day\t%s\n", resp.Day.Format(time.DateOnly))
				for _, st := range item.Statuses() {
					if n := resp.ByStatus[st.String()]; n > 0 {
						fmt.Fprintf(tw, "%s\t%d\n", st, n)
					}
				}
				fmt.Fprintf(tw, "total\t%d\n", resp.Total)
				return tw.Flush()
			})
		},
	}
	c.Flags().StringVar(&day, "day", "", "Day to summarize (YYYY-MM-DD, default today)")
	return c
}

func syncCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Mirror the manifest into the sync backend once",
		RunE: func(c *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, app *cmd.CompositionRoot) error {
				h := app.CreateSyncManifestCommandHandler()
				if h == nil {
					return errors.New("sync backend is not configured (DB_HOST)")
				}
				report, err := h.Handle(ctx, commands.NewSyncManifestCommand())
				if err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "created %d, updated %d, unchanged %d\n",
					report.Created, report.Updated, report.Unchanged)
				return nil
			})
		},
	}
}
