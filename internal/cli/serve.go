package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"StarlinkWatch/internal/domain"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run metrics and the gated digest on every scheduler tick",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, _, err := opts.open()
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return application.Watch(ctx)
		},
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve metrics, series, archives and run history as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, _, err := opts.open()
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return application.Serve(ctx, opts.version)
		},
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		kind  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent pipeline runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch domain.RunKind(kind) {
			case "", domain.RunMetrics, domain.RunDigest:
			default:
				return fmt.Errorf("unknown run kind %q (want metrics or digest)", kind)
			}

			application, _, err := opts.open()
			if err != nil {
				return err
			}
			defer application.Close()

			runs, err := application.History(cmd.Context(), domain.RunKind(kind), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKIND\tSTATUS\tSTARTED\tDURATION\tDETAIL")
			for _, r := range runs {
				detail := r.Detail
				if r.Kind == domain.RunMetrics && r.Status == domain.StatusSucceeded {
					detail = fmt.Sprintf("active=%d alumina=%.1fkg", r.ActiveCount, r.AluminaKg)
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.Kind, r.Status,
					r.StartedAt.Local().Format("2006-01-02 15:04"),
					r.FinishedAt.Sub(r.StartedAt).Round(100*time.Millisecond),
					detail,
				)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "filter by run kind (metrics or digest)")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return cmd
}
