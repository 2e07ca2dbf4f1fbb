package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"StarlinkWatch/internal/domain"
	"StarlinkWatch/internal/usecase"
)

func newMetricsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Fetch CelesTrak sources and refresh metrics and series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, _, err := opts.open()
			if err != nil {
				return err
			}
			defer application.Close()

			snap, err := application.RunMetrics(cmd.Context())
			if err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}
}

func newDigestCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Build the daily digest and merge its archive sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, _, err := opts.open()
			if err != nil {
				return err
			}
			defer application.Close()

			res, err := application.RunDigest(cmd.Context())
			if err != nil {
				return err
			}
			printDigest(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.force, "force", false, "ignore emission hours and the per-hour marker")
	return cmd
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run metrics, then the gated digest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, _, err := opts.open()
			if err != nil {
				return err
			}
			defer application.Close()

			snap, err := application.RunMetrics(cmd.Context())
			if err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), snap)

			res, err := application.RunDigest(cmd.Context())
			if err != nil {
				return err
			}
			printDigest(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.force, "force", false, "ignore emission hours and the per-hour marker")
	return cmd
}

func printSnapshot(out io.Writer, snap domain.MetricsSnapshot) {
	fmt.Fprintf(out, "Generated:  %s\n", snap.GeneratedAt)
	fmt.Fprintf(out, "Active:     %d\n", snap.ActiveCount)
	fmt.Fprintf(out, "Decayed:    %d\n", snap.DecayedTotal)
	fmt.Fprintf(out, "On orbit:   %.1f kg\n", snap.OnOrbitMassKg)
	fmt.Fprintf(out, "Reentered:  %.1f kg\n", snap.ReenteredMassKg)
	fmt.Fprintf(out, "Alumina:    %.1f kg\n", snap.AluminaKg)
}

func printDigest(out io.Writer, res usecase.DigestResult) {
	if res.Skipped {
		fmt.Fprintln(out, "Digest not due (outside emission hours or already emitted). Use --force to override.")
		return
	}
	fmt.Fprintf(out, "Digest:     %s\n", res.Digest.Title)
	fmt.Fprintf(out, "Items:      %d\n", res.Items)
	if res.EventPath != "" {
		fmt.Fprintf(out, "Event:      %s\n", res.EventPath)
	}
	for _, d := range domain.Domains {
		fmt.Fprintf(out, "%-14s +%d\n", string(d)+":", len(res.Added[d]))
	}
}
