package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete accuracy reports older than a retention window",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("store"); err != nil {
			return err
		}

		olderThan, _ := cmd.Flags().GetInt("older-than")
		if olderThan <= 0 {
			return eris.New("--older-than must be > 0 days")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		cutoff := time.Now().UTC().AddDate(0, 0, -olderThan)
		deleted, err := st.DeleteReportsBefore(ctx, cutoff)
		if err != nil {
			return eris.Wrap(err, "prune")
		}

		zap.L().Info("prune complete",
			zap.Int("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
		_, _ = counts.Printf("Deleted %d reports checked before %s\n", deleted, cutoff.Format("2006-01-02"))
		return nil
	},
}

func init() {
	pruneCmd.Flags().Int("older-than", 90, "delete reports older than this many days")
	rootCmd.AddCommand(pruneCmd)
}
