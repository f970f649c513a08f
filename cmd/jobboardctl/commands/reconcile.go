package commands

import (
	"fmt"
	"time"

	"go-jobboard-backend/internal/usecase"

	"github.com/spf13/cobra"
)

var reconcileSettle time.Duration

func init() {
	reconcileCmd.Flags().DurationVar(&reconcileSettle, "settle", 5*time.Second, "delay between the observing and the repairing pass")
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute job application counts from live applications",
	Long: `Recompute application_count for every job from the applications table.

Counter updates after apply and withdraw are best effort; this repairs drift
left by failed increments. Drift is only repaired when it is observed,
unchanged, on two passes --settle apart, so counters of in-flight requests
are left alone. The API server runs the same passes periodically when
RECONCILE_INTERVAL_SECONDS is above zero.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		storage, err := openStorage(cmd.Context())
		if err != nil {
			return err
		}
		defer storage.Close()
		if _, err := storage.RequirePool(); err != nil {
			return err
		}

		fixed, err := usecase.NewReconciler(storage.Repos.Jobs).Settle(cmd.Context(), reconcileSettle)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "corrected %d job(s)\n", fixed)
		return nil
	},
}
