package cli

import (
	"errors"
	"fmt"

	poolservice "crm_backend/internal/pool/service"

	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	var enqueue bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Escalate overdue leads now",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := servicesFrom(cmd.Context())
			out := cmd.OutOrStdout()

			if enqueue {
				if svc.Enqueuer == nil {
					return errors.New("--enqueue needs REDIS_URL")
				}
				id, err := svc.Enqueuer.EnqueueSweep(cmd.Context(), "cli")
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "sweep enqueued (task %s)\n", id)
				return nil
			}

			res, err := svc.Sweeper.Sweep(cmd.Context(), poolservice.TriggerCLI)
			if err != nil {
				return err
			}
			if res.Skipped {
				_, _ = fmt.Fprintln(out, "sweep skipped: another sweep holds the lease")
				return nil
			}
			_, _ = fmt.Fprintf(out, "escalated %d to priority, %d to general in %s\n", res.ToPriority, res.ToGeneral, res.Duration)
			return nil
		},
	}
	cmd.Flags().BoolVar(&enqueue, "enqueue", false, "Queue the sweep for the scheduler worker instead of running it here")
	return cmd
}
