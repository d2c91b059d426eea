package cli

import (
	"fmt"
	"io"

	pooltransport "crm_backend/internal/pool/transport"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change pool thresholds",
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := servicesFrom(cmd.Context()).Config.Get(cmd.Context())
			if err != nil {
				return err
			}
			printConfiguration(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	var radius, priority, general int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change thresholds; omitted flags keep their current value",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := servicesFrom(cmd.Context()).Config
			current, err := store.Get(cmd.Context())
			if err != nil {
				return err
			}

			req := pooltransport.UpdateConfigurationRequest{
				RadiusMeters:          &current.RadiusMeters,
				MinutesToPriorityPool: &current.MinutesToPriorityPool,
				MinutesToGeneralPool:  &current.MinutesToGeneralPool,
			}
			flags := cmd.Flags()
			if flags.Changed("radius") {
				req.RadiusMeters = &radius
			}
			if flags.Changed("priority-minutes") {
				req.MinutesToPriorityPool = &priority
			}
			if flags.Changed("general-minutes") {
				req.MinutesToGeneralPool = &general
			}

			updated, err := store.Update(cmd.Context(), uuid.Nil, req)
			if err != nil {
				return err
			}
			printConfiguration(cmd.OutOrStdout(), updated)
			return nil
		},
	}
	cmd.Flags().IntVar(&radius, "radius", 0, "Default radius in meters for new locations")
	cmd.Flags().IntVar(&priority, "priority-minutes", 0, "Minutes in waiting before the priority pool")
	cmd.Flags().IntVar(&general, "general-minutes", 0, "Minutes in the priority pool before the general pool")
	return cmd
}

func printConfiguration(w io.Writer, cfg pooltransport.ConfigurationResponse) {
	_, _ = fmt.Fprintf(w, "radius_meters:            %d\n", cfg.RadiusMeters)
	_, _ = fmt.Fprintf(w, "minutes_to_priority_pool: %d\n", cfg.MinutesToPriorityPool)
	_, _ = fmt.Fprintf(w, "minutes_to_general_pool:  %d\n", cfg.MinutesToGeneralPool)
	_, _ = fmt.Fprintf(w, "priority_users:           %d\n", len(cfg.PriorityUserIDs))
	_, _ = fmt.Fprintf(w, "general_users:            %d\n", len(cfg.GeneralUserIDs))
}
