package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newLocationsCmd() *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "locations",
		Short: "List geofence check-in locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := servicesFrom(cmd.Context()).Locations.List(cmd.Context(), activeOnly)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tNAME\tLAT\tLNG\tRADIUS_M\tACTIVE")
			for _, loc := range list.Items {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%.6f\t%.6f\t%d\t%t\n",
					loc.ID, loc.Name, loc.Latitude, loc.Longitude, loc.ActiveRadiusMeters, loc.IsActive)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only list active locations")
	return cmd
}
