// Package cli implements poolctl, the operator CLI for the qualification pool.
package cli

import (
	"context"
	"os"

	geofencetransport "crm_backend/internal/geofence/transport"
	poolservice "crm_backend/internal/pool/service"
	pooltransport "crm_backend/internal/pool/transport"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// ConfigStore reads and writes the pool configuration.
type ConfigStore interface {
	Get(ctx context.Context) (pooltransport.ConfigurationResponse, error)
	Update(ctx context.Context, actorID uuid.UUID, req pooltransport.UpdateConfigurationRequest) (pooltransport.ConfigurationResponse, error)
}

// LocationLister lists geofence locations.
type LocationLister interface {
	List(ctx context.Context, activeOnly bool) (geofencetransport.LocationListResponse, error)
}

// Sweeper runs the escalation sweep inline.
type Sweeper interface {
	Sweep(ctx context.Context, trigger string) (poolservice.SweepResult, error)
}

// Enqueuer hands the sweep to the asynq worker.
type Enqueuer interface {
	EnqueueSweep(ctx context.Context, source string) (string, error)
}

// Services are the backends the commands talk to. Enqueuer is nil when no
// Redis is configured.
type Services struct {
	Config    ConfigStore
	Locations LocationLister
	Sweeper   Sweeper
	Enqueuer  Enqueuer
}

// Opener builds Services for one invocation and returns a cleanup func.
type Opener func(ctx context.Context) (*Services, func(), error)

type servicesKey struct{}

func servicesFrom(ctx context.Context) *Services {
	svc, _ := ctx.Value(servicesKey{}).(*Services)
	return svc
}

// skipOpen reports whether cmd needs no backends, e.g. help and completion.
func skipOpen(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return true
		}
	}
	return false
}

// NewRootCmd builds the poolctl command tree. open is called once per
// invocation before any subcommand runs.
func NewRootCmd(version string, open Opener) *cobra.Command {
	var cleanup func()

	cmd := &cobra.Command{
		Use:          "poolctl",
		Short:        "Operate the lead qualification pool",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipOpen(cmd) {
				return nil
			}
			svc, done, err := open(cmd.Context())
			if err != nil {
				return err
			}
			cleanup = done
			cmd.SetContext(context.WithValue(cmd.Context(), servicesKey{}, svc))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cleanup != nil {
				cleanup()
			}
		},
	}

	cmd.AddCommand(newSweepCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLocationsCmd())

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.SetVersionTemplate("{{.Version}}\n")
	if version != "" {
		cmd.Version = version
	} else {
		cmd.Version = "dev"
	}

	return cmd
}
