package commands

import (
	"covtrend/internal/calendar"
	"covtrend/internal/config"
	"covtrend/internal/logging"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// app is the state shared by all subcommands of one invocation.
type app struct {
	verbose bool
	cfg     *config.AppConfig
	cache   *calendar.Cache
}

// NewRootCmd builds the covtrend command tree.
func NewRootCmd() *cobra.Command {
	a := &app{cache: calendar.NewCache()}

	rootCmd := &cobra.Command{
		Use:   "covtrend",
		Short: "covtrend computes lineage proportions with confidence intervals",
		Long: `A command line front end for the genomic-surveillance time-series engine.
It turns per-day lineage counts into dense, optionally smoothed proportion series
with 95% Wilson score intervals.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logging.Init(a.verbose); err != nil {
				log.Warn().Err(err).Msg("File logging disabled")
			}
			// Tag every line so runs can be told apart in the shared log file
			log.Logger = log.With().Str("run", uuid.NewString()).Logger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg

			log.Debug().
				Str("version", Version).
				Str("commit", Commit).
				Str("buildDate", BuildDate).
				Msg("covtrend starting")
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(newProportionsCmd(a), newDayCmd(a), newWeekCmd(a))
	return rootCmd
}

func Execute() error {
	return NewRootCmd().Execute()
}
