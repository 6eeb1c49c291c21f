package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/util"
)

var interruptSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
	syscall.SIGINT,
}

var (
	configPath string
	formatFlag string
	jobsFlag   int

	config util.Config
)

var rootCmd = &cobra.Command{
	Use:           "tplwrap",
	Short:         "Source ranges and template encapsulation for annotated wikitext trees",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		config, err = util.LoadConfig(configPath)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("format") {
			config.OutputFormat = formatFlag
		}
		if cmd.Flags().Changed("jobs") {
			config.Jobs = jobsFlag
		}
		if err := config.Validate(); err != nil {
			return err
		}

		zerolog.SetGlobalLevel(config.Level())
		if config.Environment == "development" {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		}
		log.Logger = log.With().Str("run", uuid.NewString()).Logger()
		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory holding app.env")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "json", "output format (json|msgpack|html)")
	rootCmd.PersistentFlags().IntVar(&jobsFlag, "jobs", 4, "documents processed concurrently")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(dsrCmd)
	rootCmd.AddCommand(versionCmd)

	// catching interrupt signals; batches already running finish their documents
	ctx, stop := signal.NotifyContext(context.Background(), interruptSignals...)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("tplwrap failed")
		stop()
		os.Exit(1)
	}
}
