package main

import (
	"os"

	decoder "github.com/parity-exp/coda_decoder/pkg"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "coda_decoder",
	Short: "Decoder for CODA 2/3 event streams.",
	Long: `A decoder for the banked binary event streams produced by the
CODA data acquisition system (versions 2 and 3): event classification,
trigger bank decoding and run-control bookkeeping.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "configuration file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
}

// loadConfig merges the configuration file (when given) with the
// command line flags and installs it for the decoder package.
func loadConfig(cmd *cobra.Command) decoder.Configuration {
	configFile, _ := cmd.Flags().GetString("config")
	config := decoder.GetConfiguration()
	if configFile != "" {
		var err error
		config, err = decoder.LoadConfiguration(configFile)
		if err != nil {
			log.Errorf("Error reading configuration file: %v", err)
			os.Exit(1)
		}
	} else {
		config.CodaVersion = 3
		config.MaxEvents = 1000000000
		config.NumWorkers = 1
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		config.Verbosity = 2
	}
	if version, _ := cmd.Flags().GetInt("coda"); version != 0 {
		config.CodaVersion = version
	}
	if maxEvents, _ := cmd.Flags().GetInt("max-events"); maxEvents != 0 {
		config.MaxEvents = maxEvents
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers != 0 {
		config.NumWorkers = workers
	}
	decoder.SetConfiguration(config)
	decoder.SetVerbosity(config.Verbosity)
	return config
}
