package main

import (
	"fmt"
	"io"
	"os"

	decoder "github.com/parity-exp/coda_decoder/pkg"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [flags] event_file",
	Short: "decode a run and report its control-event summary.",
	Long: `Decode every event of a run and print the run-control summary
(prestart, go/pause cycles, end). With database credentials configured
and --store, the summary is also inserted in the run bookkeeping table.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		config := loadConfig(cmd)
		config.FileIn = args[0]

		file, err := decoder.OpenEventFile(config.FileIn)
		if err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
		defer file.Close()

		dec, err := decoder.NewDecoder(config.CodaVersion)
		if err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}

		for {
			buffer, err := file.ReadEvent()
			if err == io.EOF {
				break
			}
			if err != nil {
				log.Errorf("%v", err)
				break
			}
			dec.DecodeEventIDBank(buffer)
		}

		tracker := dec.ControlEvents()
		if !tracker.FoundControlEvents() {
			fmt.Println("No control events found in", config.FileIn)
			return
		}
		tracker.ReportRunSummary()

		store, _ := cmd.Flags().GetBool("store")
		if store && !config.NoDB {
			db, err := decoder.ConnectToDatabase(config)
			if err != nil {
				log.Errorf("Error connecting to database: %v", err)
				os.Exit(1)
			}
			defer db.Close()
			if err := decoder.StoreRunSummary(db, tracker); err != nil {
				log.Errorf("Error storing run summary: %v", err)
				os.Exit(1)
			}
			record, err := decoder.GetRunSummary(db, tracker.GetRunNumber())
			if err != nil {
				log.Errorf("Error reading back run summary: %v", err)
				os.Exit(1)
			}
			fmt.Printf("Stored summary for run %d: start %s, end %s, %d events\n",
				record.RunNumber, record.StartTime, record.EndTime, record.EndEventCount)
		}
	},
}

func init() {
	summaryCmd.Flags().Int("coda", 0, "CODA protocol version (2 or 3)")
	summaryCmd.Flags().Bool("store", false, "store the run summary in the database")
	rootCmd.AddCommand(summaryCmd)
}
