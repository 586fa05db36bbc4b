package main

import (
	"fmt"
	"os"

	decoder "github.com/parity-exp/coda_decoder/pkg"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var mockCmd = &cobra.Command{
	Use:   "mock [flags] output_file",
	Short: "write a synthetic run: prestart, go, physics events, end.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		config := loadConfig(cmd)
		events, _ := cmd.Flags().GetInt("events")
		runNumber, _ := cmd.Flags().GetUint32("run")
		rocs, _ := cmd.Flags().GetUintSlice("rocs")

		dec, err := decoder.NewDecoder(config.CodaVersion)
		if err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
		writer, err := decoder.CreateEventFile(args[0])
		if err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
		defer writer.Close()

		rocList := make([]uint32, len(rocs))
		for i, roc := range rocs {
			rocList[i] = uint32(roc)
		}

		control := make([]uint32, 5)
		dec.EncodePrestartEventHeader(control, runNumber, 1, decoder.LocalTime())
		if err := writer.WriteEvent(control); err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
		dec.EncodeGoEventHeader(control, 0, decoder.LocalTime())
		if err := writer.WriteEvent(control); err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
		for i := 0; i < events; i++ {
			header := dec.EncodePHYSEventHeader(rocList)
			buffer := append([]uint32{uint32(len(header))}, header...)
			if err := writer.WriteEvent(buffer); err != nil {
				log.Errorf("%v", err)
				os.Exit(1)
			}
		}
		dec.EncodeEndEventHeader(control, uint32(events), decoder.LocalTime())
		if err := writer.WriteEvent(control); err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d physics events for run %d to %s\n", events, runNumber, args[0])
	},
}

func init() {
	mockCmd.Flags().Int("coda", 0, "CODA protocol version (2 or 3)")
	mockCmd.Flags().Int("events", 100, "number of physics events to generate")
	mockCmd.Flags().Uint32("run", 1, "run number for the prestart event")
	mockCmd.Flags().UintSlice("rocs", []uint{0, 1}, "ROC ids for the mock trigger bank segments")
	rootCmd.AddCommand(mockCmd)
}
