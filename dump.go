package main

import (
	"fmt"
	"io"
	"os"

	decoder "github.com/parity-exp/coda_decoder/pkg"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] event_file",
	Short: "decode an event file and print per-event information.",
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

		if config.NumWorkers > 1 {
			dumpParallel(file, config)
			return
		}

		dec, err := decoder.NewDecoder(config.CodaVersion)
		if err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
		dec.SetAllowLowSubbankIDs(config.AllowLowSubbankIDs)
		if c3, ok := dec.(*decoder.Coda3Decoder); ok {
			c3.SetTSROCNumber(config.TSROCNumber)
		}

		typeCounts := make(map[uint32]int)
		processed := 0
		for processed < config.MaxEvents {
			buffer, err := file.ReadEvent()
			if err == io.EOF {
				break
			}
			if err != nil {
				log.Errorf("%v", err)
				break
			}
			record := decoder.DecodeEvent(dec, buffer)
			printEvent(record)
			typeCounts[record.EventType]++
			processed++
		}
		printTypeCounts(typeCounts, processed)
		dec.ControlEvents().ReportRunSummary()
	},
}

func dumpParallel(file *decoder.EventFile, config decoder.Configuration) {
	jobs := make(chan decoder.WorkerData, config.NumWorkers)
	results := make(chan decoder.EventRecord, 1000)

	done := make(chan struct{})
	typeCounts := make(map[uint32]int)
	processed := 0
	go func() {
		for record := range results {
			printEvent(record)
			typeCounts[record.EventType]++
			processed++
		}
		close(done)
	}()

	var workers = make([]chan struct{}, config.NumWorkers)
	for w := 0; w < config.NumWorkers; w++ {
		finished := make(chan struct{})
		workers[w] = finished
		go func(id int) {
			decoder.Worker(id, config, jobs, results)
			close(finished)
		}(w + 1)
	}

	decoder.SendEventsToWorkers(file, config, jobs)
	for _, finished := range workers {
		<-finished
	}
	close(results)
	<-done

	printTypeCounts(typeCounts, processed)
}

func printEvent(record decoder.EventRecord) {
	switch {
	case record.Physics:
		fmt.Printf("phys event %d type %d time %d trigger bits 0x%02x banks %d\n",
			record.EventNumber, record.EventType, record.EventTime,
			record.TriggerBits, len(record.Banks))
	case record.Control:
		fmt.Printf("control event type %d tag 0x%x\n", record.EventType, record.EventTag)
	default:
		fmt.Printf("other event type %d tag 0x%x length %d\n",
			record.EventType, record.EventTag, record.EventLength)
	}
}

func printTypeCounts(typeCounts map[uint32]int, processed int) {
	fmt.Println("Events processed:", processed)
	types := maps.Keys(typeCounts)
	slices.Sort(types)
	for _, evtype := range types {
		fmt.Printf("  type %4d: %d\n", evtype, typeCounts[evtype])
	}
}

func init() {
	dumpCmd.Flags().Int("coda", 0, "CODA protocol version (2 or 3)")
	dumpCmd.Flags().Int("max-events", 0, "maximum number of events to decode")
	dumpCmd.Flags().Int("workers", 0, "number of decode workers")
	rootCmd.AddCommand(dumpCmd)
}
