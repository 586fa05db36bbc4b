package decoder

import "io"

// WorkerData is one raw event buffer handed to a decode worker.
type WorkerData struct {
	Data []uint32
}

// Worker decodes event buffers from the jobs channel. Each worker owns
// its private decoder instance; decoders are never shared between
// goroutines, so no locking is needed anywhere in the decode path.
func Worker(id int, config Configuration, jobs <-chan WorkerData, results chan<- EventRecord) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Worker %d recovered from panic: %v", id, r)
		}
	}()

	dec, err := NewDecoder(config.CodaVersion)
	if err != nil {
		logger.Errorf("Worker %d: %v", id, err)
		return
	}
	dec.SetAllowLowSubbankIDs(config.AllowLowSubbankIDs)
	if c3, ok := dec.(*Coda3Decoder); ok {
		c3.SetTSROCNumber(config.TSROCNumber)
	}

	for event := range jobs {
		logger.Debugf("Worker %d processing a %d-word buffer", id, len(event.Data))
		results <- DecodeEvent(dec, event.Data)
	}
}

// SendEventsToWorkers feeds event buffers from a file to the jobs
// channel, honoring the configured skip and max-events limits, and
// closes the channel when the file ends.
func SendEventsToWorkers(file *EventFile, config Configuration, jobs chan<- WorkerData) {
	sent := 0
	skipped := 0
	for {
		buffer, err := file.ReadEvent()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Errorf("Error reading event: %v", err)
			break
		}
		if skipped < config.Skip {
			skipped++
			continue
		}
		if sent >= config.MaxEvents {
			break
		}
		sent++
		jobs <- WorkerData{Data: buffer}
	}
	close(jobs)
}
