package decoder

import (
	"encoding/json"
	"os"
)

type Configuration struct {
	FileIn             string `json:"file_in"`
	CodaVersion        int    `json:"coda_version"`
	MaxEvents          int    `json:"max_events"`
	Skip               int    `json:"skip"`
	Verbosity          int    `json:"verbosity"`
	TSROCNumber        uint32 `json:"tsroc_number"`
	AllowLowSubbankIDs bool   `json:"allow_low_subbank_ids"`
	NumWorkers         int    `json:"num_workers"`
	NoDB               bool   `json:"no_db"`
	Host               string `json:"host"`
	Port               string `json:"port"`
	User               string `json:"user"`
	Passwd             string `json:"pass"`
	DBName             string `json:"dbname"`
}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

// LoadConfiguration reads a JSON configuration file and fills in
// defaults for the fields the file leaves out.
func LoadConfiguration(filename string) (Configuration, error) {
	var config Configuration

	// Set default values
	config.CodaVersion = 3
	config.MaxEvents = 1000000000
	config.NumWorkers = 1
	config.Port = "3306"

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, &ErrOpenFile{Filename: filename, Err: err}
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, err
	}
	return config, nil
}
