package decoder

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx"
)

// ConnectToDatabase opens the run bookkeeping database using the
// credentials from the configuration.
func ConnectToDatabase(config Configuration) (*sqlx.DB, error) {
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true",
		config.User, config.Passwd, config.Host, config.Port, config.DBName)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

// RunSummaryRecord is one row of the run bookkeeping table, built from
// the control event tracker at the end of a run.
type RunSummaryRecord struct {
	RunNumber     uint32 `db:"run_number"`
	RunType       uint32 `db:"run_type"`
	StartTime     string `db:"start_time"`
	EndTime       string `db:"end_time"`
	EndEventCount uint32 `db:"end_event_count"`
	NumberGo      int    `db:"number_go"`
	NumberPause   int    `db:"number_pause"`
}

// NewRunSummaryRecord builds the bookkeeping row from the tracker's
// control event records.
func NewRunSummaryRecord(t *ControlEventTracker) RunSummaryRecord {
	return RunSummaryRecord{
		RunNumber:     t.GetRunNumber(),
		RunType:       t.GetRunType(),
		StartTime:     t.GetStartSQLTime(),
		EndTime:       t.GetEndSQLTime(),
		EndEventCount: t.GetEndEventCount(),
		NumberGo:      t.GetNumberGo(),
		NumberPause:   t.GetNumberPause(),
	}
}

// StoreRunSummary inserts the run summary row for this run.
func StoreRunSummary(db *sqlx.DB, t *ControlEventTracker) error {
	record := NewRunSummaryRecord(t)
	query := `INSERT INTO RunSummary
		(run_number, run_type, start_time, end_time, end_event_count, number_go, number_pause)
		VALUES (:run_number, :run_type, :start_time, :end_time, :end_event_count, :number_go, :number_pause)`
	_, err := db.NamedExec(query, record)
	return err
}

// GetRunSummary reads back the bookkeeping row of a run.
func GetRunSummary(db *sqlx.DB, runNumber uint32) (RunSummaryRecord, error) {
	var record RunSummaryRecord
	err := db.Get(&record,
		"SELECT run_number, run_type, start_time, end_time, end_event_count, number_go, number_pause FROM RunSummary WHERE run_number = ?",
		runNumber)
	return record, err
}
