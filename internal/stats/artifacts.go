// Package stats writes and reads the on-disk artifacts of simulation
// runs: per-run directories, the append-only per-seed CSV files, the run
// index, and sweep experiment manifests.
package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"bitworld/internal/model"
)

const (
	runIndexFile   = "run_index.json"
	recordsCSVFile = "records.csv"
	runConfigFile  = "config.json"
)

// RunConfig is the persisted configuration of one run.
type RunConfig struct {
	RunID            string   `json:"run_id"`
	Seed             int64    `json:"seed"`
	SpaceLength      int      `json:"space_length"`
	SpaceProb        *float64 `json:"space_prob,omitempty"`
	TechLength       int      `json:"tech_length"`
	TechProb         *float64 `json:"tech_prob,omitempty"`
	Eta              float64  `json:"eta"`
	Lambda           float64  `json:"lambda"`
	InitialEndowment float64  `json:"initial_endowment"`
	PTradeoff        float64  `json:"p_tradeoff"`
	GenerationLimit  int      `json:"generation_limit"`
	ComplexityLimit  int      `json:"complexity_limit"`
}

// RunArtifacts is everything written into a run's artifact directory.
type RunArtifacts struct {
	Config  RunConfig
	Records []model.GenerationRecord
}

// RunIndexEntry is one line of the run index, newest first on read.
type RunIndexEntry struct {
	RunID        string  `json:"run_id"`
	Seed         int64   `json:"seed"`
	Eta          float64 `json:"eta"`
	Lambda       float64 `json:"lambda"`
	Generations  int     `json:"generations"`
	StopReason   string  `json:"stop_reason"`
	CreatedAtUTC string  `json:"created_at_utc"`
}

// WriteRunArtifacts writes config.json and records.csv under
// baseDir/<run id> and returns the run directory.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, runConfigFile), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeRecordsCSV(filepath.Join(runDir, recordsCSVFile), artifacts.Records); err != nil {
		return "", err
	}
	return runDir, nil
}

// ReadRunConfig loads a run's persisted configuration.
func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	path := filepath.Join(baseDir, runID, runConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RunConfig{}, false, nil
		}
		return RunConfig{}, false, err
	}

	var cfg RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, false, err
	}
	return cfg, true, nil
}

// AppendSeedRecords appends records to dir/seed<seed>.csv in the flat
// 13-column schema, no header, creating the file on first use. Each seed
// writes to its own destination, so concurrent runs with distinct seeds
// never share a file.
func AppendSeedRecords(dir string, seed int64, records []model.GenerationRecord) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("seed%d.csv", seed))
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	for _, record := range records {
		if err := writer.Write(recordRow(record)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadRecordsCSV parses a headerless records CSV back into records.
func ReadRecordsCSV(path string) ([]model.GenerationRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records := make([]model.GenerationRecord, 0, 128)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		record, err := parseRecordRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// AppendRunIndex inserts or updates an entry in baseDir/run_index.json.
func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex loads the run index sorted newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// ExportRunArtifacts copies a run's artifact files into outDir/<run id>.
func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	for _, file := range []string{runConfigFile, recordsCSVFile} {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	return dst, nil
}

func writeRecordsCSV(path string, records []model.GenerationRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	for _, record := range records {
		if err := writer.Write(recordRow(record)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func recordRow(r model.GenerationRecord) []string {
	return []string{
		strconv.FormatInt(r.Seed, 10),
		strconv.Itoa(r.Generation),
		strconv.Itoa(r.TechLength),
		strconv.Itoa(r.SpaceLength),
		strconv.FormatFloat(r.Effectiveness, 'f', -1, 64),
		strconv.Itoa(r.InitialTechLength),
		strconv.Itoa(r.InitialSpaceLength),
		strconv.FormatFloat(r.Eta, 'f', -1, 64),
		strconv.FormatFloat(r.Lambda, 'f', -1, 64),
		strconv.FormatFloat(r.InitialEndowment, 'f', -1, 64),
		strconv.FormatFloat(r.PTradeoff, 'f', -1, 64),
		strconv.FormatFloat(r.AvailableResources, 'f', -1, 64),
		strconv.FormatFloat(r.ResourceStore, 'f', -1, 64),
	}
}

func parseRecordRow(row []string) (model.GenerationRecord, error) {
	if len(row) != 13 {
		return model.GenerationRecord{}, fmt.Errorf("record row must have 13 columns, got %d", len(row))
	}

	var record model.GenerationRecord
	var err error
	if record.Seed, err = strconv.ParseInt(row[0], 10, 64); err != nil {
		return model.GenerationRecord{}, err
	}
	ints := []struct {
		dst *int
		col int
	}{
		{&record.Generation, 1},
		{&record.TechLength, 2},
		{&record.SpaceLength, 3},
		{&record.InitialTechLength, 5},
		{&record.InitialSpaceLength, 6},
	}
	for _, field := range ints {
		if *field.dst, err = strconv.Atoi(row[field.col]); err != nil {
			return model.GenerationRecord{}, err
		}
	}
	floats := []struct {
		dst *float64
		col int
	}{
		{&record.Effectiveness, 4},
		{&record.Eta, 7},
		{&record.Lambda, 8},
		{&record.InitialEndowment, 9},
		{&record.PTradeoff, 10},
		{&record.AvailableResources, 11},
		{&record.ResourceStore, 12},
	}
	for _, field := range floats {
		if *field.dst, err = strconv.ParseFloat(row[field.col], 64); err != nil {
			return model.GenerationRecord{}, err
		}
	}
	return record, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
