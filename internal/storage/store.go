package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/config"
	"github.com/san-kum/adexsim/internal/dynamo"
	"github.com/san-kum/adexsim/internal/experiment"
	"github.com/san-kum/adexsim/internal/recorder"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
	spikesFile     = "spikes.csv"
)

var ErrRunNotFound = errors.New("run not found")

// Store keeps one directory per saved run below baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID           string             `json:"id"`
	Model        string             `json:"model"`
	Timestamp    time.Time          `json:"timestamp"`
	Integrator   string             `json:"integrator"`
	Controller   string             `json:"controller"`
	Dt           float64            `json:"dt"`
	Duration     float64            `json:"duration"`
	Steps        int                `json:"steps"`
	InputSpikes  int                `json:"input_spikes"`
	OutputSpikes []float64          `json:"output_spikes"`
	Accepted     int                `json:"accepted,omitempty"`
	Rejected     int                `json:"rejected,omitempty"`
	Params       map[string]float64 `json:"params"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Save writes the metadata, the recorded trajectory and the spike times of
// out into a fresh run directory and returns the run id.
func (s *Store) Save(cfg *config.Config, out *experiment.Outcome) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%s", strings.ReplaceAll(out.Model.String(), "|", "+"), uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:           runID,
		Model:        out.Model.String(),
		Timestamp:    now,
		Integrator:   cfg.Integrator,
		Controller:   cfg.Controller,
		Dt:           cfg.Dt,
		Duration:     cfg.Duration,
		Steps:        out.Result.Steps,
		InputSpikes:  out.Result.InputSpikes,
		OutputSpikes: out.Trace.OutputSpikeTimes(),
		Accepted:     out.Accepted,
		Rejected:     out.Rejected,
		Params:       cfg.Params.GetParams(),
		Metrics:      finite(out.Metrics),
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, metadataFile), data, 0644); err != nil {
		return "", err
	}

	if err := writeCSV(filepath.Join(runDir, trajectoryFile), func(w *csv.Writer) error {
		return WriteTrajectory(w, out.Trace.Rows)
	}); err != nil {
		return "", err
	}

	if err := writeCSV(filepath.Join(runDir, spikesFile), func(w *csv.Writer) error {
		return writeSpikes(w, out.Trace)
	}); err != nil {
		return "", err
	}

	return runID, nil
}

func writeCSV(path string, fill func(*csv.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := fill(w); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}

// WriteTrajectory writes the header followed by rows.
func WriteTrajectory(w *csv.Writer, rows []recorder.Row) error {
	if err := w.Write(recorder.Header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(recorder.FormatRow(row)); err != nil {
			return err
		}
	}
	return nil
}

func writeSpikes(w *csv.Writer, trace *recorder.Vector) error {
	if err := w.Write([]string{"t", "direction"}); err != nil {
		return err
	}
	for _, t := range trace.InputSpikes {
		if err := w.Write([]string{strconv.FormatFloat(t.Sec(), 'g', -1, 64), "in"}); err != nil {
			return err
		}
	}
	for _, t := range trace.OutputSpikes {
		if err := w.Write([]string{strconv.FormatFloat(t.Sec(), 'g', -1, 64), "out"}); err != nil {
			return err
		}
	}
	return nil
}

// List returns the metadata of every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTrajectory reads the saved rows of a run back. Malformed lines are
// skipped.
func (s *Store) LoadTrajectory(runID string) ([]recorder.Row, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	rows := make([]recorder.Row, 0, max(len(records)-1, 0))
	for i := 1; i < len(records); i++ {
		row, ok := parseRow(records[i])
		if !ok {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadSpikes reads the input and output spike times of a run in seconds.
func (s *Store) LoadSpikes(runID string) (in, out []float64, err error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, spikesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	for i := 1; i < len(records); i++ {
		if len(records[i]) != 2 {
			continue
		}
		t, err := strconv.ParseFloat(records[i][0], 64)
		if err != nil {
			continue
		}
		switch records[i][1] {
		case "in":
			in = append(in, t)
		case "out":
			out = append(out, t)
		}
	}
	return in, out, nil
}

func parseRow(record []string) (recorder.Row, bool) {
	if len(record) != len(recorder.Header) {
		return recorder.Row{}, false
	}
	vals := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return recorder.Row{}, false
		}
		vals[i] = v
	}
	return recorder.Row{
		T:   dynamo.FromSec(vals[0]),
		V:   vals[1],
		GE:  vals[2],
		GI:  vals[3],
		W:   vals[4],
		IL:  vals[5],
		IE:  vals[6],
		II:  vals[7],
		ITh: vals[8],
	}, true
}

// ExportData is the self contained JSON form of a run.
type ExportData struct {
	Model        string             `json:"model"`
	Integrator   string             `json:"integrator"`
	Controller   string             `json:"controller"`
	Dt           float64            `json:"dt"`
	Duration     float64            `json:"duration"`
	Steps        int                `json:"steps"`
	Params       adexp.Parameters   `json:"params"`
	Times        []float64          `json:"times"`
	Voltages     []float64          `json:"voltages"`
	InputSpikes  []float64          `json:"input_spikes"`
	OutputSpikes []float64          `json:"output_spikes"`
	Metrics      map[string]float64 `json:"metrics"`
}

func NewExportData(cfg *config.Config, out *experiment.Outcome) ExportData {
	in := make([]float64, len(out.Trace.InputSpikes))
	for i, t := range out.Trace.InputSpikes {
		in[i] = t.Sec()
	}
	return ExportData{
		Model:        out.Model.String(),
		Integrator:   cfg.Integrator,
		Controller:   cfg.Controller,
		Dt:           cfg.Dt,
		Duration:     cfg.Duration,
		Steps:        out.Result.Steps,
		Params:       cfg.Params,
		Times:        out.Trace.Times(),
		Voltages:     out.Trace.Voltages(),
		InputSpikes:  in,
		OutputSpikes: out.Trace.OutputSpikeTimes(),
		Metrics:      finite(out.Metrics),
	}
}

// finite drops values encoding/json cannot represent.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func ExportJSON(w io.Writer, cfg *config.Config, out *experiment.Outcome) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(cfg, out))
}

// ExportJSONFile writes the JSON export to path.
func ExportJSONFile(path string, cfg *config.Config, out *experiment.Outcome) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := ExportJSON(file, cfg, out); err != nil {
		return err
	}
	return file.Close()
}
