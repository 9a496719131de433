package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/spheresim/internal/config"
	"github.com/san-kum/spheresim/internal/dynamo"
)

var ErrRunNotFound = errors.New("storage: run not found")

var csvHeader = []string{"time", "px", "py", "pz", "vx", "vy", "vz"}

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
	Radius       float64            `json:"radius"`
	Gravity      float64            `json:"gravity"`
	Mass         float64            `json:"mass"`
	DriveForce   float64            `json:"drive_force"`
	Duration     float64            `json:"duration"`
	Dt           float64            `json:"dt"`
	InitPosition [3]float64         `json:"init_position"`
	InitVelocity [3]float64         `json:"init_velocity"`
	Acceleration float64            `json:"acceleration,omitempty"`
	Pitch        float64            `json:"pitch,omitempty"`
	Samples      int                `json:"samples"`
	StopReason   dynamo.StopReason  `json:"stop_reason"`
	Events       []dynamo.Event     `json:"events,omitempty"`
	Metrics      map[string]float64 `json:"metrics"`
}

// NewMetadata describes a finished run of cfg. ID and Timestamp are set by
// Save.
func NewMetadata(cfg *config.Config, result *dynamo.Result) RunMetadata {
	meta := RunMetadata{
		Model:        cfg.Model,
		Integrator:   cfg.Integrator,
		Radius:       cfg.Radius,
		Gravity:      cfg.Gravity,
		Mass:         cfg.Mass,
		DriveForce:   cfg.DriveForce,
		Duration:     cfg.Duration,
		Dt:           result.Dt,
		InitPosition: cfg.InitState.Position,
		InitVelocity: cfg.InitState.Velocity,
		Samples:      result.Trajectory.Len(),
		StopReason:   result.StopReason,
		Events:       result.Events,
		Metrics:      result.Metrics,
	}
	if cfg.Model == config.ModelSpiral {
		meta.Acceleration = cfg.Spiral.Acceleration
		meta.Pitch = cfg.Spiral.Pitch
	}
	return meta
}

func (s *Store) Save(cfg *config.Config, result *dynamo.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", cfg.Model, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := NewMetadata(cfg, result)
	meta.ID = runID
	meta.Timestamp = now

	if err := writeMetadata(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, "states.csv"), result); err != nil {
		return "", err
	}
	return runID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeStates(path string, result *dynamo.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	traj := result.Trajectory
	row := make([]string, len(csvHeader))
	for i := range traj.Positions {
		p, v := traj.Positions[i], traj.Velocities[i]
		row[0] = formatFloat(float64(i) * result.Dt)
		for j := 0; j < 3; j++ {
			row[1+j] = formatFloat(p[j])
			row[4+j] = formatFloat(v[j])
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns every readable run, oldest first.
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
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s metadata: %w", runID, err)
	}
	return &meta, nil
}

// Latest returns the most recent run id.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", ErrRunNotFound
	}
	return runs[len(runs)-1].ID, nil
}

// LoadTrajectory reads states.csv back into a trajectory and its sample
// times.
func (s *Store) LoadTrajectory(runID string) (dynamo.Trajectory, []float64, error) {
	csvPath := filepath.Join(s.baseDir, runID, "states.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			return dynamo.Trajectory{}, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return dynamo.Trajectory{}, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(csvHeader)

	records, err := r.ReadAll()
	if err != nil {
		return dynamo.Trajectory{}, nil, err
	}
	if len(records) < 2 {
		return dynamo.NewTrajectory(0), []float64{}, nil
	}

	traj := dynamo.NewTrajectory(len(records) - 1)
	times := make([]float64, 0, len(records)-1)

	for i, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return dynamo.Trajectory{}, nil, fmt.Errorf("states.csv row %d column %s: %w", i+1, csvHeader[j], err)
			}
			vals[j] = v
		}
		times = append(times, vals[0])
		traj.Append(dynamo.Sample{
			Position: mgl64.Vec3{vals[1], vals[2], vals[3]},
			Velocity: mgl64.Vec3{vals[4], vals[5], vals[6]},
		})
	}

	return traj, times, nil
}
