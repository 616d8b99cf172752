package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/san-kum/linmodal/internal/analysis"
	"github.com/san-kum/linmodal/internal/modal"
)

const (
	metadataFile = "metadata.json"
	modesFile    = "modes.csv"
)

type Store struct {
	baseDir string
	logger  *zap.Logger
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.logger = l } }

func New(baseDir string, opts ...Option) *Store {
	s := &Store{baseDir: baseDir, logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes a saved analysis. The modes themselves live in
// modes.csv next to it.
type RunMetadata struct {
	ID          string             `json:"id"`
	Model       string             `json:"model"`
	Point       string             `json:"point"`
	Timestamp   time.Time          `json:"timestamp"`
	States      []string           `json:"states"`
	FixedPoint  []string           `json:"fixed_point"`
	Params      map[string]float64 `json:"params"`
	StateMatrix [][]string         `json:"state_matrix"`
	Margin      float64            `json:"margin"`
	Sort        string             `json:"sort"`
	Stable      bool               `json:"stable"`
	Modes       int                `json:"modes"`
	Oscillatory int                `json:"oscillatory"`
	// MaxReal is omitted when there are no modes.
	MaxReal *float64      `json:"max_real,omitempty"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Save writes r under a fresh run ID and returns the ID.
func (s *Store) Save(model, point string, r *analysis.Report) (string, error) {
	runID := fmt.Sprintf("%s_%s", model, uuid.NewString())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Model:       model,
		Point:       point,
		Timestamp:   r.CreatedAt,
		States:      r.States,
		Params:      r.Params,
		Margin:      r.Options.Margin,
		Sort:        r.Options.SortBy.String(),
		Stable:      r.Stable(),
		Modes:       r.Summary.Modes,
		Oscillatory: r.Summary.Oscillatory,
		Elapsed:     r.Elapsed,
	}
	if !math.IsInf(r.Summary.MaxReal, 0) && !math.IsNaN(r.Summary.MaxReal) {
		v := r.Summary.MaxReal
		meta.MaxReal = &v
	}
	for _, e := range r.FixedPoint {
		meta.FixedPoint = append(meta.FixedPoint, e.String())
	}
	if r.StateMatrix != nil {
		for i := 0; i < r.StateMatrix.Rows(); i++ {
			row := make([]string, r.StateMatrix.Cols())
			for j := range row {
				row[j] = r.StateMatrix.Get(i, j).String()
			}
			meta.StateMatrix = append(meta.StateMatrix, row)
		}
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, modesFile))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := modal.WriteCSV(f, r.Modes); err != nil {
		return "", err
	}

	s.logger.Info("saved run",
		zap.String("id", runID),
		zap.String("model", model),
		zap.Int("modes", len(r.Modes)))
	return runID, f.Close()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

// List returns every readable run, newest first.
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
			s.logger.Warn("skipping unreadable run", zap.String("dir", entry.Name()), zap.Error(err))
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.runDir(runID), metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadModes(runID string) ([]modal.Mode, error) {
	f, err := os.Open(filepath.Join(s.runDir(runID), modesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()
	return modal.ReadCSV(f)
}

// runDir keeps IDs from escaping the base directory.
func (s *Store) runDir(runID string) string {
	return filepath.Join(s.baseDir, filepath.Base(filepath.Clean("/"+runID)))
}
