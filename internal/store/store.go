package store

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

	"github.com/san-kum/skyglow/internal/anim"
	"github.com/san-kum/skyglow/internal/view"
)

var ErrNotFound = errors.New("store: trace not found")

var sampleHeader = []string{"tick", "phase", "bearing", "pitch", "light_x", "light_y"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type TraceMetadata struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Variant          string             `json:"variant"`
	Timestamp        time.Time          `json:"timestamp"`
	FullLoopDuration int                `json:"full_loop_duration"`
	TickSize         time.Duration      `json:"tick_size"`
	BearingAmplitude float64            `json:"bearing_amplitude"`
	PitchAmplitude   float64            `json:"pitch_amplitude"`
	LightAmplitude   float64            `json:"light_amplitude"`
	Base             view.ViewState     `json:"base"`
	Lights           view.Lights        `json:"lights"`
	Samples          int                `json:"samples"`
	Metrics          map[string]float64 `json:"metrics"`
}

// NewMetadata describes a trace of cfg starting from base and lights.
func NewMetadata(name, variant string, cfg anim.Config, base view.ViewState, lights view.Lights) TraceMetadata {
	return TraceMetadata{
		Name:             name,
		Variant:          variant,
		FullLoopDuration: cfg.FullLoopDuration,
		TickSize:         cfg.TickSize,
		BearingAmplitude: cfg.BearingAmplitude,
		PitchAmplitude:   cfg.PitchAmplitude,
		LightAmplitude:   cfg.LightAmplitude,
		Base:             base,
		Lights:           lights,
	}
}

// Save writes meta and samples under a new trace id and returns it. The id,
// timestamp, sample count and metrics in meta are filled in here.
func (s *Store) Save(meta TraceMetadata, samples []Sample) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	meta.Timestamp = now
	meta.Samples = len(samples)
	meta.Metrics = Summarize(samples)

	dir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(dir, "samples.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(sampleHeader); err != nil {
		return "", err
	}
	for _, smp := range samples {
		row := []string{
			strconv.Itoa(smp.Tick),
			strconv.FormatFloat(smp.Phase, 'f', 6, 64),
			strconv.FormatFloat(smp.Bearing, 'f', 6, 64),
			strconv.FormatFloat(smp.Pitch, 'f', 6, 64),
			strconv.FormatFloat(smp.LightX, 'f', 6, 64),
			strconv.FormatFloat(smp.LightY, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns every readable trace, newest first.
func (s *Store) List() ([]TraceMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []TraceMetadata{}, nil
		}
		return nil, err
	}

	traces := make([]TraceMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		traces = append(traces, *meta)
	}
	sort.Slice(traces, func(i, j int) bool {
		return traces[i].Timestamp.After(traces[j].Timestamp)
	})
	return traces, nil
}

func (s *Store) Load(id string) (*TraceMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	var meta TraceMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("store: %s: %w", id, err)
	}
	return &meta, nil
}

func (s *Store) LoadSamples(id string) ([]Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, id, "samples.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(sampleHeader)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("store: %s: %w", id, err)
	}
	if len(records) < 2 {
		return []Sample{}, nil
	}

	samples := make([]Sample, 0, len(records)-1)
	for line, rec := range records[1:] {
		tick, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("store: %s line %d: %w", id, line+2, err)
		}
		var vals [5]float64
		for i := range vals {
			vals[i], err = strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("store: %s line %d: %w", id, line+2, err)
			}
		}
		samples = append(samples, Sample{
			Tick:    tick,
			Phase:   vals[0],
			Bearing: vals[1],
			Pitch:   vals[2],
			LightX:  vals[3],
			LightY:  vals[4],
		})
	}
	return samples, nil
}
