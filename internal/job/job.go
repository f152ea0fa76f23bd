// Package job provides reading-job file handling and persistence.
package job

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/asada-m/read-digits/internal/display"
	"github.com/asada-m/read-digits/internal/marker"
	"github.com/asada-m/read-digits/internal/record"
)

// Source kinds.
const (
	SourceImages = "images"
	SourceVideo  = "video"
)

// File represents a digit-reading job file (.rdjob).
type File struct {
	Version  int       `json:"version"`
	Name     string    `json:"name,omitempty"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	// Frame source
	Source      string   `json:"source"`
	ImageDir    string   `json:"image_dir,omitempty"`
	VideoFiles  []string `json:"video_files,omitempty"`
	IntervalSec float64  `json:"interval_sec,omitempty"`
	Rotation    int      `json:"rotation,omitempty"` // clockwise degrees, multiple of 90

	// Marker preprocessing
	UseMarkers bool       `json:"use_markers"`
	MarkerIDs  marker.IDs `json:"marker_ids,omitempty"`

	// Display regions, at most display.MaxRegions. Quads are stored as
	// frame-ratio coordinates so a job survives a resolution change.
	Regions []display.Region `json:"regions"`

	// Skew correction on the reference frame before the batch runs.
	AutoAngle bool `json:"auto_angle"`

	// Output
	Fields    record.Fields `json:"fields"`
	OutputCSV string        `json:"output_csv,omitempty"`
}

// New creates a job file with default settings.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:     1,
		Name:        name,
		Created:     now,
		Modified:    now,
		Source:      SourceImages,
		IntervalSec: 1,
		AutoAngle:   true,
		Fields: record.Fields{
			Number:   true,
			Filename: true,
		},
	}
}

// Load loads a job from a .rdjob file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var j File
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	if err := j.Validate(); err != nil {
		return nil, err
	}

	return &j, nil
}

// Save saves the job to a file.
func (j *File) Save(path string) error {
	j.Modified = time.Now()

	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks structural consistency before a batch run.
func (j *File) Validate() error {
	switch j.Source {
	case SourceImages:
		if j.ImageDir == "" {
			return fmt.Errorf("job: image_dir required for image source")
		}
	case SourceVideo:
		if len(j.VideoFiles) == 0 {
			return fmt.Errorf("job: video_files required for video source")
		}
		if j.IntervalSec <= 0 {
			return fmt.Errorf("job: interval_sec must be positive")
		}
	default:
		return fmt.Errorf("job: unknown source %q", j.Source)
	}
	switch j.Rotation {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("job: rotation must be 0, 90, 180, or 270")
	}
	if j.UseMarkers && !j.MarkerIDs.Valid() {
		return fmt.Errorf("job: use_markers needs four distinct marker ids")
	}
	if err := display.Validate(j.Regions); err != nil {
		return fmt.Errorf("job: %w", err)
	}
	return nil
}

// GetOutputCSV returns the absolute path of the output file, defaulting to
// <job name>.csv next to the job file.
func (j *File) GetOutputCSV(jobPath string) string {
	if j.OutputCSV == "" {
		base := jobPath[:len(jobPath)-len(filepath.Ext(jobPath))]
		return base + ".csv"
	}
	if filepath.IsAbs(j.OutputCSV) {
		return j.OutputCSV
	}
	return filepath.Join(filepath.Dir(jobPath), j.OutputCSV)
}
