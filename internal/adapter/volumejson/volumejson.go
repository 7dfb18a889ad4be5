// Package volumejson serialises search volume records as indented JSON,
// the format the downstream octree search reads its configuration from.
package volumejson

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/seismic-netprep/internal/domain"
)

// Encode writes cfg to w as JSON indented with four spaces.
func Encode(w io.Writer, cfg domain.VolumeConfig) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode volume config: %w", err)
	}
	return nil
}

// Decode reads a volume record from r. Unknown fields are rejected so that
// typos in hand-edited files surface instead of silently defaulting.
func Decode(r io.Reader) (domain.VolumeConfig, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var cfg domain.VolumeConfig
	if err := dec.Decode(&cfg); err != nil {
		return domain.VolumeConfig{}, fmt.Errorf("decode volume config: %w", err)
	}
	return cfg, nil
}

// FileWriter writes volume records to a file, or to an io.Writer when no
// path is set.
// It implements pipeline.ConfigSink.
type FileWriter struct {
	path   string
	stdout io.Writer
}

// NewFileWriter creates a FileWriter for path. An empty path or "-" writes
// to stdout.
func NewFileWriter(path string, stdout io.Writer) *FileWriter {
	return &FileWriter{path: path, stdout: stdout}
}

// Name identifies the sink in logs.
func (w *FileWriter) Name() string {
	if w.toStdout() {
		return "stdout"
	}
	return "file:" + w.path
}

// WriteConfig serialises cfg to the configured destination.
func (w *FileWriter) WriteConfig(ctx context.Context, cfg domain.VolumeConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.toStdout() {
		return Encode(w.stdout, cfg)
	}

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("create volume config: %w", err)
	}
	if err := Encode(f, cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (w *FileWriter) toStdout() bool {
	return w.path == "" || w.path == "-"
}
