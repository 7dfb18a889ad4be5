// Package waveform gathers the continuous waveform files of selected
// stations into a single flat directory for the detection run.
package waveform

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/seismic-netprep/internal/observability"
)

// DefaultNetwork is the network code prefixed to waveform file names.
const DefaultNetwork = "SS"

// Copier copies files named <network>.<station>.* from a source tree.
type Copier struct {
	network string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewCopier creates a Copier for the given network code. An empty code
// selects DefaultNetwork.
func NewCopier(network string, logger *slog.Logger, metrics *observability.Metrics) *Copier {
	if network == "" {
		network = DefaultNetwork
	}
	return &Copier{network: network, logger: logger, metrics: metrics}
}

// Copy walks srcDir recursively and copies every regular file belonging to
// one of codes into dstDir, which is created if missing. Symbolic links
// are followed and the link target is copied under the link's name.
// Subdirectories are flattened, so files sharing a base name overwrite each
// other. It returns the number of files copied.
func (c *Copier) Copy(ctx context.Context, srcDir, dstDir string, codes []string) (int, error) {
	wanted := make(map[string]bool, len(codes))
	for _, code := range codes {
		wanted[code] = true
	}
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return 0, fmt.Errorf("create waveform directory: %w", err)
	}
	realDst, err := filepath.EvalSymlinks(dstDir)
	if err != nil {
		return 0, fmt.Errorf("resolve waveform directory: %w", err)
	}

	perStation := make(map[string]int, len(wanted))
	copied := 0
	w := &walker{realDst: realDst, visited: make(map[string]bool), logger: c.logger}
	err = w.walk(ctx, srcDir, func(path, name string) error {
		code, ok := c.stationOf(name)
		if !ok || !wanted[code] {
			return nil
		}
		if err := copyFile(path, filepath.Join(dstDir, name)); err != nil {
			return err
		}
		perStation[code]++
		copied++
		c.metrics.WaveformFilesCopied.Inc()
		return nil
	})
	if err != nil {
		return copied, fmt.Errorf("copy waveforms from %s: %w", srcDir, err)
	}

	for code := range wanted {
		if perStation[code] == 0 {
			c.logger.Warn("no waveform files found", "station", code, "source", srcDir)
			continue
		}
		c.logger.Debug("waveform files copied", "station", code, "files", perStation[code])
	}
	c.logger.Info("waveforms gathered", "stations", len(wanted), "files", copied, "destination", dstDir)
	return copied, nil
}

// walker visits the regular files below a root, following symbolic links
// to files and directories. Each real directory is entered at most once,
// which breaks link cycles, and the destination directory is never entered.
type walker struct {
	realDst string
	visited map[string]bool
	logger  *slog.Logger
}

func (w *walker) walk(ctx context.Context, root string, visit func(path, name string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				w.logger.Warn("skipping broken link", "path", path, "error", err)
				return nil
			}
			if info.IsDir() {
				target, err := filepath.EvalSymlinks(path)
				if err != nil {
					return err
				}
				return w.walk(ctx, target, visit)
			}
			if !info.Mode().IsRegular() {
				return nil
			}
			return visit(path, d.Name())
		}

		if d.IsDir() {
			real, err := filepath.EvalSymlinks(path)
			if err != nil {
				return err
			}
			if real == w.realDst || w.visited[real] {
				return filepath.SkipDir
			}
			w.visited[real] = true
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return visit(path, d.Name())
	})
}

// stationOf extracts the station code from a file name of the form
// <network>.<station>.<rest>.
func (c *Copier) stationOf(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, c.network+".")
	if !ok {
		return "", false
	}
	code, _, ok := strings.Cut(rest, ".")
	if !ok || code == "" {
		return "", false
	}
	return code, true
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
