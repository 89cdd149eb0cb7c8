package plugins

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// ManifestFileName is the file every plugin folder must contain.
const ManifestFileName = "manifest.json"

// Discover scans a plugins directory for subfolders carrying a
// manifest.json and returns their parsed manifests. Folders without a
// manifest are skipped with a log line, matching how a missing plugin
// should degrade: silently for the workflow, visibly for the operator.
func Discover(dir string, logger *slog.Logger) ([]*Manifest, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read plugins directory: %w", err)
	}

	var manifests []*Manifest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifestPath := filepath.Join(dir, entry.Name(), ManifestFileName)
		if _, err := os.Stat(manifestPath); err != nil {
			logger.Debug("skipping folder without manifest", "folder", entry.Name())
			continue
		}
		m, err := LoadManifest(manifestPath)
		if err != nil {
			logger.Warn("skipping plugin with broken manifest", "folder", entry.Name(), "error", err)
			continue
		}
		manifests = append(manifests, m)
		logger.Info("discovered plugin", "id", m.ID, "folder", entry.Name())
	}
	return manifests, nil
}
