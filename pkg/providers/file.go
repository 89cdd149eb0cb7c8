package providers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/weftlabs/weft/pkg/ports"
)

// FileCreator writes a new file, creating parent directories as needed.
// Fields: file_path (directory, optional), file_name, file_content.
func FileCreator(ctx context.Context, req ports.ExecRequest) (map[string]string, error) {
	name := strings.TrimSpace(req.Fields["file_name"])
	if name == "" {
		return nil, errors.New("EMPTY_FILENAME")
	}

	dir := strings.TrimSpace(req.Fields["file_path"])
	if dir == "" {
		dir = "."
	}
	fullPath := filepath.Join(dir, name)

	if parent := filepath.Dir(fullPath); parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return nil, fmt.Errorf("DIRECTORY_CREATE_ERROR: %w", err)
		}
	}
	if err := os.WriteFile(fullPath, []byte(req.Fields["file_content"]), 0o644); err != nil {
		return nil, fmt.Errorf("FILE_CREATE_ERROR: %w", err)
	}

	return map[string]string{"file_path": fullPath}, nil
}

// TextFileEditor overwrites or appends to an existing path.
// Fields: file_path, content, mode ("overwrite" default, or "append").
func TextFileEditor(ctx context.Context, req ports.ExecRequest) (map[string]string, error) {
	path := strings.TrimSpace(req.Fields["file_path"])
	if path == "" {
		return nil, errors.New("EMPTY_FILEPATH")
	}
	content := req.Fields["content"]

	mode := req.Fields["mode"]
	switch mode {
	case "", "overwrite":
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("FILE_WRITE_ERROR: %w", err)
		}
	case "append":
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("FILE_OPEN_ERROR: %w", err)
		}
		if _, err := f.WriteString(content); err != nil {
			f.Close()
			return nil, fmt.Errorf("FILE_WRITE_ERROR: %w", err)
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("FILE_WRITE_ERROR: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown edit mode %q", mode)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("FILE_STAT_ERROR: %w", err)
	}
	return map[string]string{
		"file_path": path,
		"size":      strconv.FormatInt(info.Size(), 10),
	}, nil
}
