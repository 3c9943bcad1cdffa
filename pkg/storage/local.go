package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalArchive implements Archive on the local filesystem
type LocalArchive struct {
	basePath string
}

// NewLocalArchive creates a filesystem-backed upload archive
func NewLocalArchive(basePath string) (*LocalArchive, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	return &LocalArchive{basePath: basePath}, nil
}

// Save stores an upload under a scope and returns its metadata
func (a *LocalArchive) Save(ctx context.Context, scope, filename string, r io.Reader) (*FileInfo, error) {
	fileID := uuid.New()

	scopeDir := filepath.Join(a.basePath, sanitize(scope))
	if err := os.MkdirAll(scopeDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scope directory: %w", err)
	}

	// UUID prefix keeps repeated uploads of the same export distinct
	storedName := fmt.Sprintf("%s_%s", fileID.String()[:8], sanitize(filename))
	filePath := filepath.Join(scopeDir, storedName)

	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	info := &FileInfo{
		ID:        fileID,
		Name:      filename,
		Size:      size,
		Scope:     scope,
		Path:      storedName,
		CreatedAt: time.Now(),
	}

	if err := a.saveMetadata(scope, fileID, info); err != nil {
		os.Remove(filePath)
		return nil, err
	}

	return info, nil
}

// Open returns a reader for an archived upload
func (a *LocalArchive) Open(ctx context.Context, scope string, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error) {
	info, err := a.getInfo(scope, fileID)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(a.basePath, sanitize(scope), info.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	return f, info, nil
}

// List returns metadata for every archived upload in a scope
func (a *LocalArchive) List(ctx context.Context, scope string) ([]*FileInfo, error) {
	metaDir := filepath.Join(a.basePath, sanitize(scope), ".meta")
	if _, err := os.Stat(metaDir); os.IsNotExist(err) {
		return []*FileInfo{}, nil
	}

	entries, err := os.ReadDir(metaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}

	files := make([]*FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id, err := uuid.Parse(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}

		info, err := a.getInfo(scope, id)
		if err != nil {
			continue
		}
		files = append(files, info)
	}

	return files, nil
}

// Delete removes an archived upload
func (a *LocalArchive) Delete(ctx context.Context, scope string, fileID uuid.UUID) error {
	info, err := a.getInfo(scope, fileID)
	if err != nil {
		return err
	}

	scopeDir := filepath.Join(a.basePath, sanitize(scope))
	if err := os.Remove(filepath.Join(scopeDir, info.Path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	os.Remove(filepath.Join(scopeDir, ".meta", fileID.String()+".json"))
	return nil
}

func (a *LocalArchive) getInfo(scope string, fileID uuid.UUID) (*FileInfo, error) {
	metaPath := filepath.Join(a.basePath, sanitize(scope), ".meta", fileID.String()+".json")

	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", fileID)
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var info FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	return &info, nil
}

func (a *LocalArchive) saveMetadata(scope string, fileID uuid.UUID, info *FileInfo) error {
	metaDir := filepath.Join(a.basePath, sanitize(scope), ".meta")
	if err := os.MkdirAll(metaDir, 0755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	metaPath := filepath.Join(metaDir, fileID.String()+".json")
	if err := os.WriteFile(metaPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	return nil
}

// sanitize removes unsafe characters from path components
func sanitize(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
