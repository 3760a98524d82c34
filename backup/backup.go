// Package backup implements the versioned snapshot store that protects
// destructive resource-file mutations.
//
// Snapshots live under {root}/.lrm/backups/, one subdirectory per original
// file. Each snapshot is a full copy named {version}_{operation}_{stamp}.bak
// and each subdirectory carries an index.yaml listing the snapshot metadata,
// so history can be shown without reading snapshot contents.
//
// Versions are assigned per original path, strictly increasing, and never
// reused even after old snapshots are rotated out. Retention is FIFO with
// at most one eviction per successful snapshot.
package backup

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultRetention is the number of snapshots kept per original file when
// the store is not configured otherwise.
const DefaultRetention = 10

// indexName is the per-file metadata index file.
const indexName = "index.yaml"

// ErrSourceNotFound is returned by Create when the file to snapshot does
// not exist.
var ErrSourceNotFound = errors.New("backup source not found")

// ErrBackupWriteFailed is returned when the snapshot or its metadata could
// not be durably written. Callers must abort the destructive operation the
// snapshot was protecting.
var ErrBackupWriteFailed = errors.New("backup write failed")

// ErrNoSuchVersion is returned by Restore for an unknown version number.
var ErrNoSuchVersion = errors.New("no such backup version")

// Meta records one snapshot.
type Meta struct {
	Version   int       `yaml:"version"`
	Operation string    `yaml:"operation"`
	Timestamp time.Time `yaml:"timestamp"`
	// OriginalPath is the file the snapshot was taken from.
	OriginalPath string `yaml:"original_path"`
	// BackupPath is the snapshot copy inside the store.
	BackupPath string `yaml:"backup_path"`
}

// index is the on-disk index.yaml schema.
type index struct {
	Format    int    `yaml:"format"`
	Original  string `yaml:"original"`
	Snapshots []Meta `yaml:"snapshots"`
}

// indexFormat is the index.yaml schema version.
const indexFormat = 1

// Store is a backup store rooted under one project directory.
type Store struct {
	dir       string
	retention int
}

// Open returns the store for a project root. retention <= 0 selects
// DefaultRetention.
func Open(rootDir string, retention int) *Store {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Store{
		dir:       filepath.Join(rootDir, ".lrm", "backups"),
		retention: retention,
	}
}

// Dir returns the store's directory.
func (s *Store) Dir() string { return s.dir }

// fileDir returns the per-original-file subdirectory. The name combines
// the file's base name with a hash of the full path so distinct files with
// the same base name do not collide.
func (s *Store) fileDir(originalPath string) string {
	abs, err := filepath.Abs(originalPath)
	if err != nil {
		abs = originalPath
	}
	sum := md5.Sum([]byte(filepath.ToSlash(abs)))
	name := fmt.Sprintf("%s_%x", sanitize(filepath.Base(originalPath)), sum[:4])
	return filepath.Join(s.dir, name)
}

// sanitize keeps directory names portable.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}

// ---------------------------------------------------------------------------
// Creating snapshots
// ---------------------------------------------------------------------------

// Create snapshots filePath under the given operation tag and returns the
// snapshot's metadata. The snapshot is durably written before Create
// returns; on any failure the caller must not proceed with its mutation.
//
// The new version is max existing version + 1 (1 when the file has no
// history). When the retained count exceeds the retention cap, the single
// oldest snapshot is evicted.
func (s *Store) Create(ctx context.Context, filePath, operation string) (Meta, error) {
	if err := ctx.Err(); err != nil {
		return Meta{}, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return Meta{}, fmt.Errorf("%w: %s", ErrSourceNotFound, filePath)
		}
		return Meta{}, fmt.Errorf("%w: reading %s: %v", ErrBackupWriteFailed, filePath, err)
	}

	dir := s.fileDir(filePath)
	idx, err := s.loadIndex(dir, filePath)
	if err != nil {
		return Meta{}, err
	}

	version := 1
	for _, m := range idx.Snapshots {
		if m.Version >= version {
			version = m.Version + 1
		}
	}

	now := time.Now()
	name := fmt.Sprintf("%d_%s_%s.bak", version, sanitize(operation), now.Format("20060102T150405"))
	meta := Meta{
		Version:      version,
		Operation:    operation,
		Timestamp:    now,
		OriginalPath: filePath,
		BackupPath:   filepath.Join(dir, name),
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return Meta{}, fmt.Errorf("%w: creating %s: %v", ErrBackupWriteFailed, dir, err)
	}
	if err := writeDurable(meta.BackupPath, data); err != nil {
		return Meta{}, fmt.Errorf("%w: %v", ErrBackupWriteFailed, err)
	}

	idx.Snapshots = append(idx.Snapshots, meta)

	// FIFO retention: at most one eviction per successful creation.
	if len(idx.Snapshots) > s.retention {
		oldest := idx.Snapshots[0]
		for _, m := range idx.Snapshots[1:] {
			if m.Version < oldest.Version {
				oldest = m
			}
		}
		kept := idx.Snapshots[:0]
		for _, m := range idx.Snapshots {
			if m.Version != oldest.Version {
				kept = append(kept, m)
			}
		}
		idx.Snapshots = kept
		// A missing snapshot file is already gone; nothing to roll back.
		os.Remove(oldest.BackupPath)
	}

	if err := s.saveIndex(dir, idx); err != nil {
		return Meta{}, err
	}
	return meta, nil
}

// writeDurable writes data and syncs it to disk before returning.
func writeDurable(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating %s: %v", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %v", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing %s: %v", path, err)
	}
	return f.Close()
}

// ---------------------------------------------------------------------------
// Index handling
// ---------------------------------------------------------------------------

func (s *Store) loadIndex(dir, originalPath string) (*index, error) {
	idx := &index{Format: indexFormat, Original: originalPath}
	data, err := os.ReadFile(filepath.Join(dir, indexName))
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, fmt.Errorf("%w: reading index: %v", ErrBackupWriteFailed, err)
	}
	if err := yaml.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("%w: parsing index: %v", ErrBackupWriteFailed, err)
	}
	return idx, nil
}

func (s *Store) saveIndex(dir string, idx *index) error {
	data, err := yaml.Marshal(idx)
	if err != nil {
		return fmt.Errorf("%w: marshaling index: %v", ErrBackupWriteFailed, err)
	}
	if err := writeDurable(filepath.Join(dir, indexName), data); err != nil {
		return fmt.Errorf("%w: %v", ErrBackupWriteFailed, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// History and restore
// ---------------------------------------------------------------------------

// History returns the retained snapshots for filePath, oldest first.
// A file with no history yields an empty list.
func (s *Store) History(filePath string) ([]Meta, error) {
	idx, err := s.loadIndex(s.fileDir(filePath), filePath)
	if err != nil {
		return nil, err
	}
	return idx.Snapshots, nil
}

// Restore copies the snapshot with the given version back over filePath.
// When the file currently exists it is snapshotted first (operation
// "restore") so the restore itself can be undone.
func (s *Store) Restore(ctx context.Context, filePath string, version int) error {
	history, err := s.History(filePath)
	if err != nil {
		return err
	}
	var target *Meta
	for i := range history {
		if history[i].Version == version {
			target = &history[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: %s v%d", ErrNoSuchVersion, filePath, version)
	}

	// Read the snapshot before taking the safety snapshot: when the store
	// is at its retention cap the safety snapshot may evict the target.
	data, err := os.ReadFile(target.BackupPath)
	if err != nil {
		return fmt.Errorf("reading snapshot %s: %w", target.BackupPath, err)
	}

	if _, err := os.Stat(filePath); err == nil {
		if _, err := s.Create(ctx, filePath, "restore"); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return writeDurable(filePath, data)
}
