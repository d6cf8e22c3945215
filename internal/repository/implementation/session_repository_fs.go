package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"archive-session-store/internal/entity"
	"archive-session-store/internal/repository/contract"
	"archive-session-store/pkg/snapshot"
	"archive-session-store/pkg/token"
)

const (
	metaFileName = "meta.json"
	blobFileName = "snapshot.bin"

	dirPerm  = 0o700
	filePerm = 0o600
)

// sessionMeta is the metadata record stored beside the snapshot blob.
// created_at here is the authoritative age basis; filesystem timestamps are
// never consulted (mtime/atime semantics vary across volume types).
type sessionMeta struct {
	CreatedAt time.Time `json:"created_at"`
}

// FilesystemSessionRepositoryImpl stores one directory per session under a
// single base directory. The directory rename is the commit point: a session
// is either fully present or absent, never half-written.
type FilesystemSessionRepositoryImpl struct {
	baseDir string
	idBytes int
}

func NewFilesystemSessionRepository(baseDir string, idBytes int) (contract.SessionRepository, error) {
	if err := os.MkdirAll(baseDir, dirPerm); err != nil {
		return nil, fmt.Errorf("create session base dir: %w", err)
	}
	// MkdirAll keeps existing permissions; enforce owner-only regardless.
	if err := os.Chmod(baseDir, dirPerm); err != nil {
		return nil, fmt.Errorf("restrict session base dir: %w", err)
	}

	return &FilesystemSessionRepositoryImpl{
		baseDir: baseDir,
		idBytes: idBytes,
	}, nil
}

// sessionDir derives the storage path from the id alone. Callers must have
// validated the id first; this re-checks so no path is ever built from an
// unvalidated string.
func (r *FilesystemSessionRepositoryImpl) sessionDir(id string) (string, error) {
	if !token.IsValid(id, r.idBytes) {
		return "", contract.ErrInvalidSessionId
	}
	return filepath.Join(r.baseDir, id), nil
}

func (r *FilesystemSessionRepositoryImpl) Create(ctx context.Context, session *entity.Session) error {
	dir, err := r.sessionDir(session.Id)
	if err != nil {
		return err
	}

	if _, err := os.Stat(dir); err == nil {
		return contract.ErrSessionExists
	}

	blob, err := snapshot.Encode(session.Artifact)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.Id, err)
	}
	meta, err := json.Marshal(sessionMeta{CreatedAt: session.CreatedAt})
	if err != nil {
		return fmt.Errorf("encode session meta %s: %w", session.Id, err)
	}

	// Stage everything in a hidden temp dir, then rename into place. The
	// staging name never validates as a session id, so ListIds and Read
	// cannot observe it.
	staging, err := os.MkdirTemp(r.baseDir, ".staging-")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := os.Chmod(staging, dirPerm); err != nil {
		return fmt.Errorf("restrict staging dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(staging, metaFileName), meta, filePerm); err != nil {
		return fmt.Errorf("write session meta %s: %w", session.Id, err)
	}
	if err := os.WriteFile(filepath.Join(staging, blobFileName), blob, filePerm); err != nil {
		return fmt.Errorf("write session snapshot %s: %w", session.Id, err)
	}

	if err := os.Rename(staging, dir); err != nil {
		if errors.Is(err, fs.ErrExist) || errors.Is(err, syscall.ENOTEMPTY) {
			return contract.ErrSessionExists
		}
		return fmt.Errorf("commit session %s: %w", session.Id, err)
	}

	return nil
}

func (r *FilesystemSessionRepositoryImpl) Read(ctx context.Context, id string) (*entity.Session, error) {
	dir, err := r.sessionDir(id)
	if err != nil {
		return nil, err
	}

	meta, err := r.readMeta(dir)
	if err != nil {
		return nil, err
	}

	blob, err := os.ReadFile(filepath.Join(dir, blobFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Directory present but blob missing: unreadable, not absent.
			return nil, fmt.Errorf("%w: snapshot blob missing", snapshot.ErrCorruptSnapshot)
		}
		return nil, fmt.Errorf("read session snapshot %s: %w", id, err)
	}

	artifact, err := snapshot.Decode(blob)
	if err != nil {
		return nil, err
	}

	return &entity.Session{
		Id:        id,
		CreatedAt: meta.CreatedAt,
		Artifact:  artifact,
	}, nil
}

func (r *FilesystemSessionRepositoryImpl) Exists(ctx context.Context, id string) (bool, error) {
	dir, err := r.sessionDir(id)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat session %s: %w", id, err)
	}

	return info.IsDir(), nil
}

func (r *FilesystemSessionRepositoryImpl) Delete(ctx context.Context, id string) error {
	dir, err := r.sessionDir(id)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func (r *FilesystemSessionRepositoryImpl) Age(ctx context.Context, id string) (time.Duration, error) {
	dir, err := r.sessionDir(id)
	if err != nil {
		return 0, err
	}

	meta, err := r.readMeta(dir)
	if err != nil {
		return 0, err
	}

	return time.Since(meta.CreatedAt), nil
}

func (r *FilesystemSessionRepositoryImpl) ListIds(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.baseDir)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		// Skips staging dirs and any foreign files in the base dir.
		if entry.IsDir() && token.IsValid(entry.Name(), r.idBytes) {
			ids = append(ids, entry.Name())
		}
	}
	return ids, nil
}

func (r *FilesystemSessionRepositoryImpl) readMeta(dir string) (*sessionMeta, error) {
	data, err := os.ReadFile(filepath.Join(dir, metaFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if _, statErr := os.Stat(dir); statErr == nil {
				// Directory exists but meta is gone: classify as corrupt.
				return nil, fmt.Errorf("%w: session meta missing", snapshot.ErrCorruptSnapshot)
			}
			return nil, contract.ErrSessionNotFound
		}
		return nil, fmt.Errorf("read session meta: %w", err)
	}

	var meta sessionMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: unreadable session meta: %v", snapshot.ErrCorruptSnapshot, err)
	}
	if meta.CreatedAt.IsZero() {
		return nil, fmt.Errorf("%w: session meta has no creation time", snapshot.ErrCorruptSnapshot)
	}

	return &meta, nil
}
