package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FileStore persists artifacts on disk, one file per artifact under
// <root>/<session>/<artifact>. Session and artifact ids are escaped into safe
// file names, so arbitrary ids (slashes and dot segments included) cannot
// leave the root directory. Directories are created lazily on first save.
//
// Artifacts survive process restarts, which makes this the store of choice
// for local demos and single-node deployments; it does no locking across
// processes.
type FileStore struct {
	root string
}

// NewFileStore creates a file-backed artifact store rooted at the given
// directory.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// Save writes (or overwrites) the artifact bytes for the given session and id.
func (a *FileStore) Save(sessionID, artifactID string, data []byte) error {
	dir, err := a.sessionDir(sessionID)
	if err != nil {
		return err
	}

	name, err := encodeID(artifactID)
	if err != nil {
		return fmt.Errorf("artifact id: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("save artifact %s: %w", artifactID, err)
	}

	return nil
}

// Get returns the stored artifact bytes or ErrNotFound.
func (a *FileStore) Get(sessionID, artifactID string) ([]byte, error) {
	dir, err := a.sessionDir(sessionID)
	if err != nil {
		return nil, err
	}

	name, err := encodeID(artifactID)
	if err != nil {
		return nil, fmt.Errorf("artifact id: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("load artifact %s: %w", artifactID, err)
	}

	return data, nil
}

// List returns the artifact ids stored for the session, sorted. A session
// that never saved anything yields an empty slice.
func (a *FileStore) List(sessionID string) ([]string, error) {
	dir, err := a.sessionDir(sessionID)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}

		return nil, fmt.Errorf("list artifacts: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		id, err := decodeID(e.Name())
		if err != nil {
			// Not one of ours; ignore stray files.
			continue
		}

		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids, nil
}

// Delete removes the artifact if present or returns ErrNotFound.
func (a *FileStore) Delete(sessionID, artifactID string) error {
	dir, err := a.sessionDir(sessionID)
	if err != nil {
		return err
	}

	name, err := encodeID(artifactID)
	if err != nil {
		return fmt.Errorf("artifact id: %w", err)
	}

	if err := os.Remove(filepath.Join(dir, name)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}

		return fmt.Errorf("delete artifact %s: %w", artifactID, err)
	}

	return nil
}

func (a *FileStore) sessionDir(sessionID string) (string, error) {
	name, err := encodeID(sessionID)
	if err != nil {
		return "", fmt.Errorf("session id: %w", err)
	}

	return filepath.Join(a.root, name), nil
}

// encodeID maps an arbitrary id to a safe file name. Letters, digits, hyphen
// and underscore pass through; every other byte, dots and slashes included,
// becomes %XX.
func encodeID(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("empty id")
	}

	var b strings.Builder
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}

	return b.String(), nil
}

// decodeID is the inverse of encodeID.
func decodeID(name string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}

		if i+2 >= len(name) {
			return "", fmt.Errorf("truncated escape in %q", name)
		}

		v, err := strconv.ParseUint(name[i+1:i+3], 16, 8)
		if err != nil {
			return "", fmt.Errorf("bad escape in %q: %w", name, err)
		}

		b.WriteByte(byte(v))
		i += 2
	}

	return b.String(), nil
}
