package cli

import (
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/toyz/dtogen/internal/errors"
)

// ManifestFileName is the generation manifest kept in the module root
const ManifestFileName = ".dtogen-cache"

// manifestSchema is bumped when the payload layout changes; older payloads are ignored
const manifestSchema uint16 = 1

// ManifestPayload is the persisted form of a Manifest
type ManifestPayload struct {
	Schema uint16
	RunID  string
	// Files maps a generated file path to the SHA-256 of its content
	Files map[string]string
}

// Manifest remembers what the previous run wrote, so unchanged files are not
// rewritten. Safe for concurrent use.
type Manifest struct {
	mu      sync.RWMutex
	path    string
	payload ManifestPayload
}

// OpenManifest reads the manifest at path. A missing, unreadable or outdated
// manifest yields an empty one.
func OpenManifest(path string) *Manifest {
	m := &Manifest{
		path:    path,
		payload: ManifestPayload{Schema: manifestSchema, Files: map[string]string{}},
	}

	f, err := os.Open(path)
	if err != nil {
		return m
	}
	defer f.Close()

	var payload ManifestPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil || payload.Schema != manifestSchema {
		return m
	}
	if payload.Files == nil {
		payload.Files = map[string]string{}
	}
	m.payload = payload
	return m
}

// Path returns where the manifest is stored
func (m *Manifest) Path() string {
	return m.path
}

// RunID returns the run that last saved the manifest
func (m *Manifest) RunID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payload.RunID
}

// Unchanged reports that path was written with content by an earlier run and
// still holds it on disk
func (m *Manifest) Unchanged(path, content string) bool {
	m.mu.RLock()
	recorded, ok := m.payload.Files[path]
	m.mu.RUnlock()
	if !ok || recorded != digest([]byte(content)) {
		return false
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return digest(onDisk) == recorded
}

// Record stores the digest of content written to path
func (m *Manifest) Record(path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload.Files[path] = digest([]byte(content))
}

// Forget drops path from the manifest
func (m *Manifest) Forget(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.payload.Files, path)
}

// Files returns the recorded paths, sorted
func (m *Manifest) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	files := make([]string, 0, len(m.payload.Files))
	for path := range m.payload.Files {
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}

// Save writes the manifest atomically, stamped with runID
func (m *Manifest) Save(runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload.RunID = runID

	dir := filepath.Dir(m.path)
	f, err := os.CreateTemp(dir, ManifestFileName+"-*")
	if err != nil {
		return errors.WrapFileSystemError("create", dir, err)
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(&m.payload); err != nil {
		f.Close()
		return errors.WrapFileSystemError("encode", m.path, err)
	}
	if err := f.Close(); err != nil {
		return errors.WrapFileSystemError("close", f.Name(), err)
	}
	if err := os.Rename(f.Name(), m.path); err != nil {
		return errors.WrapFileSystemError("rename", m.path, err)
	}
	return nil
}

// Remove deletes the manifest file
func (m *Manifest) Remove() error {
	if err := os.Remove(m.path); err != nil && !stderrors.Is(err, os.ErrNotExist) {
		return errors.WrapFileSystemError("remove", m.path, err)
	}
	return nil
}

func digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
