package filestore

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/pkg/errors"
)

const fileMode = 0o600

var _ credentials.Store = (*FileStore)(nil)

// fileLocks serialises writers of the same file within the process
var fileLocks sync.Map

// FileStore keeps the bundle for one origin as a JSON document on disk. The document
// uses the persisted key names, so the file reads like the browser storage it replaces.
// Writes go to a temporary file that is renamed into place.
type FileStore struct {
	path string
	lock *sync.Mutex
}

// New returns a store for origin rooted at dir. The directory is created on first write.
// The file name is the query-escaped origin, so it carries no ':' or '/'.
func New(dir, origin string) *FileStore {
	path := filepath.Join(dir, url.QueryEscape(origin)+".json")
	lock, _ := fileLocks.LoadOrStore(path, &sync.Mutex{})
	return &FileStore{
		path: path,
		lock: lock.(*sync.Mutex),
	}
}

// Path returns the file backing the store
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(_ context.Context) (credentials.Bundle, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.read()
}

func (s *FileStore) Save(_ context.Context, b credentials.Bundle) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	current, err := s.read()
	if err != nil {
		return err
	}
	return s.write(current.Merge(b))
}

func (s *FileStore) Replace(ctx context.Context, b credentials.Bundle) error {
	if b.IsEmpty() {
		return s.Clear(ctx)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.write(b)
}

func (s *FileStore) Clear(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "FileStore.Clear Remove")
	}
	return nil
}

func (s *FileStore) read() (credentials.Bundle, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return credentials.Bundle{}, nil
	}
	if err != nil {
		return credentials.Bundle{}, errors.Wrap(err, "FileStore.read ReadFile")
	}

	fields := make(map[string]string)
	if err := json.Unmarshal(data, &fields); err != nil {
		return credentials.Bundle{}, errors.Wrapf(err, "FileStore.read decode %s", s.path)
	}
	return credentials.BundleFromFields(fields), nil
}

func (s *FileStore) write(b credentials.Bundle) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "FileStore.write MkdirAll")
	}

	data, err := json.MarshalIndent(b.Fields(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "FileStore.write encode")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*")
	if err != nil {
		return errors.Wrap(err, "FileStore.write CreateTemp")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "FileStore.write Write")
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return errors.Wrap(err, "FileStore.write Chmod")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "FileStore.write Close")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "FileStore.write Rename")
	}
	return nil
}
