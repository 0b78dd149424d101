package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const indexFile = "index.yaml"

// fileSystem is the storage surface the file store needs.
type fileSystem interface {
	ReadFile(path string) ([]byte, error)
	ReadDir(path string) ([]os.DirEntry, error)
	Stat(path string) (os.FileInfo, error)
	EnsureDirs(path string) error
	Remove(path string) error
	WriteFileAtomic(path string, content []byte, perm os.FileMode) error
}

type index struct {
	NextID  uint64 `yaml:"next_id"`
	Current uint64 `yaml:"current,omitempty"`
}

// FileStore keeps one YAML document per session plus an index holding the id counter
// and the current session. Every write goes through a temp file and a rename.
type FileStore struct {
	dir   string
	fs    fileSystem
	now   func() time.Time
	locks *Locks

	mu  sync.Mutex // guards idx and multi-session operations
	idx index
}

// NewFileStore opens or initialises a store in dir.
func NewFileStore(dir string, fs fileSystem) (*FileStore, error) {
	if dir == "" {
		panic("dir is required")
	}
	if fs == nil {
		panic("fs is required")
	}
	if err := fs.EnsureDirs(dir); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	s := &FileStore{dir: dir, fs: fs, now: time.Now, locks: NewLocks(), idx: index{NextID: 1}}

	data, err := fs.ReadFile(s.indexPath())
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &s.idx); err != nil {
			return nil, &CorruptError{Path: s.indexPath(), Cause: err}
		}
		if s.idx.NextID == 0 {
			s.idx.NextID = 1
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read session index: %w", err)
	}

	// An index lost after a crash must not hand out ids that still exist on disk
	ids, err := s.ids()
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if id >= s.idx.NextID {
			s.idx.NextID = id + 1
		}
	}
	return s, nil
}

// Create allocates the next id, archives every other session and makes the new one current.
func (s *FileStore) Create(workDir string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.idx.NextID
	next := s.idx
	next.NextID = id + 1
	// The counter is persisted before the session exists, so the id is never handed out twice
	if err := s.writeIndex(next); err != nil {
		return nil, err
	}
	s.idx = next

	sess := New(id, workDir, s.now())
	if err := s.write(sess, false); err != nil {
		return nil, err
	}
	if err := s.activate(id); err != nil {
		return nil, err
	}
	log.Info().Uint64("session_id", id).Str("op", "create").Msg("session created")
	return sess, nil
}

// List returns a summary of every stored session ordered by id.
func (s *FileStore) List() ([]Summary, error) {
	s.mu.Lock()
	current := s.idx.Current
	s.mu.Unlock()

	ids, err := s.ids()
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(ids))
	for _, id := range ids {
		sess, err := s.Load(id)
		if err != nil {
			return nil, err
		}
		out = append(out, sess.Summarize(id == current))
	}
	return out, nil
}

// Switch makes id the current session and archives the others.
func (s *FileStore) Switch(id uint64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.Load(id); err != nil {
		return nil, err
	}
	if err := s.activate(id); err != nil {
		return nil, err
	}
	log.Info().Uint64("session_id", id).Str("op", "switch").Msg("session switched")
	return s.Load(id)
}

// Delete removes a session. Its id is never reused.
func (s *FileStore) Delete(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock := s.locks.For(id)
	lock.Lock()
	_, err := s.fs.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		lock.Unlock()
		return &NotFoundError{ID: id}
	}
	if err == nil {
		err = s.fs.Remove(s.path(id))
	}
	lock.Unlock()
	if err != nil {
		return fmt.Errorf("delete session %d: %w", id, err)
	}

	if s.idx.Current == id {
		next := s.idx
		next.Current = 0
		if err := s.writeIndex(next); err != nil {
			return err
		}
		s.idx = next
	}
	log.Info().Uint64("session_id", id).Str("op", "delete").Msg("session deleted")
	return nil
}

// Save stamps UpdatedAt and writes the session atomically. A deleted session is not
// brought back: saving it fails with ErrNotFound.
// Readers of the same id wait for the write; other ids are not blocked.
func (s *FileStore) Save(sess *Session) error {
	if sess == nil || sess.ID == 0 {
		return fmt.Errorf("save: session has no id")
	}
	return s.write(sess, true)
}

func (s *FileStore) write(sess *Session, mustExist bool) error {
	lock := s.locks.For(sess.ID)
	lock.Lock()
	defer lock.Unlock()

	if mustExist {
		if _, err := s.fs.Stat(s.path(sess.ID)); os.IsNotExist(err) {
			return &NotFoundError{ID: sess.ID}
		}
	}

	sess.UpdatedAt = s.now()
	sess.Normalize()
	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %d: %w", sess.ID, err)
	}
	if err := s.fs.WriteFileAtomic(s.path(sess.ID), data, 0o600); err != nil {
		return fmt.Errorf("write session %d: %w", sess.ID, err)
	}
	return nil
}

// Load reads a session by id.
func (s *FileStore) Load(id uint64) (*Session, error) {
	lock := s.locks.For(id)
	lock.RLock()
	defer lock.RUnlock()

	data, err := s.fs.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("read session %d: %w", id, err)
	}
	var sess Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return nil, &CorruptError{Path: s.path(id), Cause: err}
	}
	return &sess, nil
}

// Current returns the current session, or ErrNotFound when none is set.
func (s *FileStore) Current() (*Session, error) {
	s.mu.Lock()
	current := s.idx.Current
	s.mu.Unlock()
	if current == 0 {
		return nil, ErrNotFound
	}
	return s.Load(current)
}

// Restore returns the current session, creating one when there is none.
func (s *FileStore) Restore(workDir string) (*Session, error) {
	return RestoreOrCreate(s, workDir)
}

// activate marks id active and every other session archived, then records id as current.
// Callers hold s.mu.
func (s *FileStore) activate(id uint64) error {
	ids, err := s.ids()
	if err != nil {
		return err
	}
	for _, other := range ids {
		sess, err := s.Load(other)
		if err != nil {
			return err
		}
		want := StatusArchived
		if other == id {
			want = StatusActive
		}
		if sess.Status == want {
			continue
		}
		sess.Status = want
		if err := s.Save(sess); err != nil {
			return err
		}
	}

	next := s.idx
	next.Current = id
	if err := s.writeIndex(next); err != nil {
		return err
	}
	s.idx = next
	return nil
}

func (s *FileStore) writeIndex(idx index) error {
	data, err := yaml.Marshal(idx)
	if err != nil {
		return fmt.Errorf("encode session index: %w", err)
	}
	if err := s.fs.WriteFileAtomic(s.indexPath(), data, 0o600); err != nil {
		return fmt.Errorf("write session index: %w", err)
	}
	return nil
}

// ids lists stored session ids in ascending order.
func (s *FileStore) ids() ([]uint64, error) {
	entries, err := s.fs.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	var ids []uint64
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") || name == indexFile {
			continue
		}
		id, err := strconv.ParseUint(strings.TrimSuffix(name, ".yaml"), 10, 64)
		if err != nil || id == 0 {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *FileStore) path(id uint64) string {
	return filepath.Join(s.dir, strconv.FormatUint(id, 10)+".yaml")
}

func (s *FileStore) indexPath() string {
	return filepath.Join(s.dir, indexFile)
}
