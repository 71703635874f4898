package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"monevo/internal/core"
)

// Storage file names, matching the keys the backend's web client uses
// for the same data.
const (
	tokenFile = "token"
	userFile  = "usuario"
)

// FileStore persists the session as two small files under a state
// directory. Writes go through a temp file plus rename so a crash never
// leaves a torn token; the user file is written before the token so an
// interrupted Save reads back as absent, not half-set.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the state directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("state directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// storedUser is the on-disk identity layout, kept byte-compatible with
// the `usuario` payload the backend returns on login.
type storedUser struct {
	ID        int64  `json:"id"`
	Nome      string `json:"nome"`
	Email     string `json:"email"`
	CreatedAt string `json:"data_criacao,omitempty"`
}

func (f *FileStore) Load() (Session, error) {
	token, err := os.ReadFile(filepath.Join(f.dir, tokenFile))
	if os.IsNotExist(err) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("read token: %w", err)
	}

	raw, err := os.ReadFile(filepath.Join(f.dir, userFile))
	if os.IsNotExist(err) {
		// Token without identity is meaningless; read as absent.
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("read user: %w", err)
	}

	var su storedUser
	if err := json.Unmarshal(raw, &su); err != nil {
		return Session{}, nil
	}

	user := &core.User{ID: su.ID, Name: su.Nome, Email: su.Email}
	if su.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, su.CreatedAt); err == nil {
			user.CreatedAt = t
		}
	}
	s := Session{Token: string(token), User: user}
	if !s.Authenticated() {
		return Session{}, nil
	}
	return s, nil
}

func (f *FileStore) Save(s Session) error {
	if !s.Authenticated() {
		return ErrIncomplete
	}

	su := storedUser{ID: s.User.ID, Nome: s.User.Name, Email: s.User.Email}
	if !s.User.CreatedAt.IsZero() {
		su.CreatedAt = s.User.CreatedAt.Format(time.RFC3339)
	}
	raw, err := json.Marshal(su)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	if err := f.writeAtomic(userFile, raw); err != nil {
		return fmt.Errorf("write user: %w", err)
	}
	if err := f.writeAtomic(tokenFile, []byte(s.Token)); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	// Token first: without it the leftover user file already reads as
	// an absent session.
	for _, name := range []string{tokenFile, userFile} {
		if err := os.Remove(filepath.Join(f.dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}

func (f *FileStore) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, name+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(f.dir, name))
}
