package session

import "errors"

type restorer interface {
	Current() (*Session, error)
	Create(workDir string) (*Session, error)
}

// RestoreOrCreate returns the store's current session, creating one when there is none.
func RestoreOrCreate(s restorer, workDir string) (*Session, error) {
	sess, err := s.Current()
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.Create(workDir)
}
