package inputs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

const LockFileVersion = 1

type LockedInput struct {
	Locator      string `json:"locator"`
	Rev          string `json:"rev"`
	LastModified int64  `json:"lastModified,omitempty"`
}

// LockFile pins every input of a descriptor to a revision
type LockFile struct {
	Version int                    `json:"version"`
	Nodes   map[string]LockedInput `json:"nodes"`
}

func NewLockFile() *LockFile {
	return &LockFile{Version: LockFileVersion, Nodes: map[string]LockedInput{}}
}

// ReadLockFile returns an empty lock file when path does not exist
func ReadLockFile(path string) (*LockFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewLockFile(), nil
		}
		return nil, fmt.Errorf("failed to read lock file (%s): %w", path, err)
	}

	var lf LockFile
	if err := json.Unmarshal(b, &lf); err != nil {
		return nil, fmt.Errorf("failed to parse lock file (%s): %w", path, err)
	}

	if lf.Version != LockFileVersion {
		return nil, fmt.Errorf("lock file (%s) has version %d, only version %d is supported", path, lf.Version, LockFileVersion)
	}

	if lf.Nodes == nil {
		lf.Nodes = map[string]LockedInput{}
	}

	return &lf, nil
}

// Lookup returns the locked revision for name, only if it was locked from the same locator
func (lf *LockFile) Lookup(name, locator string) (Resolved, bool) {
	if lf == nil {
		return Resolved{}, false
	}

	node, ok := lf.Nodes[name]
	if !ok || node.Locator != locator || !IsRevision(node.Rev) {
		return Resolved{}, false
	}

	r := Resolved{Name: name, Locator: node.Locator, Rev: node.Rev}
	if node.LastModified != 0 {
		r.LastModified = time.Unix(node.LastModified, 0).UTC()
	}
	return r, true
}

func (lf *LockFile) Set(r Resolved) {
	if lf.Nodes == nil {
		lf.Nodes = map[string]LockedInput{}
	}

	node := LockedInput{Locator: r.Locator, Rev: r.Rev}
	if !r.LastModified.IsZero() {
		node.LastModified = r.LastModified.Unix()
	}
	lf.Nodes[r.Name] = node
}

// LockFromResolved builds a lock file holding exactly the given inputs
func LockFromResolved(resolved []Resolved) *LockFile {
	lf := NewLockFile()
	for _, r := range resolved {
		lf.Set(r)
	}
	return lf
}

// Equal reports whether both lock files pin the same inputs to the same revisions
func (lf *LockFile) Equal(other *LockFile) bool {
	if lf == nil || other == nil {
		return lf == other
	}
	if len(lf.Nodes) != len(other.Nodes) {
		return false
	}
	for k, v := range lf.Nodes {
		if o, ok := other.Nodes[k]; !ok || o.Locator != v.Locator || o.Rev != v.Rev {
			return false
		}
	}
	return true
}

func (lf *LockFile) Write(path string) error {
	b, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		return err
	}

	b = append(b, '\n')
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("failed to write lock file (%s): %w", path, err)
	}
	return nil
}
