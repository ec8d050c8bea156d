package wizard

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

const draftFile = "draft.json"

// DraftStore persists in-progress wizard values under the portal state
// directory. Attachments and school rows are deliberately not drafted; only
// typed field values survive a restart.
type DraftStore struct {
	path string
}

// NewDraftStore places the draft file inside stateDir.
func NewDraftStore(stateDir string) *DraftStore {
	return &DraftStore{path: filepath.Join(stateDir, draftFile)}
}

// Path returns the draft file location.
func (s *DraftStore) Path() string { return s.path }

type draftDoc struct {
	Values map[string]string `json:"values"`
}

// Save rewrites the draft with the given values.
func (s *DraftStore) Save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(draftDoc{Values: values}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Load reads the stored values. A missing file is not an error; it simply
// means there is nothing to restore.
func (s *DraftStore) Load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var doc draftDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Values, nil
}

// Clear removes the draft file, tolerating its absence.
func (s *DraftStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
