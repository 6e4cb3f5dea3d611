package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ReadIndex loads report.json from dir.
func ReadIndex(dir string) (*Index, error) {
	var idx Index
	if err := readJSON(filepath.Join(dir, indexFile), &idx); err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return &idx, nil
}

// ReadResult decodes the result file of e into v.
func ReadResult(dir string, e Entry, v interface{}) error {
	if e.DataFile == "" {
		return fmt.Errorf("job %s has no result file: %w", e.JobID, os.ErrNotExist)
	}
	return readJSON(filepath.Join(dir, filepath.FromSlash(e.DataFile)), v)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
