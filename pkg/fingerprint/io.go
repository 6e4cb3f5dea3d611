package fingerprint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/element-resolver/pkg/core"
)

// Validate rejects fingerprints no snapshot could ever be scored against.
func (fp *Fingerprint) Validate() error {
	w := fp.Weights
	if w.Anchor < 0 || w.Container < 0 || w.Sibling < 0 {
		return core.ErrInvalidFingerprint.WithMessage("matching weights must not be negative").
			WithDetails(map[string]interface{}{"weights": w})
	}
	if fp.Siblings.Position < 0 || fp.Siblings.TotalSiblings < 0 || fp.Siblings.ClickableSiblings < 0 || fp.Container.ChildCount < 0 {
		return core.ErrInvalidFingerprint.WithMessage("sibling and child counts must not be negative")
	}
	return nil
}

// Load reads a fingerprint from a .json, .yaml or .yml file.
func Load(path string) (*Fingerprint, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided fingerprint file
	if err != nil {
		return nil, err
	}
	return Decode(data, filepath.Ext(path))
}

// Decode parses data in the format named by ext (".json" or YAML otherwise).
func Decode(data []byte, ext string) (*Fingerprint, error) {
	var fp Fingerprint
	var err error
	if strings.EqualFold(ext, ".json") {
		err = json.Unmarshal(data, &fp)
	} else {
		err = yaml.Unmarshal(data, &fp)
	}
	if err != nil {
		return nil, core.ErrInvalidFingerprint.WithCause(err)
	}
	if err := fp.Validate(); err != nil {
		return nil, err
	}
	return &fp, nil
}

// Save writes fp to path, choosing JSON or YAML by extension.
func Save(path string, fp *Fingerprint) error {
	data, err := Encode(fp, filepath.Ext(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write fingerprint: %w", err)
	}
	return nil
}

// Encode serializes fp as indented JSON for ".json", YAML otherwise.
func Encode(fp *Fingerprint, ext string) ([]byte, error) {
	if strings.EqualFold(ext, ".json") {
		return json.MarshalIndent(fp, "", "  ")
	}
	return yaml.Marshal(fp)
}
