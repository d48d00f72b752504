// Package labelstore persists carrier label documents.
package labelstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tournevent/dhlexpress/pkg/shipper"
)

const labelExtension = ".pdf"

// FileStore writes labels as <waybill>.pdf into Dir.
type FileStore struct {
	Dir string
}

// NewFileStore creates a file store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// Save writes the label, creating the directory and replacing any previous
// label of the same waybill.
func (s *FileStore) Save(waybill string, label []byte) error {
	if waybill == "" || strings.ContainsAny(waybill, `/\`) || waybill == "." || waybill == ".." {
		return fmt.Errorf("invalid waybill %q", waybill)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating label directory: %w", err)
	}
	if err := os.WriteFile(s.Path(waybill), label, 0o644); err != nil {
		return fmt.Errorf("writing label: %w", err)
	}
	return nil
}

// Path returns the file a label is stored at.
func (s *FileStore) Path(waybill string) string {
	return filepath.Join(s.Dir, waybill+labelExtension)
}

var _ shipper.LabelStore = (*FileStore)(nil)
