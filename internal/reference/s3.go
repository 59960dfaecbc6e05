package reference

import (
	"context"
	"fmt"
	"path"
	"strings"

	"deedcheck/internal/port"
)

// ObjectSource downloads a reference file from object storage. The key's
// extension picks the format: .xlsx is a workbook, anything else is parsed
// as JSON or YAML.
type ObjectSource struct {
	storage port.ObjectStorage
	bucket  string
	key     string
	sheet   string
}

// NewObjectSource creates an ObjectSource.
func NewObjectSource(storage port.ObjectStorage, bucket, key, sheet string) *ObjectSource {
	return &ObjectSource{storage: storage, bucket: bucket, key: key, sheet: sheet}
}

// Load implements port.ReferenceSource.
func (s *ObjectSource) Load(ctx context.Context) ([]port.CountyEntry, error) {
	data, err := s.storage.Download(ctx, s.bucket, s.key)
	if err != nil {
		return nil, fmt.Errorf("downloading reference: %w", err)
	}
	if strings.EqualFold(path.Ext(s.key), ".xlsx") {
		return ParseWorkbookBytes(data, s.sheet)
	}
	return ParseDocument(data)
}
