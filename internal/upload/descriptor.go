package upload

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/singlebase/singlebase-go/internal/apierrors"
)

// Descriptor is a presigned POST target: the destination URL plus the form
// fields the storage service expects alongside the file.
type Descriptor struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
}

// Validate reports apierrors.ErrInvalidDescriptor when the URL is missing.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.URL) == "" {
		return fmt.Errorf("%w: missing upload URL", apierrors.ErrInvalidDescriptor)
	}
	return nil
}

// DescriptorFromMap converts a decoded {"url": ..., "fields": {...}} mapping.
// Non-string field values are formatted with fmt.Sprint.
func DescriptorFromMap(m map[string]any) (Descriptor, error) {
	url, _ := m["url"].(string)
	d := Descriptor{URL: url, Fields: map[string]string{}}

	switch fields := m["fields"].(type) {
	case nil:
	case map[string]string:
		for k, v := range fields {
			d.Fields[k] = v
		}
	case map[string]any:
		for k, v := range fields {
			if s, ok := v.(string); ok {
				d.Fields[k] = s
			} else {
				d.Fields[k] = fmt.Sprint(v)
			}
		}
	default:
		return Descriptor{}, fmt.Errorf("%w: fields is %T, not a mapping", apierrors.ErrInvalidDescriptor, fields)
	}

	return d, d.Validate()
}

// ParseDescriptor decodes a JSON descriptor.
func ParseDescriptor(data []byte) (Descriptor, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", apierrors.ErrInvalidDescriptor, err)
	}
	return DescriptorFromMap(m)
}
