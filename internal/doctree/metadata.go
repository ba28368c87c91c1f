package doctree

import (
	"fmt"
	"maps"
)

// Metadata is an open map of primitive values attached to a record.
// Values are string, float64 or bool after NormalizeMetadata.
type Metadata map[string]any

// Known keys. Anything else is carried through untouched.
const (
	MetaFileType = "file_type"
	MetaPages    = "pages"
	MetaRows     = "rows"
	MetaColumns  = "columns"
	MetaTicker   = "ticker"
	MetaQuarter  = "quarter"
	MetaYear     = "year"
)

// NormalizeMetadata copies m, converting integer kinds to float64 so values
// survive a JSON round trip unchanged. Non-primitive values are stringified.
func NormalizeMetadata(m map[string]any) Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		switch x := v.(type) {
		case nil:
			continue
		case string, bool, float64:
			out[k] = x
		case float32:
			out[k] = float64(x)
		case int:
			out[k] = float64(x)
		case int8:
			out[k] = float64(x)
		case int16:
			out[k] = float64(x)
		case int32:
			out[k] = float64(x)
		case int64:
			out[k] = float64(x)
		case uint:
			out[k] = float64(x)
		case uint8:
			out[k] = float64(x)
		case uint16:
			out[k] = float64(x)
		case uint32:
			out[k] = float64(x)
		case uint64:
			out[k] = float64(x)
		default:
			out[k] = fmt.Sprint(x)
		}
	}
	return out
}

// Validate checks the types of known keys. Unknown keys are never rejected.
func (m Metadata) Validate() error {
	for k, v := range m {
		switch k {
		case MetaFileType, MetaTicker, MetaColumns:
			if _, ok := v.(string); !ok {
				return fmt.Errorf("metadata %s: expected string, got %T", k, v)
			}
		case MetaPages, MetaRows, MetaQuarter, MetaYear:
			if _, ok := v.(float64); !ok {
				return fmt.Errorf("metadata %s: expected number, got %T", k, v)
			}
		}
	}
	return nil
}

// Merge returns a copy of m with the entries of other layered on top.
func (m Metadata) Merge(other Metadata) Metadata {
	out := make(Metadata, len(m)+len(other))
	maps.Copy(out, m)
	maps.Copy(out, other)
	return out
}
