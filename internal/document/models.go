package document

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is a published post: name, slug, free-form metadata, markdown source and
// attachments. Attachment values are standard base64; a nil map means the document has
// no attachments directory at all.
type Document struct {
	Name        string            `json:"name"`
	Path        string            `json:"path"`
	Metadata    Metadata          `json:"metadata"`
	Content     string            `json:"content"`
	Attachments map[string]string `json:"attachments,omitempty"`
}

// Metadata is the schema-less metadata of a document. "id" is reserved and managed by the
// service; every other key round-trips verbatim through Extra.
type Metadata struct {
	ID    string
	Extra map[string]any
}

// Description returns the "description" extra when it is a string.
func (m Metadata) Description() (string, bool) {
	s, ok := m.Extra["description"].(string)
	return s, ok
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+1)
	for k, v := range m.Extra {
		out[k] = v
	}
	delete(out, "id")
	if m.ID != "" {
		out["id"] = m.ID
	}
	return json.Marshal(out)
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = Metadata{}
		return nil
	}
	raw, err := DecodeObject(data)
	if err != nil {
		return err
	}
	m.ID = ""
	if v, ok := raw["id"]; ok {
		switch id := v.(type) {
		case string:
			m.ID = id
		case nil:
		default:
			return fmt.Errorf("metadata id must be a string, got %T", v)
		}
		delete(raw, "id")
	}
	m.Extra = raw
	return nil
}

// DecodeObject decodes a JSON object keeping numbers as json.Number so values survive a
// decode/encode cycle unchanged.
func DecodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
