package portal

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Result is one item returned by the portal's global search.
type Result struct {
	Path      string     `json:"path"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	Thumbnail string     `json:"thumbnail"`
	Type      string     `json:"type"`
	Tags      StringList `json:"tags"`
	Code      ItemCode   `json:"code,omitempty"`
}

// UnmarshalJSON accepts "url" as a stand-in for a missing "path".
func (r *Result) UnmarshalJSON(data []byte) error {
	type plain Result
	var raw struct {
		plain
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Result(raw.plain)
	if r.Path == "" {
		r.Path = raw.URL
	}
	return nil
}

// StringList decodes either a JSON array of strings or a single
// comma-separated string. The index has returned both shapes for tags.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	var out []string
	for part := range strings.SplitSeq(joined, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*s = out
	return nil
}

// ItemCode is an item identifier the index sends either as a JSON string
// or as a number.
type ItemCode string

// UnmarshalJSON implements json.Unmarshaler.
func (c *ItemCode) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = ItemCode(s)
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return err
	}
	*c = ItemCode(n.String())
	return nil
}

// searchResponse is the envelope of the global search endpoint.
type searchResponse struct {
	Results []Result `json:"results"`
}
