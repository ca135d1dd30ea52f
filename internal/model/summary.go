package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

type SummaryKind string

const (
	SummaryKindNone       SummaryKind = ""
	SummaryKindPlain      SummaryKind = "plain"
	SummaryKindStructured SummaryKind = "structured"
)

// StructuredSummary is the object form of a hold summary written by the intake channel.
type StructuredSummary struct {
	Summary     string   `json:"summary,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	Description string   `json:"description,omitempty"`
	Text        string   `json:"text,omitempty"`
	Highlights  []string `json:"highlights,omitempty"`
}

// HoldSummary is either empty, a plain string or a StructuredSummary.
type HoldSummary struct {
	Kind       SummaryKind
	Plain      string
	Structured *StructuredSummary
}

func PlainSummary(s string) HoldSummary {
	return HoldSummary{Kind: SummaryKindPlain, Plain: s}
}

func NewStructuredSummary(s StructuredSummary) HoldSummary {
	return HoldSummary{Kind: SummaryKindStructured, Structured: &s}
}

// DecodeHoldSummary turns a stored summary payload into its variant. Bytes that are
// not valid JSON are taken as a plain string.
func DecodeHoldSummary(raw []byte) HoldSummary {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return HoldSummary{}
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return PlainSummary(s)
		}
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err == nil {
			return NewStructuredSummary(structuredFromFields(fields))
		}
	}
	return PlainSummary(string(raw))
}

func structuredFromFields(fields map[string]json.RawMessage) StructuredSummary {
	var st StructuredSummary
	st.Summary = rawString(fields["summary"])
	st.Notes = rawString(fields["notes"])
	st.Description = rawString(fields["description"])
	st.Text = rawString(fields["text"])

	var items []json.RawMessage
	if err := json.Unmarshal(fields["highlights"], &items); err == nil {
		for _, item := range items {
			if s := rawString(item); s != "" {
				st.Highlights = append(st.Highlights, s)
			}
		}
	}
	return st
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// Text returns the human-readable summary, or "" when none is recognizable.
func (h HoldSummary) Text() string {
	switch h.Kind {
	case SummaryKindPlain:
		return strings.TrimSpace(h.Plain)
	case SummaryKindStructured:
		if h.Structured == nil {
			return ""
		}
		for _, s := range []string{h.Structured.Summary, h.Structured.Notes, h.Structured.Description, h.Structured.Text} {
			if s != "" {
				return s
			}
		}
		return strings.Join(h.Structured.Highlights, "\n")
	}
	return ""
}

func (h HoldSummary) IsZero() bool {
	return h.Kind == SummaryKindNone
}

func (h HoldSummary) MarshalJSON() ([]byte, error) {
	switch h.Kind {
	case SummaryKindPlain:
		return json.Marshal(h.Plain)
	case SummaryKindStructured:
		if h.Structured != nil {
			return json.Marshal(h.Structured)
		}
	}
	return []byte("null"), nil
}

func (h *HoldSummary) UnmarshalJSON(data []byte) error {
	*h = DecodeHoldSummary(data)
	return nil
}

// Scan implements sql.Scanner for jsonb/text columns.
func (h *HoldSummary) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*h = HoldSummary{}
	case []byte:
		*h = DecodeHoldSummary(v)
	case string:
		*h = DecodeHoldSummary([]byte(v))
	default:
		return fmt.Errorf("unsupported summary type %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (h HoldSummary) Value() (driver.Value, error) {
	if h.IsZero() {
		return nil, nil
	}
	b, err := h.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return b, nil
}
