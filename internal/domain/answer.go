package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// AnswerKind distinguishes option-index answers from literal text answers.
type AnswerKind int

const (
	AnswerEmpty AnswerKind = iota
	AnswerIndex
	AnswerText
)

// AnswerValue is either an option index (multiple choice) or a literal string
// (true/false and fill-in-the-blank). Comparison is type-sensitive: index 1 and
// text "1" are different answers.
type AnswerValue struct {
	Kind  AnswerKind
	Index int
	Text  string
}

// IndexAnswer builds an option-index answer.
func IndexAnswer(i int) AnswerValue {
	return AnswerValue{Kind: AnswerIndex, Index: i}
}

// TextAnswer builds a literal answer.
func TextAnswer(s string) AnswerValue {
	return AnswerValue{Kind: AnswerText, Text: s}
}

// IsEmpty reports whether no answer was given.
func (a AnswerValue) IsEmpty() bool {
	return a.Kind == AnswerEmpty
}

// Equal compares kind and value.
func (a AnswerValue) Equal(b AnswerValue) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case AnswerIndex:
		return a.Index == b.Index
	case AnswerText:
		return a.Text == b.Text
	default:
		return true
	}
}

// String renders the answer the way it is stored in text columns.
func (a AnswerValue) String() string {
	switch a.Kind {
	case AnswerIndex:
		return strconv.Itoa(a.Index)
	case AnswerText:
		return a.Text
	default:
		return ""
	}
}

// MarshalJSON encodes an index as a JSON number, text as a JSON string and the
// empty answer as "".
func (a AnswerValue) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AnswerIndex:
		return []byte(strconv.Itoa(a.Index)), nil
	case AnswerText:
		return json.Marshal(a.Text)
	default:
		return []byte(`""`), nil
	}
}

// UnmarshalJSON accepts a JSON number (index), a JSON string (text) or null.
// The empty string decodes to the empty answer.
func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = AnswerValue{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*a = AnswerValue{}
			return nil
		}
		*a = TextAnswer(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("answer must be a number or a string: %w", err)
	}
	i, err := strconv.Atoi(n.String())
	if err != nil {
		return fmt.Errorf("answer index must be an integer: %w", err)
	}
	*a = IndexAnswer(i)
	return nil
}
