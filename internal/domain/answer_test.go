package domain

import (
	"encoding/json"
	"testing"
)

func TestAnswerEqualityIsTypeSensitive(t *testing.T) {
	if IndexAnswer(1).Equal(TextAnswer("1")) {
		t.Fatalf("index 1 must not equal text \"1\"")
	}
	if !TextAnswer("true").Equal(TextAnswer("true")) {
		t.Fatalf("identical text answers must be equal")
	}
	if (AnswerValue{}).Equal(IndexAnswer(0)) {
		t.Fatalf("empty answer must not equal index 0")
	}
}

func TestAnswerDecodesNumbersAsIndexes(t *testing.T) {
	var payload struct {
		A AnswerValue `json:"a"`
		B AnswerValue `json:"b"`
		C AnswerValue `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a": 2, "b": "photosynthesis", "c": ""}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.A != IndexAnswer(2) {
		t.Fatalf("expected index 2, got %+v", payload.A)
	}
	if payload.B != TextAnswer("photosynthesis") {
		t.Fatalf("expected text answer, got %+v", payload.B)
	}
	if !payload.C.IsEmpty() {
		t.Fatalf("expected empty answer, got %+v", payload.C)
	}

	if err := json.Unmarshal([]byte(`{"a": 1.5}`), &payload); err == nil {
		t.Fatalf("expected fractional index to be rejected")
	}
}

func TestDefaultQuestionBankIsFresh(t *testing.T) {
	first := DefaultQuestionBank()
	first[0].Prompt = "changed"
	if DefaultQuestionBank()[0].Prompt == "changed" {
		t.Fatalf("bank must not share state between calls")
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 sample questions, got %d", len(first))
	}
}
