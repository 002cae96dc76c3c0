package event

import (
	"context"
	"encoding/json"
	"testing"
)

func TestRecorderKeepsPublishOrder(t *testing.T) {
	rec := &Recorder{}
	_ = rec.Publish(context.Background(), QuizCompleted, map[string]int{"score": 100})
	_ = rec.Publish(context.Background(), AchievementEarned, "Perfect Score")

	types := rec.Types()
	if len(types) != 2 || types[0] != QuizCompleted || types[1] != AchievementEarned {
		t.Fatalf("unexpected types %v", types)
	}
	if rec.Events[1].Payload != "Perfect Score" {
		t.Fatalf("unexpected payload %v", rec.Events[1].Payload)
	}
}

func TestEnvelopeWireFormat(t *testing.T) {
	raw, err := json.Marshal(Envelope{Type: SummaryCreated, Payload: map[string]string{"id": "s1"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["type"] != "summary.created" {
		t.Fatalf("unexpected type %v", decoded["type"])
	}
	if _, ok := decoded["occurredAt"]; !ok {
		t.Fatalf("expected occurredAt in %s", raw)
	}
}

func TestLogAndNopPublishersNeverFail(t *testing.T) {
	for _, p := range []Publisher{LogPublisher{}, Nop{}} {
		if err := p.Publish(context.Background(), TaskStatusChanged, nil); err != nil {
			t.Fatalf("%T: %v", p, err)
		}
	}
}
