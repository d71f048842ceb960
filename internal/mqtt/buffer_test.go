package mqtt

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRingBufferEmptyDrain(t *testing.T) {
	rb := newRingBuffer(10, quietLogger())
	if got := rb.drainAll(); got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestRingBufferPushAndDrain(t *testing.T) {
	rb := newRingBuffer(10, quietLogger())
	for i := 0; i < 5; i++ {
		rb.push(bufferedMsg{topic: Topic, payload: []byte{byte(i)}})
	}

	got := rb.drainAll()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i, msg := range got {
		if msg.payload[0] != byte(i) {
			t.Errorf("item %d: got payload %d", i, msg.payload[0])
		}
	}
	if rb.len() != 0 {
		t.Errorf("expected empty buffer after drain, got %d", rb.len())
	}
}

func TestRingBufferOverflowKeepsNewest(t *testing.T) {
	var logs bytes.Buffer
	rb := newRingBuffer(5, slog.New(slog.NewTextHandler(&logs, nil)))

	evicted := 0
	for i := 0; i < 8; i++ {
		if rb.push(bufferedMsg{topic: Topic, payload: []byte{byte(i)}}) {
			evicted++
		}
	}

	got := rb.drainAll()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i, msg := range got {
		if want := byte(i + 3); msg.payload[0] != want {
			t.Errorf("item %d: got %d, want %d", i, msg.payload[0], want)
		}
	}
	if evicted != 3 {
		t.Errorf("evicted: got %d, want 3", evicted)
	}
	if n := strings.Count(logs.String(), "mqtt buffer full"); n != 1 {
		t.Errorf("overflow warning logged %d times, want 1", n)
	}
}

func TestRingBufferOverflowWarnsAgainAfterDrain(t *testing.T) {
	var logs bytes.Buffer
	rb := newRingBuffer(2, slog.New(slog.NewTextHandler(&logs, nil)))

	for cycle := 0; cycle < 2; cycle++ {
		for i := 0; i < 3; i++ {
			rb.push(bufferedMsg{topic: Topic})
		}
		rb.drainAll()
	}
	if n := strings.Count(logs.String(), "mqtt buffer full"); n != 2 {
		t.Errorf("overflow warning logged %d times, want 2", n)
	}
}

func TestRingBufferMultipleCycles(t *testing.T) {
	rb := newRingBuffer(5, quietLogger())

	for i := 0; i < 3; i++ {
		rb.push(bufferedMsg{topic: Topic, payload: []byte{byte(i)}})
	}
	if got := rb.drainAll(); len(got) != 3 {
		t.Fatalf("cycle 1: expected 3 items, got %d", len(got))
	}

	for i := 10; i < 14; i++ {
		rb.push(bufferedMsg{topic: Topic, payload: []byte{byte(i)}})
	}
	got := rb.drainAll()
	if len(got) != 4 {
		t.Fatalf("cycle 2: expected 4 items, got %d", len(got))
	}
	for i, msg := range got {
		if want := byte(10 + i); msg.payload[0] != want {
			t.Errorf("cycle 2 item %d: got %d, want %d", i, msg.payload[0], want)
		}
	}
}

func TestRingBufferPreservesFields(t *testing.T) {
	rb := newRingBuffer(10, quietLogger())
	rb.push(bufferedMsg{
		topic:    TopicSystem,
		payload:  []byte(`{"test":true}`),
		retained: true,
	})

	got := rb.drainAll()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	msg := got[0]
	if msg.topic != TopicSystem {
		t.Errorf("topic: got %q", msg.topic)
	}
	if string(msg.payload) != `{"test":true}` {
		t.Errorf("payload: got %q", msg.payload)
	}
	if !msg.retained {
		t.Error("expected retained=true")
	}
}
