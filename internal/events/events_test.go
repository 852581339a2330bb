package events

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	b := NewBus()
	a, stopA := b.Subscribe(4)
	c, stopC := b.Subscribe(4)
	defer stopA()
	defer stopC()

	b.Publish(Event{Kind: WindowTiled, Window: 7})

	for name, ch := range map[string]<-chan Event{"a": a, "c": c} {
		select {
		case ev := <-ch:
			if ev.Kind != WindowTiled || ev.Window != 7 {
				t.Fatalf("%s: unexpected event %+v", name, ev)
			}
			if ev.Time.IsZero() {
				t.Fatalf("%s: expected publish time to be stamped", name)
			}
		default:
			t.Fatalf("%s: expected an event", name)
		}
	}
}

func TestBusDropsWhenSubscriberIsFull(t *testing.T) {
	b := NewBus()
	ch, stop := b.Subscribe(1)
	defer stop()

	b.Publish(Event{Kind: WindowMoved})
	b.Publish(Event{Kind: WindowReleased})

	ev := <-ch
	if ev.Kind != WindowMoved {
		t.Fatalf("expected first event to be kept, got %s", ev.Kind)
	}
	select {
	case ev := <-ch:
		t.Fatalf("expected second event to be dropped, got %s", ev.Kind)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBus()
	ch, stop := b.Subscribe(1)
	stop()
	stop()

	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	if n := b.Subscribers(); n != 0 {
		t.Fatalf("expected no subscribers, got %d", n)
	}
	b.Publish(Event{Kind: ModeEnded})
}

func TestNilBusPublishIsNoop(t *testing.T) {
	var b *Bus
	b.Publish(Event{Kind: ModeEntered})
}

func TestStackIndexZeroIsEncoded(t *testing.T) {
	data, err := json.Marshal(Event{Kind: StackAdded, Stack: Index(0), Stacks: 2})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"stack":0`) {
		t.Fatalf("expected stack 0 in %s", data)
	}

	data, err = json.Marshal(Event{Kind: ModeEntered, Mode: "moving"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), `"stack"`) {
		t.Fatalf("expected no stack field in %s", data)
	}
}
