// Package events fans layout notifications out to observers such as the
// websocket stream.
package events

import (
	"sync"
	"time"
)

// Kind names a layout notification.
type Kind string

const (
	WindowTiled     Kind = "window_tiled"
	WindowReleased  Kind = "window_released"
	WindowMoved     Kind = "window_moved"
	WindowsSwapped  Kind = "windows_swapped"
	StackAdded      Kind = "stack_added"
	StackRemoved    Kind = "stack_removed"
	DeskConfChanged Kind = "desk_conf_changed"
	ModeEntered     Kind = "mode_entered"
	ModeEnded       Kind = "mode_ended"
)

// Event is one notification. Zero-valued fields are omitted on the wire.
type Event struct {
	Kind    Kind      `json:"kind"`
	Time    time.Time `json:"time"`
	Desk    string    `json:"desk,omitempty"`
	Window  uint32    `json:"window,omitempty"`
	Target  uint32    `json:"target,omitempty"`
	Stack   *int      `json:"stack,omitempty"`
	Stacks  int       `json:"stacks,omitempty"`
	Mode    string    `json:"mode,omitempty"`
	Session string    `json:"session,omitempty"`
}

// Index wraps a stack index for Event.Stack.
func Index(i int) *int {
	return &i
}

// Bus is a non-blocking broadcast hub. Slow subscribers drop events.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Event
	now  func() time.Time
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[int]chan Event),
		now:  time.Now,
	}
}

// Publish delivers ev to every subscriber that has room for it.
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = b.now()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a buffered receiver. The returned func unsubscribes and
// closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers reports the number of active subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
