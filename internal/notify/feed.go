package notify

import "time"

// Kind separates in-app toasts from desktop notifications.
type Kind string

const (
	KindToast        Kind = "toast"
	KindNotification Kind = "notification"
)

// Message is one delivered toast or notification.
type Message struct {
	Kind  Kind
	Text  string
	Title string
	Body  string
	At    time.Time
}

// Feed buffers messages for a UI loop. When the buffer is full new messages are dropped.
type Feed struct {
	ch  chan Message
	now func() time.Time
}

// NewFeed creates a feed holding up to buffer undelivered messages.
func NewFeed(buffer int) *Feed {
	if buffer <= 0 {
		buffer = 1
	}
	return &Feed{ch: make(chan Message, buffer), now: time.Now}
}

// C returns the receive side of the feed.
func (feed *Feed) C() <-chan Message {
	return feed.ch
}

// Toast queues a toast message.
func (feed *Feed) Toast(text string) {
	feed.push(Message{Kind: KindToast, Text: text})
}

// Notify queues a notification message.
func (feed *Feed) Notify(title, body string) {
	feed.push(Message{Kind: KindNotification, Title: title, Body: body})
}

func (feed *Feed) push(message Message) {
	message.At = feed.now()
	select {
	case feed.ch <- message:
	default:
	}
}
