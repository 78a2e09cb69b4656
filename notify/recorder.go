package notify

import (
	"context"
	"sync"
)

var (
	_ Notifier  = (*Recorder)(nil)
	_ Navigator = (*Recorder)(nil)
)

// Message is one recorded notification.
type Message struct {
	Level Level
	Text  string
}

// Recorder keeps every notification and navigation in memory. Navigations are
// also delivered on the Navigated channel so tests can wait for delayed ones.
type Recorder struct {
	lock      sync.Mutex
	messages  []Message
	paths     []string
	Navigated chan string
}

func NewRecorder() *Recorder {
	return &Recorder{Navigated: make(chan string, 16)}
}

func (r *Recorder) ShowSuccess(message string) { r.add(LevelSuccess, message) }
func (r *Recorder) ShowError(message string)   { r.add(LevelError, message) }
func (r *Recorder) ShowWarning(message string) { r.add(LevelWarning, message) }
func (r *Recorder) ShowInfo(message string)    { r.add(LevelInfo, message) }

func (r *Recorder) Navigate(_ context.Context, path string) {
	r.lock.Lock()
	r.paths = append(r.paths, path)
	r.lock.Unlock()
	select {
	case r.Navigated <- path:
	default:
	}
}

func (r *Recorder) Messages() []Message {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]Message(nil), r.messages...)
}

func (r *Recorder) Paths() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string(nil), r.paths...)
}

func (r *Recorder) add(level Level, text string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.messages = append(r.messages, Message{Level: level, Text: text})
}
