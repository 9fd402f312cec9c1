package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is one dismissible banner: a message string and a type. This is
// the engine's entire user-visible failure surface.
type Notification struct {
	Level   Level
	Message string
	At      time.Time
}

type Notifier interface {
	Notify(level Level, message string)
}

// ZapNotifier writes banners to the structured log. Embedding applications
// replace it with their own UI sink.
type ZapNotifier struct {
	logger *zap.Logger
}

func NewZapNotifier(logger *zap.Logger) *ZapNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapNotifier{logger: logger}
}

func (n *ZapNotifier) Notify(level Level, message string) {
	switch level {
	case LevelError:
		n.logger.Warn("notification", zap.String("level", string(level)), zap.String("message", message))
	default:
		n.logger.Info("notification", zap.String("level", string(level)), zap.String("message", message))
	}
}

// Recorder keeps every notification in memory, for tests.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, Notification{
		Level:   level,
		Message: message,
		At:      time.Now(),
	})
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}
