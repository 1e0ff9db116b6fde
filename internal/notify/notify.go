// Package notify carries transient, auto-dismissing user notifications.
package notify

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Level is the severity of a notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is one message shown to the user
type Notification struct {
	Level     Level
	Message   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Notifier receives user-facing notifications
type Notifier interface {
	Notify(level Level, message string)
}

// Center keeps the current notification. A new notification replaces the previous one,
// and the current one auto-dismisses after the configured TTL.
type Center struct {
	mu          sync.Mutex
	current     *Notification
	ttl         time.Duration
	now         func() time.Time
	subscribers []chan Notification
	logger      *logrus.Logger
}

// NewCenter creates a notification center
func NewCenter(ttl time.Duration, logger *logrus.Logger) *Center {
	return &Center{
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// Notify publishes a notification, replacing the current one
func (c *Center) Notify(level Level, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := Notification{
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.current = &n

	c.logger.WithFields(logrus.Fields{
		"level":   level,
		"message": message,
	}).Debug("Notification")

	for _, ch := range c.subscribers {
		// Slow subscribers miss notifications rather than block the caller
		select {
		case ch <- n:
		default:
		}
	}
}

// Current returns the notification still on screen, if any
func (c *Center) Current() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return Notification{}, false
	}
	if !c.now().Before(c.current.ExpiresAt) {
		c.current = nil
		return Notification{}, false
	}
	return *c.current, true
}

// Dismiss clears the current notification
func (c *Center) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

// Subscribe returns a channel receiving subsequent notifications.
// Notifications arriving while the channel's buffer is full are dropped for that subscriber.
func (c *Center) Subscribe(buffer int) <-chan Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Notification, buffer)
	c.subscribers = append(c.subscribers, ch)
	return ch
}
