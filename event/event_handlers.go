package event

import (
	"fmt"
	"planboard/common"
	"sync"

	"github.com/sirupsen/logrus"
)

/*
return nil if not support
*/
type EventHandler func(e *EventRecord) *EventHandleResult

type EventHandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

// Bus delivers committed events to the subscribed handlers, in subscription order.
// A failing or panicking handler is logged and never affects the caller or the other handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers []EventHandler
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(handlers ...EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handlers...)
}

func (b *Bus) Publish(record *EventRecord) []EventHandleResult {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	handlers := append([]EventHandler{}, b.handlers...)
	b.mu.RUnlock()

	results := []EventHandleResult{}
	for _, handler := range handlers {
		common.Log.Debug("pre handle event ", record.Event)
		r := invoke(handler, record)
		if r == nil {
			continue
		}

		results = append(results, *r)

		fields := logrus.Fields{"handler": r.HandlerIdentifier, "sourceType": record.SourceType,
			"sourceId": record.SourceId, "category": record.EventCategory}
		if r.Success {
			common.Log.WithFields(fields).Debug("post handle event. ", r.Message)
		} else {
			common.Log.WithFields(fields).Error("post handler error. ", r.Message)
		}
	}
	return results
}

func invoke(handler EventHandler, record *EventRecord) (r *EventHandleResult) {
	defer func() {
		if ret := recover(); ret != nil {
			r = &EventHandleResult{Success: false, Message: fmt.Sprintf("handler panic: %v", ret)}
		}
	}()
	return handler(record)
}
