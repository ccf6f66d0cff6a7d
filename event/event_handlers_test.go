package event_test

import (
	"planboard/event"
	"testing"
	"time"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestBusPublish(t *testing.T) {
	RegisterTestingT(t)

	record := event.NewEventRecord(event.SourceActivity, 1234, "write docs", 12, event.EventCategoryStatusChanged,
		event.UpdatedProperties{{PropertyName: "status", OldValue: "pending", NewValue: "in_progress"}},
		event.Creator{ID: 333, Name: "user333"},
		types.TimestampOfDate(2021, 1, 1, 12, 12, 12, 0, time.Local))

	t.Run("should build event records", func(t *testing.T) {
		Expect(*record).To(Equal(event.EventRecord{
			Event: event.Event{
				SourceType: event.SourceActivity, SourceId: 1234, SourceDesc: "write docs", ProjectId: 12,
				EventCategory:     event.EventCategoryStatusChanged,
				UpdatedProperties: event.UpdatedProperties{{PropertyName: "status", OldValue: "pending", NewValue: "in_progress"}},
				CreatorId:         333, CreatorName: "user333",
			},
			Timestamp: types.TimestampOfDate(2021, 1, 1, 12, 12, 12, 0, time.Local),
		}))
	})

	t.Run("should invoke all subscribed handlers in order", func(t *testing.T) {
		bus := event.NewBus()
		var received []*event.EventRecord
		bus.Subscribe(func(e *event.EventRecord) *event.EventHandleResult {
			received = append(received, e)
			return nil
		})
		bus.Subscribe(func(e *event.EventRecord) *event.EventHandleResult {
			return &event.EventHandleResult{Success: true, Message: "success", HandlerIdentifier: "all-success-handler"}
		}, func(e *event.EventRecord) *event.EventHandleResult {
			return &event.EventHandleResult{Success: false, Message: "failure", HandlerIdentifier: "all-failure-handler"}
		})

		ret := bus.Publish(record)
		Expect(received).To(Equal([]*event.EventRecord{record}))
		Expect(ret).To(Equal([]event.EventHandleResult{
			{Success: true, Message: "success", HandlerIdentifier: "all-success-handler"},
			{Success: false, Message: "failure", HandlerIdentifier: "all-failure-handler"},
		}))
	})

	t.Run("should isolate panicking handlers", func(t *testing.T) {
		bus := event.NewBus()
		called := false
		bus.Subscribe(func(e *event.EventRecord) *event.EventHandleResult {
			panic("boom")
		}, func(e *event.EventRecord) *event.EventHandleResult {
			called = true
			return nil
		})
		ret := bus.Publish(record)
		Expect(called).To(BeTrue())
		Expect(ret).To(Equal([]event.EventHandleResult{{Success: false, Message: "handler panic: boom"}}))
	})

	t.Run("nil bus publishes nothing", func(t *testing.T) {
		var bus *event.Bus
		Expect(bus.Publish(record)).To(BeNil())
	})
}
