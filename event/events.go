package event

import (
	"github.com/fundwit/go-commons/types"
)

// Creator is who raised an event, the zero value stands for the system.
type Creator struct {
	ID   types.ID
	Name string
}

func NewEventRecord(sourceType string, sourceId types.ID, sourceDesc string, projectId types.ID,
	category EventCategory, updatedProperties []UpdatedProperty, creator Creator, timestamp types.Timestamp) *EventRecord {

	return &EventRecord{
		Event: Event{
			SourceType: sourceType,
			SourceId:   sourceId,
			SourceDesc: sourceDesc,
			ProjectId:  projectId,

			EventCategory:     category,
			UpdatedProperties: updatedProperties,

			CreatorId:   creator.ID,
			CreatorName: creator.Name,
		},
		Timestamp: timestamp,
	}
}
