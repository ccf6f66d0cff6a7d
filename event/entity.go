package event

import (
	"github.com/fundwit/go-commons/types"
)

const (
	EventCategoryCreated         = "CREATED"
	EventCategoryDeleted         = "DELETED"
	EventCategoryPropertyUpdated = "PROPERTY_UPDATED"
	EventCategoryStatusChanged   = "STATUS_CHANGED"
	EventCategoryRelationUpdated = "RELATION_UPDATED"
	EventCategoryArchived        = "ARCHIVED"
)

const (
	SourceProject  = "PROJECT"
	SourceStage    = "STAGE"
	SourceActivity = "ACTIVITY"
)

type EventCategory string

type Event struct {
	SourceId   types.ID `json:"sourceId"`
	SourceType string   `json:"sourceType"`
	SourceDesc string   `json:"sourceDesc"`
	ProjectId  types.ID `json:"projectId"`

	CreatorId   types.ID `json:"creatorId"`
	CreatorName string   `json:"creatorName"`

	EventCategory     EventCategory     `json:"eventCategory"`
	UpdatedProperties UpdatedProperties `json:"updatedProperties"`
}

// EventRecord is an event stamped with the commit time of the mutation which raised it.
type EventRecord struct {
	Event

	Timestamp types.Timestamp `json:"timestamp"`
}

type UpdatedProperty struct {
	PropertyName string `json:"propertyName"`
	OldValue     string `json:"oldValue"`
	NewValue     string `json:"newValue"`
}

type UpdatedProperties []UpdatedProperty
