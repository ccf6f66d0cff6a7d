package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"planboard/client/s3"
	"planboard/common"
	"planboard/event"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/fundwit/go-commons/types"
)

const ArchiveSnapshotHandlerName = "archiveSnapshot"

// ArchiveSnapshotKey is the object key of the snapshot taken when a project was archived.
func ArchiveSnapshotKey(projectID types.ID, ts types.Timestamp) string {
	return fmt.Sprintf("archives/%s/%d.json", projectID, ts.Time().Unix())
}

// ArchiveSnapshotHandler stores the full detail of a project into the object storage when it gets archived.
func ArchiveSnapshotHandler(m TrackingManagerTraits) event.EventHandler {
	return func(e *event.EventRecord) *event.EventHandleResult {
		if e.SourceType != event.SourceProject || e.EventCategory != event.EventCategoryArchived || !archivedBy(e) {
			return nil
		}
		ctx := context.Background()
		detail, err := m.DetailProject(ctx, e.ProjectId)
		if err != nil {
			return &event.EventHandleResult{HandlerIdentifier: ArchiveSnapshotHandlerName, Message: err.Error()}
		}
		body, err := json.Marshal(detail)
		if err != nil {
			return &event.EventHandleResult{HandlerIdentifier: ArchiveSnapshotHandlerName, Message: err.Error()}
		}

		key := ArchiveSnapshotKey(e.ProjectId, e.Timestamp)
		if err := s3.PutObjectFunc(ctx, key, bytes.NewReader(body), oss.ContentType("application/json")); err != nil {
			return &event.EventHandleResult{HandlerIdentifier: ArchiveSnapshotHandlerName, Message: err.Error()}
		}
		common.Log.WithField("projectId", e.ProjectId).WithField("key", key).Info("archive snapshot stored")
		return &event.EventHandleResult{HandlerIdentifier: ArchiveSnapshotHandlerName, Success: true, Message: key}
	}
}

func archivedBy(e *event.EventRecord) bool {
	for _, p := range e.UpdatedProperties {
		if p.PropertyName == "archived" {
			return p.NewValue == "true"
		}
	}
	return false
}
