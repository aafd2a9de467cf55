// Package usersink bridges insight activity events into a go-users activity
// sink so dashboard actions land in the same audit trail as account events.
package usersink

import (
	"context"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/goliatone/go-insight/pkg/activity"
)

// Sink is the subset of the go-users activity logger the hook needs.
type Sink interface {
	Log(ctx context.Context, record types.ActivityRecord) error
}

// Hook maps activity events onto go-users activity records.
type Hook struct {
	Sink Sink
}

// Notify implements activity.Hook.
func (h Hook) Notify(ctx context.Context, evt Event) error {
	if h.Sink == nil {
		return nil
	}
	evt = activity.NormalizeEvent(evt)
	if evt.Verb == "" {
		return nil
	}

	record := types.ActivityRecord{
		Verb:       evt.Verb,
		ObjectType: evt.ObjectType,
		ObjectID:   evt.ObjectID,
		Channel:    evt.Channel,
		OccurredAt: evt.OccurredAt,
	}
	if id, err := uuid.Parse(evt.ActorID); err == nil {
		record.ActorID = id
	}
	if id, err := uuid.Parse(evt.UserID); err == nil {
		record.UserID = id
	}
	if id, err := uuid.Parse(evt.TenantID); err == nil {
		record.TenantID = id
	}

	data := make(map[string]any, len(evt.Metadata)+2)
	for k, v := range evt.Metadata {
		data[k] = v
	}
	if evt.DefinitionCode != "" {
		data["definition_code"] = evt.DefinitionCode
	}
	if len(evt.Recipients) > 0 {
		data["recipients"] = evt.Recipients
	}
	record.Data = data

	return h.Sink.Log(ctx, record)
}

// Event aliases activity.Event so callers can construct hooks without a
// second import.
type Event = activity.Event
