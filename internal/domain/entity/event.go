package entity

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a committed state change that downstream sinks react to.
type EventType string

const (
	EventGroupCreated          EventType = "group.created"
	EventGroupStatusChanged    EventType = "group.status_changed"
	EventInviteCodeRegenerated EventType = "group.invite_code_regenerated"
	EventMemberJoined          EventType = "member.joined"
	EventMemberRemoved         EventType = "member.removed"
	EventMemberLeft            EventType = "member.left"
	EventMemberRoleChanged     EventType = "member.role_changed"
	EventClaimSubmitted        EventType = "claim.submitted"
	EventClaimApproved         EventType = "claim.approved"
	EventClaimRejected         EventType = "claim.rejected"
	EventPayoutRecorded        EventType = "payout.recorded"
	EventPayoutConfirmed       EventType = "payout.confirmed"
	EventScheduleGenerated     EventType = "schedule.generated"
	EventScheduleUpdated       EventType = "schedule.updated"
	EventScheduleEntryPaid     EventType = "schedule.entry_paid"
	EventSubscriptionRequested EventType = "subscription.requested"
	EventSubscriptionActivated EventType = "subscription.activated"
	EventSubscriptionRejected  EventType = "subscription.rejected"
	EventSubscriptionExpired   EventType = "subscription.expired"
	EventPlatformFeeChanged    EventType = "platform.fee_changed"
)

// Recipient is a person a notification is addressed to.
type Recipient struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

// Event describes something that already happened. Emitting it never affects the
// outcome of the operation that produced it.
type Event struct {
	ID          uuid.UUID              `json:"id"`
	Type        EventType              `json:"type"`
	GroupID     uuid.UUID              `json:"group_id"`
	GroupName   string                 `json:"group_name,omitempty"`
	ActorID     string                 `json:"actor_id"`
	Description string                 `json:"description"`
	Notify      []Recipient            `json:"notify,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	OccurredAt  time.Time              `json:"occurred_at"`
}

// NewEvent creates an event stamped at now.
func NewEvent(eventType EventType, group *Group, actorID, description string, now time.Time) Event {
	e := Event{
		ID:          uuid.New(),
		Type:        eventType,
		ActorID:     actorID,
		Description: description,
		Metadata:    map[string]interface{}{},
		OccurredAt:  now,
	}
	if group != nil {
		e.GroupID = group.ID
		e.GroupName = group.Name
	}
	return e
}

// With adds a metadata key and returns the event for chaining.
func (e Event) With(key string, value interface{}) Event {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// To adds notification recipients and returns the event for chaining.
func (e Event) To(recipients ...Recipient) Event {
	e.Notify = append(e.Notify, recipients...)
	return e
}
