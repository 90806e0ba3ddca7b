package services

import (
	"context"
	"sync/atomic"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

// MembershipSource supplies the current view of a marker and reloads it from the backend after a write.
type MembershipSource interface {
	Marker(id string, kind models.MemberType) (models.MapMarker, bool)
	Reload(ctx context.Context)
}

// GroupToggler adds or removes one friend or imported friend from groups, one request at a time.
// Membership is never flipped locally; every toggle ends with a full refresh.
type GroupToggler struct {
	groups GroupsBackend
	source MembershipSource
	notify Notifier

	id   string
	kind models.MemberType
	seed models.MapMarker

	inFlight atomic.Bool
	pending  atomic.Value
}

func NewGroupToggler(groups GroupsBackend, source MembershipSource, target models.MapMarker, notify Notifier) *GroupToggler {
	if notify == nil {
		notify = LogNotifier{}
	}
	id, kind := target.MemberRef()
	t := &GroupToggler{groups: groups, source: source, notify: notify, id: id, kind: kind, seed: target}
	t.pending.Store("")
	return t
}

// Target returns the latest known state of the marker.
func (t *GroupToggler) Target() models.MapMarker {
	if m, ok := t.source.Marker(t.id, t.kind); ok {
		return m
	}
	return t.seed
}

// IsMember reports whether the target currently lists groupID among its groups.
func (t *GroupToggler) IsMember(groupID string) bool {
	return t.Target().InGroup(groupID)
}

// Processing returns the id of the group being toggled, or "".
func (t *GroupToggler) Processing() string {
	return t.pending.Load().(string)
}

// Toggle flips the target's membership in group. A call made while another is in flight returns
// ErrToggleInFlight without contacting the backend.
func (t *GroupToggler) Toggle(ctx context.Context, group models.Group) error {
	if !t.inFlight.CompareAndSwap(false, true) {
		return ErrToggleInFlight
	}
	t.pending.Store(group.GroupID)

	var err error
	if t.IsMember(group.GroupID) {
		err = t.groups.RemoveMember(ctx, group.GroupID, t.id)
	} else {
		err = t.groups.AddMember(ctx, group.GroupID, t.id, t.kind)
	}

	t.pending.Store("")
	t.inFlight.Store(false)

	if err != nil {
		t.notify.Error("Failed to update group membership")
	}
	t.source.Reload(ctx)
	return err
}
