package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

// Slice names one independently fetched collection of the store.
type Slice string

const (
	SliceFriends         Slice = "friends"
	SliceMapFriends      Slice = "map_friends"
	SliceImportedFriends Slice = "imported_friends"
	SliceRequests        Slice = "friend_requests"
	SliceGroups          Slice = "groups"
)

// SliceChanged is published after a slice has been replaced.
type SliceChanged struct {
	Slice Slice
}

// Snapshot is a consistent copy of the store. Every collection is empty, never nil, until loaded.
type Snapshot struct {
	Friends         []models.User
	MapFriends      []models.MapMarker
	ImportedFriends []models.MapMarker
	FriendRequests  []models.FriendRequest
	Groups          []models.Group
	Loaded          map[Slice]bool
}

// FriendsStore is the session's single cache of friends, imported friends, pending requests and groups.
// Every write replaces a whole slice. A fetch result is applied only when it is newer than what the slice
// already holds and the store has not been closed.
type FriendsStore struct {
	friends  FriendsBackend
	imported ImportedFriendsBackend
	groups   GroupsBackend
	notify   Notifier

	flight singleflight.Group

	mu      sync.RWMutex
	seq     uint64
	gen     uint64
	applied map[Slice]uint64
	closed  bool
	data    Snapshot

	subMu sync.Mutex
	subs  map[chan SliceChanged]struct{}
}

func NewFriendsStore(friends FriendsBackend, imported ImportedFriendsBackend, groups GroupsBackend, notify Notifier) *FriendsStore {
	if notify == nil {
		notify = LogNotifier{}
	}
	return &FriendsStore{
		friends:  friends,
		imported: imported,
		groups:   groups,
		notify:   notify,
		applied:  make(map[Slice]uint64),
		subs:     make(map[chan SliceChanged]struct{}),
		data: Snapshot{
			Friends:         []models.User{},
			MapFriends:      []models.MapMarker{},
			ImportedFriends: []models.MapMarker{},
			FriendRequests:  []models.FriendRequest{},
			Groups:          []models.Group{},
			Loaded:          map[Slice]bool{},
		},
	}
}

// Snapshot returns a copy of the current state.
func (s *FriendsStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loaded := make(map[Slice]bool, len(s.data.Loaded))
	for k, v := range s.data.Loaded {
		loaded[k] = v
	}
	return Snapshot{
		Friends:         append([]models.User{}, s.data.Friends...),
		MapFriends:      append([]models.MapMarker{}, s.data.MapFriends...),
		ImportedFriends: append([]models.MapMarker{}, s.data.ImportedFriends...),
		FriendRequests:  append([]models.FriendRequest{}, s.data.FriendRequests...),
		Groups:          append([]models.Group{}, s.data.Groups...),
		Loaded:          loaded,
	}
}

func (s *FriendsStore) Friends() []models.User {
	return s.Snapshot().Friends
}

func (s *FriendsStore) MapFriends() []models.MapMarker {
	return s.Snapshot().MapFriends
}

func (s *FriendsStore) ImportedFriends() []models.MapMarker {
	return s.Snapshot().ImportedFriends
}

func (s *FriendsStore) FriendRequests() []models.FriendRequest {
	return s.Snapshot().FriendRequests
}

func (s *FriendsStore) Groups() []models.Group {
	return s.Snapshot().Groups
}

// RefreshAll fetches friends, grouped map markers, pending requests and groups concurrently and returns once all
// four have settled. A failing fetch is logged and leaves its own slice as it was; the other slices still update.
func (s *FriendsStore) RefreshAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, fetch := range []func(context.Context){
		s.FetchFriends,
		s.FetchMapFriends,
		s.FetchFriendRequests,
		s.FetchGroups,
	} {
		wg.Add(1)
		go func(fetch func(context.Context)) {
			defer wg.Done()
			fetch(ctx)
		}(fetch)
	}
	wg.Wait()
}

// Reload is RefreshAll plus the imported slice, for callers that just wrote to the backend. Group writes change
// imported markers too. It never shares a request that started before the call.
func (s *FriendsStore) Reload(ctx context.Context) {
	s.Invalidate()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.FetchImportedFriends(ctx)
	}()
	s.RefreshAll(ctx)
	wg.Wait()
}

// ReloadImported is FetchImportedFriends for callers that just wrote to the backend.
func (s *FriendsStore) ReloadImported(ctx context.Context) {
	s.Invalidate()
	s.FetchImportedFriends(ctx)
}

// Invalidate ends request sharing for fetches already in flight. Later fetches go to the backend again.
func (s *FriendsStore) Invalidate() {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()
}

func (s *FriendsStore) FetchFriends(ctx context.Context) {
	s.fetch(ctx, SliceFriends, func(ctx context.Context) (any, error) {
		return s.friends.List(ctx)
	}, map[Slice]func(any){
		SliceFriends: func(v any) { s.data.Friends = nonNil(v.([]models.User)) },
	})
}

// FetchMapFriends loads the grouped map collection and partitions it by marker type into the registered and
// imported subsets.
func (s *FriendsStore) FetchMapFriends(ctx context.Context) {
	s.fetch(ctx, "map", func(ctx context.Context) (any, error) {
		markers, err := s.friends.MapGrouped(ctx)
		if err != nil {
			return nil, err
		}
		registered, imported := PartitionMarkers(markers)
		return [2][]models.MapMarker{registered, imported}, nil
	}, map[Slice]func(any){
		SliceMapFriends:      func(v any) { s.data.MapFriends = v.([2][]models.MapMarker)[0] },
		SliceImportedFriends: func(v any) { s.data.ImportedFriends = v.([2][]models.MapMarker)[1] },
	})
}

// FetchImportedFriends reloads only the imported subset. Markers carry their groups, so memberships loaded by
// FetchMapFriends survive.
func (s *FriendsStore) FetchImportedFriends(ctx context.Context) {
	s.fetch(ctx, SliceImportedFriends, func(ctx context.Context) (any, error) {
		return s.imported.Map(ctx)
	}, map[Slice]func(any){
		SliceImportedFriends: func(v any) { s.data.ImportedFriends = nonNil(v.([]models.MapMarker)) },
	})
}

func (s *FriendsStore) FetchFriendRequests(ctx context.Context) {
	s.fetch(ctx, SliceRequests, func(ctx context.Context) (any, error) {
		return s.friends.Requests(ctx)
	}, map[Slice]func(any){
		SliceRequests: func(v any) { s.data.FriendRequests = nonNil(v.([]models.FriendRequest)) },
	})
}

func (s *FriendsStore) FetchGroups(ctx context.Context) {
	s.fetch(ctx, SliceGroups, func(ctx context.Context) (any, error) {
		return s.groups.List(ctx)
	}, map[Slice]func(any){
		SliceGroups: func(v any) { s.data.Groups = nonNil(v.([]models.Group)) },
	})
}

// SendFriendRequest asks the backend to create a request. Local pending state is not touched; the backend
// decides about duplicates and the next refresh shows the result.
func (s *FriendsStore) SendFriendRequest(ctx context.Context, toUserID string) error {
	if _, err := s.friends.SendRequest(ctx, toUserID); err != nil {
		s.notify.Error(messageOf(err, "Failed to send request"))
		return err
	}
	s.notify.Success("Friend request sent!")
	return nil
}

// AcceptFriendRequest accepts a pending request. On success the request leaves the pending set and every
// slice is refreshed so the new friend shows up in the list and on the map. On failure nothing changes locally.
func (s *FriendsStore) AcceptFriendRequest(ctx context.Context, friendshipID string) error {
	if err := s.friends.Accept(ctx, friendshipID); err != nil {
		s.notify.Error(messageOf(err, "Failed to accept request"))
		return err
	}
	s.notify.Success("Friend request accepted!")

	s.update(SliceRequests, func() {
		kept := make([]models.FriendRequest, 0, len(s.data.FriendRequests))
		for _, r := range s.data.FriendRequests {
			if r.FriendshipID != friendshipID {
				kept = append(kept, r)
			}
		}
		s.data.FriendRequests = kept
	})
	s.Reload(ctx)
	return nil
}

// Subscribe returns a channel of change events and a function that ends the subscription.
// Events are dropped for a subscriber whose buffer is full.
func (s *FriendsStore) Subscribe(buffer int) (<-chan SliceChanged, func()) {
	if buffer < 1 {
		buffer = 16
	}
	ch := make(chan SliceChanged, buffer)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, ch)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

// Close marks the store stale. Fetches still in flight are discarded when they complete.
func (s *FriendsStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// fetch runs load through singleflight and hands the result to the applier of every slice that has not seen a
// newer write in the meantime. Concurrent callers share one request only within a generation, so a fetch made
// after Invalidate never reuses a response loaded before it. The shared request does not inherit the first
// caller's cancellation; each caller stops waiting when its own ctx is done.
func (s *FriendsStore) fetch(ctx context.Context, key Slice, load func(context.Context) (any, error), appliers map[Slice]func(any)) {
	s.mu.RLock()
	flightKey := fmt.Sprintf("%s@%d", key, s.gen)
	s.mu.RUnlock()

	loadCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(flightKey, func() (any, error) {
		ticket := s.ticket()
		v, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		s.applyFetch(ticket, v, appliers)
		return nil, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			log.Printf("Error fetching %s: %v", key, res.Err)
		}
	case <-ctx.Done():
		log.Printf("Stopped waiting for %s: %v", key, ctx.Err())
	}
}

func (s *FriendsStore) ticket() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

func (s *FriendsStore) applyFetch(ticket uint64, v any, appliers map[Slice]func(any)) {
	var changed []Slice
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	for sl, apply := range appliers {
		if s.applied[sl] >= ticket {
			continue
		}
		apply(v)
		s.applied[sl] = ticket
		s.data.Loaded[sl] = true
		changed = append(changed, sl)
	}
	s.mu.Unlock()

	for _, sl := range changed {
		s.publish(sl)
	}
}

// update applies a local write. It takes a fresh ticket so older fetches still in flight cannot undo it, and
// starts a new generation so later fetches do not join them.
func (s *FriendsStore) update(slice Slice, apply func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.seq++
	s.gen++
	s.applied[slice] = s.seq
	apply()
	s.mu.Unlock()
	s.publish(slice)
}

func (s *FriendsStore) publish(slice Slice) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- SliceChanged{Slice: slice}:
		default:
		}
	}
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// Marker finds a marker in the map slices by id and namespace.
func (s *FriendsStore) Marker(id string, kind models.MemberType) (models.MapMarker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.data.MapFriends
	if kind == models.MemberImported {
		list = s.data.ImportedFriends
	}
	for _, m := range list {
		mid, mkind := m.MemberRef()
		if mid == id && mkind == kind {
			return m, true
		}
	}
	return models.MapMarker{}, false
}
