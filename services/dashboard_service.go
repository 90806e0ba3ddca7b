package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
	"github.com/thebestitaly/mapyourfriends-emergent/utils/errors"
)

// View is the side panel currently open.
type View string

const (
	ViewMap      View = "map"
	ViewFriends  View = "friends"
	ViewImported View = "imported"
	ViewMeetups  View = "meetups"
	ViewInbox    View = "inbox"
)

// Dashboard composes identity, the friends store and the map into one screen and owns its transient state.
type Dashboard struct {
	backend Backend
	auth    *AuthState
	store   *FriendsStore
	mapv    *MapState
	notify  Notifier

	mu               sync.RWMutex
	view             View
	selected         *models.MapMarker
	selectedImported *models.MapMarker
	meetups          []models.Meetup
	inbox            []models.InboxMessage
	togglers         map[toggleKey]*GroupToggler
}

type toggleKey struct {
	id   string
	kind models.MemberType
}

func NewDashboard(backend Backend, auth *AuthState, notify Notifier) *Dashboard {
	if notify == nil {
		notify = LogNotifier{}
	}
	return &Dashboard{
		backend: backend,
		auth:    auth,
		store:   NewFriendsStore(backend.Friends, backend.ImportedFriends, backend.Groups, notify),
		mapv:    NewMapState(),
		notify:  notify,
		view:    ViewMap,
		meetups:  []models.Meetup{},
		inbox:    []models.InboxMessage{},
		togglers: make(map[toggleKey]*GroupToggler),
	}
}

func (d *Dashboard) Store() *FriendsStore { return d.store }
func (d *Dashboard) Map() *MapState       { return d.mapv }
func (d *Dashboard) Auth() *AuthState     { return d.auth }

// Mount resolves identity, centers the map on the user's active city and loads every collection.
// No fetch starts before identity is known. Failed fetches only log; Mount reports an error when ctx ends
// before loading finishes, together with the resolved user.
func (d *Dashboard) Mount(ctx context.Context) (*models.User, error) {
	user, err := d.auth.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if loc, ok := user.ActiveLocation(); ok {
		d.mapv.FlyTo(loc.Lat, loc.Lng)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.store.RefreshAll(gctx)
		return gctx.Err()
	})
	g.Go(func() error {
		d.FetchMeetups(gctx)
		return gctx.Err()
	})
	g.Go(func() error {
		d.FetchInbox(gctx)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return user, fmt.Errorf("loading dashboard: %w", err)
	}
	return user, nil
}

// Unmount discards fetches still in flight.
func (d *Dashboard) Unmount() {
	d.store.Close()
}

// VisibleFriends applies the current filter to the registered markers.
func (d *Dashboard) VisibleFriends() []models.MapMarker {
	return FilterFriends(d.store.MapFriends(), d.mapv.Filter())
}

// VisibleImportedFriends applies the current filter to the imported markers.
func (d *Dashboard) VisibleImportedFriends() []models.MapMarker {
	return FilterImportedFriends(d.store.ImportedFriends(), d.mapv.Filter())
}

func (d *Dashboard) SetFilter(f models.Filter) {
	d.mapv.SetFilter(f)
}

func (d *Dashboard) View() View {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.view
}

func (d *Dashboard) SetView(v View) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.view = v
}

// SelectMarker opens the card for a marker and flies to it.
func (d *Dashboard) SelectMarker(m models.MapMarker) {
	d.mu.Lock()
	if m.IsImported() {
		d.selectedImported = &m
	} else {
		d.selected = &m
	}
	d.mu.Unlock()
	d.mapv.FlyTo(m.Lat, m.Lng)
}

// SelectListFriend opens a friend picked from the list. The map only moves when the friend has an active city.
func (d *Dashboard) SelectListFriend(u models.User) {
	m := models.MapMarker{
		UserID:       u.UserID,
		Name:         u.Name,
		Picture:      u.Picture,
		Bio:          u.Bio,
		ActiveCity:   u.ActiveCity,
		MarkerType:   models.MarkerActive,
		Availability: u.Availability,
		Groups:       []models.GroupRef{},
	}
	if found, ok := d.store.Marker(u.UserID, models.MemberUser); ok {
		m = found
	}
	d.mu.Lock()
	d.selected = &m
	d.mu.Unlock()
	if loc, ok := u.ActiveLocation(); ok {
		d.mapv.FlyTo(loc.Lat, loc.Lng)
		d.SetView(ViewMap)
	}
}

// Selected returns the open registered and imported cards.
func (d *Dashboard) Selected() (friend, imported *models.MapMarker) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.selected, d.selectedImported
}

func (d *Dashboard) ClearSelection() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selected, d.selectedImported = nil, nil
}

// Toggler returns the group toggler for a marker. Every call for the same id and namespace gets the same
// toggler, so a second toggle on a busy target is rejected.
func (d *Dashboard) Toggler(target models.MapMarker) *GroupToggler {
	id, kind := target.MemberRef()
	key := toggleKey{id: id, kind: kind}

	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.togglers[key]; ok {
		return t
	}
	t := NewGroupToggler(d.backend.Groups, d.store, target, d.notify)
	d.togglers[key] = t
	return t
}

func (d *Dashboard) SendFriendRequest(ctx context.Context, toUserID string) error {
	return d.store.SendFriendRequest(ctx, toUserID)
}

func (d *Dashboard) AcceptFriendRequest(ctx context.Context, friendshipID string) error {
	return d.store.AcceptFriendRequest(ctx, friendshipID)
}

// RemoveFriend deletes a friendship and refreshes every slice.
func (d *Dashboard) RemoveFriend(ctx context.Context, friendID string) error {
	if err := d.backend.Friends.Remove(ctx, friendID); err != nil {
		d.notify.Error(messageOf(err, "Failed to remove friend"))
		return err
	}
	d.notify.Success("Friend removed")
	d.store.Reload(ctx)
	return nil
}

// AddImportedFriend validates the form, lets the backend geocode the city and reloads imported friends.
func (d *Dashboard) AddImportedFriend(ctx context.Context, form ImportedFriendForm) (*models.ImportedFriend, error) {
	in, err := NewImportedFriendInput(form)
	if err != nil {
		d.notify.Error(messageOf(err, "Invalid input"))
		return nil, err
	}
	friend, err := d.backend.ImportedFriends.Add(ctx, in)
	if err != nil {
		d.notify.Error(messageOf(err, "Failed to add friend"))
		return nil, err
	}
	if friend.GeocodeStatus == models.GeocodeSuccess {
		d.notify.Success(fmt.Sprintf("%s added to the map!", friend.DisplayName()))
	} else {
		d.notify.Success(fmt.Sprintf("%s added! Location needs checking.", friend.DisplayName()))
	}
	d.store.ReloadImported(ctx)
	return friend, nil
}

// EditImportedFriend saves the edit form and reloads imported friends. The open card shows the saved record.
func (d *Dashboard) EditImportedFriend(ctx context.Context, friendID string, form ImportedFriendForm) (*models.ImportedFriend, error) {
	up, err := NewImportedFriendUpdate(form)
	if err != nil {
		d.notify.Error(messageOf(err, "Invalid input"))
		return nil, err
	}
	updated, err := d.backend.ImportedFriends.Update(ctx, friendID, up)
	if err != nil {
		d.notify.Error(messageOf(err, "Failed to save friend"))
		return nil, err
	}
	d.notify.Success("Friend updated!")

	d.mu.Lock()
	if d.selectedImported != nil && d.selectedImported.FriendID == friendID {
		m := updated.Marker(d.selectedImported.Groups)
		d.selectedImported = &m
	}
	d.mu.Unlock()

	d.store.ReloadImported(ctx)
	return updated, nil
}

// RegeocodeImportedFriend asks the backend to geocode a stored contact again.
func (d *Dashboard) RegeocodeImportedFriend(ctx context.Context, friendID string) (*models.ImportedFriend, error) {
	updated, err := d.backend.ImportedFriends.Geocode(ctx, friendID)
	if err != nil {
		d.notify.Error(messageOf(err, "Geocoding failed"))
		return nil, err
	}
	d.store.ReloadImported(ctx)
	return updated, nil
}

// DeleteImportedFriend removes a contact, closes its card and reloads imported friends.
func (d *Dashboard) DeleteImportedFriend(ctx context.Context, friendID string) error {
	if err := d.backend.ImportedFriends.Delete(ctx, friendID); err != nil {
		d.notify.Error(messageOf(err, "Failed to delete friend"))
		return err
	}
	d.mu.Lock()
	if d.selectedImported != nil && d.selectedImported.FriendID == friendID {
		d.selectedImported = nil
	}
	d.mu.Unlock()
	d.store.ReloadImported(ctx)
	return nil
}

// ImportCSV uploads a contacts file. The backend's per-row counts are returned unchanged.
func (d *Dashboard) ImportCSV(ctx context.Context, filename string, r io.Reader) (*models.CSVImportResult, error) {
	if err := ValidateCSVName(filename); err != nil {
		d.notify.Error(messageOf(err, "Invalid input"))
		return nil, err
	}
	res, err := d.backend.ImportedFriends.ImportCSV(ctx, filename, r)
	if err != nil {
		d.notify.Error(messageOf(err, "Import failed"))
		return nil, err
	}
	d.notify.Success(fmt.Sprintf("Imported %d friends!", res.TotalImported))
	d.store.ReloadImported(ctx)
	return res, nil
}

// GeocodeCity resolves a city for a form. A "failed" status is a result, not an error.
func (d *Dashboard) GeocodeCity(ctx context.Context, city string) (*models.GeocodeResult, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		err := errors.Validation("please enter a city")
		d.notify.Error(err.Message)
		return nil, err
	}
	res, err := d.backend.Geocoding.Geocode(ctx, city)
	if err != nil {
		d.notify.Error("Search failed")
		return nil, err
	}
	if res.Status == models.GeocodeSuccess {
		d.notify.Success("Location found!")
	} else {
		d.notify.Error("City not found, enter coordinates manually")
	}
	return res, nil
}

// CreateGroup validates and creates a group, then refreshes every slice.
func (d *Dashboard) CreateGroup(ctx context.Context, name, color string) (*models.GroupCreated, error) {
	in, err := NewGroupInput(name, color)
	if err != nil {
		d.notify.Error(messageOf(err, "Invalid input"))
		return nil, err
	}
	created, err := d.backend.Groups.Create(ctx, in)
	if err != nil {
		d.notify.Error(messageOf(err, "Failed to create group"))
		return nil, err
	}
	d.notify.Success("Group created!")
	d.store.Reload(ctx)
	return created, nil
}

func (d *Dashboard) UpdateGroup(ctx context.Context, groupID string, up models.GroupUpdate) error {
	if up.Name != nil && strings.TrimSpace(*up.Name) == "" {
		return errors.Validation("group name is required")
	}
	if up.Color != nil && !models.IsPaletteColor(*up.Color) {
		return errors.Validation(fmt.Sprintf("color %s is not in the palette", *up.Color))
	}
	if err := d.backend.Groups.Update(ctx, groupID, up); err != nil {
		d.notify.Error(messageOf(err, "Failed to update group"))
		return err
	}
	d.notify.Success("Group updated")
	d.store.Reload(ctx)
	return nil
}

// DeleteGroup removes a group. A filter pointing at it falls back to all.
func (d *Dashboard) DeleteGroup(ctx context.Context, groupID string) error {
	if err := d.backend.Groups.Delete(ctx, groupID); err != nil {
		d.notify.Error(messageOf(err, "Failed to delete group"))
		return err
	}
	d.notify.Success("Group deleted")
	if d.mapv.Filter() == models.GroupFilter(groupID) {
		d.mapv.SetFilter(models.FilterAll)
	}
	d.store.Reload(ctx)
	return nil
}

// FetchMeetups reloads meetups. Failures are logged and keep the previous list.
func (d *Dashboard) FetchMeetups(ctx context.Context) {
	meetups, err := d.backend.Meetups.List(ctx)
	if err != nil {
		log.Printf("Error fetching meetups: %v", err)
		return
	}
	d.mu.Lock()
	d.meetups = nonNil(meetups)
	d.mu.Unlock()
}

func (d *Dashboard) Meetups() []models.Meetup {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.Meetup{}, d.meetups...)
}

func (d *Dashboard) CreateMeetup(ctx context.Context, in models.MeetupInput) (*models.MeetupCreated, error) {
	if err := ValidateMeetup(in); err != nil {
		d.notify.Error(messageOf(err, "Invalid input"))
		return nil, err
	}
	created, err := d.backend.Meetups.Create(ctx, in)
	if err != nil {
		d.notify.Error(messageOf(err, "Failed to create meetup"))
		return nil, err
	}
	d.notify.Success("Meetup created!")
	d.FetchMeetups(ctx)
	return created, nil
}

func (d *Dashboard) JoinMeetup(ctx context.Context, meetupID string) error {
	if err := d.backend.Meetups.Join(ctx, meetupID); err != nil {
		d.notify.Error(messageOf(err, "Failed to join meetup"))
		return err
	}
	d.notify.Success("Joined meetup")
	d.FetchMeetups(ctx)
	return nil
}

func (d *Dashboard) DeleteMeetup(ctx context.Context, meetupID string) error {
	if err := d.backend.Meetups.Delete(ctx, meetupID); err != nil {
		d.notify.Error(messageOf(err, "Failed to delete meetup"))
		return err
	}
	d.FetchMeetups(ctx)
	return nil
}

// FetchInbox reloads received messages. Failures are logged and keep the previous list.
func (d *Dashboard) FetchInbox(ctx context.Context) {
	inbox, err := d.backend.Messages.Inbox(ctx)
	if err != nil {
		log.Printf("Error fetching inbox: %v", err)
		return
	}
	d.mu.Lock()
	d.inbox = nonNil(inbox)
	d.mu.Unlock()
}

func (d *Dashboard) Inbox() []models.InboxMessage {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.InboxMessage{}, d.inbox...)
}

// InboxCount is the badge number: unread messages plus pending friend requests.
func (d *Dashboard) InboxCount() int {
	d.mu.RLock()
	unread := models.UnreadCount(d.inbox)
	d.mu.RUnlock()
	return unread + len(d.store.FriendRequests())
}

func (d *Dashboard) MarkRead(ctx context.Context, messageID string) error {
	if err := d.backend.Messages.MarkRead(ctx, messageID); err != nil {
		d.notify.Error(messageOf(err, "Failed to update message"))
		return err
	}
	d.FetchInbox(ctx)
	return nil
}

func (d *Dashboard) SendMessage(ctx context.Context, toUserID, content string) error {
	content = strings.TrimSpace(content)
	if toUserID == "" || content == "" {
		return errors.Validation("recipient and content are required")
	}
	if _, err := d.backend.Messages.Send(ctx, models.MessageInput{ToUserID: toUserID, Content: content}); err != nil {
		d.notify.Error(messageOf(err, "Failed to send message"))
		return err
	}
	d.notify.Success("Message sent")
	return nil
}

// SaveProfile validates and stores the profile, then updates the cached identity.
func (d *Dashboard) SaveProfile(ctx context.Context, up models.ProfileUpdate) (*models.User, error) {
	if err := ValidateProfile(up); err != nil {
		d.notify.Error(messageOf(err, "Invalid input"))
		return nil, err
	}
	user, err := d.backend.Users.UpdateMe(ctx, up)
	if err != nil {
		d.notify.Error(messageOf(err, "Failed to save profile"))
		return nil, err
	}
	d.notify.Success("Profile updated!")
	d.auth.SetUser(*user)
	return user, nil
}

// SearchUsers returns no results, without a request, for queries shorter than MinSearchLength.
func (d *Dashboard) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinSearchLength {
		return []models.User{}, nil
	}
	users, err := d.backend.Users.Search(ctx, query)
	if err != nil {
		log.Printf("Error searching users: %v", err)
		return []models.User{}, err
	}
	return nonNil(users), nil
}

// Logout drops in-flight fetches and ends the session locally even if the backend call fails.
func (d *Dashboard) Logout(ctx context.Context) error {
	d.store.Close()
	d.ClearSelection()
	d.mu.Lock()
	d.togglers = make(map[toggleKey]*GroupToggler)
	d.mu.Unlock()
	return d.auth.Logout(ctx)
}

// UserProfile loads another user's public profile.
func (d *Dashboard) UserProfile(ctx context.Context, userID string) (*models.User, error) {
	return d.backend.Users.Get(ctx, userID)
}

// Stats loads the current user's statistics and badges.
func (d *Dashboard) Stats(ctx context.Context) (*models.UserStats, error) {
	s, err := d.backend.Users.Stats(ctx)
	if err != nil {
		d.notify.Error(messageOf(err, "Failed to load statistics"))
		return nil, err
	}
	return s, nil
}

// Export downloads the current user's data.
func (d *Dashboard) Export(ctx context.Context) (*models.UserExport, error) {
	e, err := d.backend.Users.Export(ctx)
	if err != nil {
		d.notify.Error(messageOf(err, "Export failed"))
		return nil, err
	}
	d.notify.Success("Export ready")
	return e, nil
}

// SentMessages lists messages the current user has sent.
func (d *Dashboard) SentMessages(ctx context.Context) ([]models.InboxMessage, error) {
	return d.backend.Messages.Sent(ctx)
}
