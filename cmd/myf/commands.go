package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
	"github.com/thebestitaly/mapyourfriends-emergent/services"
)

var errUsage = errors.New("usage")

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func runLogin(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	user, err := a.dash.Auth().Exchange(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.saveSession(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	// The local session is dropped even when the backend call fails.
	_ = a.dash.Logout(ctx)
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func runStatus(_ context.Context, a *app, _ []string) error {
	user, _ := a.dash.Auth().User()
	snap := a.dash.Store().Snapshot()
	fmt.Fprintf(a.out, "Signed in as %s <%s>\n", user.Name, user.Email)
	if user.ActiveCity != "" {
		fmt.Fprintf(a.out, "Active city: %s\n", user.ActiveCity)
	}
	fmt.Fprintf(a.out, "Friends: %d  Imported: %d  Groups: %d\n", len(snap.Friends), len(snap.ImportedFriends), len(snap.Groups))
	fmt.Fprintf(a.out, "Inbox: %d\n", a.dash.InboxCount())
	return nil
}

func runMap(_ context.Context, a *app, args []string) error {
	fs := newFlags("map")
	filter := fs.String("filter", string(models.FilterAll), "")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	f, err := models.ParseFilter(*filter)
	if err != nil {
		return err
	}
	a.dash.SetFilter(f)

	vp := a.dash.Map().Viewport()
	fmt.Fprintf(a.out, "Center %.4f,%.4f zoom %d, filter %s\n\n", vp.Center.Lat, vp.Center.Lng, vp.Zoom, a.dash.Map().Filter())

	markers := append(a.dash.VisibleFriends(), a.dash.VisibleImportedFriends()...)
	tw := table(a.out)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tCITY\tPOSITION\tGROUPS")
	for _, m := range markers {
		id, _ := m.MemberRef()
		kind := string(m.MarkerType)
		if m.Flagged() {
			kind += " (!)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.4f,%.4f\t%s\n", id, m.Name, kind, markerCity(m), m.Lat, m.Lng, groupNames(m.Groups))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	counts := services.CountFilters(a.dash.Store().MapFriends(), a.dash.Store().ImportedFriends(), a.dash.Store().Groups())
	fmt.Fprintf(a.out, "\nall %d  active %d  competent %d  imported %d\n", counts.All, counts.Active, counts.Competent, counts.Imported)
	for _, g := range a.dash.Store().Groups() {
		fmt.Fprintf(a.out, "group %s (%s): %d\n", g.Name, g.GroupID, counts.Groups[g.GroupID])
	}
	return nil
}

func markerCity(m models.MapMarker) string {
	switch {
	case m.ActiveCity != "" && m.MarkerType == models.MarkerActive:
		return m.ActiveCity
	case m.CityName != "":
		return m.CityName
	}
	return m.City
}

func groupNames(groups []models.GroupRef) string {
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}

func runFriends(_ context.Context, a *app, _ []string) error {
	tw := table(a.out)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tCITY")
	for _, f := range a.dash.Store().Friends() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.UserID, f.Name, f.Email, f.ActiveCity)
	}
	return tw.Flush()
}

func runRequests(_ context.Context, a *app, _ []string) error {
	tw := table(a.out)
	fmt.Fprintln(tw, "FRIENDSHIP\tFROM\tEMAIL\tSENT")
	for _, r := range a.dash.Store().FriendRequests() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.FriendshipID, r.FromUser.Name, r.FromUser.Email, r.CreatedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}

func runRequest(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return a.dash.SendFriendRequest(ctx, args[0])
}

func runAccept(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return a.dash.AcceptFriendRequest(ctx, args[0])
}

func runUnfriend(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return a.dash.RemoveFriend(ctx, args[0])
}

func runGroups(_ context.Context, a *app, _ []string) error {
	tw := table(a.out)
	fmt.Fprintln(tw, "ID\tNAME\tCOLOR\tFRIENDS\tIMPORTED")
	for _, g := range a.dash.Store().Groups() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", g.GroupID, g.Name, g.Color, len(g.MemberIDs), len(g.ImportedMemberIDs))
	}
	return tw.Flush()
}

func runGroup(ctx context.Context, a *app, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	switch args[0] {
	case "create":
		color := ""
		if len(args) > 2 {
			color = args[2]
		}
		created, err := a.dash.CreateGroup(ctx, args[1], color)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, created.GroupID)
		return nil
	case "rename":
		if len(args) != 3 {
			return errUsage
		}
		name := args[2]
		return a.dash.UpdateGroup(ctx, args[1], models.GroupUpdate{Name: &name})
	case "delete":
		return a.dash.DeleteGroup(ctx, args[1])
	}
	return errUsage
}

func runToggle(ctx context.Context, a *app, args []string) error {
	fs := newFlags("toggle")
	imported := fs.Bool("imported", false, "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 2 {
		return errUsage
	}
	groupID, memberID := fs.Arg(0), fs.Arg(1)

	var group *models.Group
	for _, g := range a.dash.Store().Groups() {
		if g.GroupID == groupID {
			group = &g
			break
		}
	}
	if group == nil {
		return fmt.Errorf("group %s not found", groupID)
	}
	kind := models.MemberUser
	if *imported {
		kind = models.MemberImported
	}
	target, ok := a.dash.Store().Marker(memberID, kind)
	if !ok {
		return fmt.Errorf("%s is not on the map", memberID)
	}
	return a.dash.Toggler(target).Toggle(ctx, *group)
}

// importedForm reads the shared add/edit flags.
func importedForm(name string, args []string) (services.ImportedFriendForm, []string, error) {
	fs := newFlags(name)
	first := fs.String("first", "", "")
	last := fs.String("last", "", "")
	city := fs.String("city", "", "")
	email := fs.String("email", "", "")
	phone := fs.String("phone", "", "")
	lat := fs.String("lat", "", "")
	lng := fs.String("lng", "", "")
	if err := fs.Parse(args); err != nil {
		return services.ImportedFriendForm{}, nil, errUsage
	}
	form := services.ImportedFriendForm{FirstName: *first, LastName: *last, City: *city, Email: *email, Phone: *phone}
	var err error
	if form.Lat, err = optionalFloat(*lat); err != nil {
		return form, nil, err
	}
	if form.Lng, err = optionalFloat(*lng); err != nil {
		return form, nil, err
	}
	return form, fs.Args(), nil
}

func optionalFloat(s string) (*float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid coordinate %q", s)
	}
	return &v, nil
}

func runImported(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	switch args[0] {
	case "list":
		tw := table(a.out)
		fmt.Fprintln(tw, "ID\tNAME\tCITY\tSTATUS")
		for _, m := range a.dash.Store().ImportedFriends() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.FriendID, m.Name, m.City, m.GeocodeStatus)
		}
		return tw.Flush()
	case "add":
		form, _, err := importedForm("imported add", args[1:])
		if err != nil {
			return err
		}
		f, err := a.dash.AddImportedFriend(ctx, form)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s %s\n", f.FriendID, f.GeocodeStatus)
		return nil
	case "edit":
		if len(args) < 2 {
			return errUsage
		}
		form, _, err := importedForm("imported edit", args[2:])
		if err != nil {
			return err
		}
		f, err := a.dash.EditImportedFriend(ctx, args[1], form)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s %s\n", f.FriendID, f.GeocodeStatus)
		return nil
	case "delete":
		if len(args) != 2 {
			return errUsage
		}
		return a.dash.DeleteImportedFriend(ctx, args[1])
	case "geocode":
		if len(args) != 2 {
			return errUsage
		}
		f, err := a.dash.RegeocodeImportedFriend(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s %s\n", f.FriendID, f.GeocodeStatus)
		return nil
	}
	return errUsage
}

func runImport(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	res, err := a.dash.ImportCSV(ctx, filepath.Base(args[0]), file)
	if err != nil {
		return err
	}
	tw := table(a.out)
	fmt.Fprintln(tw, "NAME\tCITY\tSTATUS")
	for _, f := range res.Imported {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.DisplayName(), f.City, f.GeocodeStatus)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\nimported %d, failed %d\n", res.TotalImported, res.TotalFailed)
	for _, e := range res.Errors {
		fmt.Fprintf(a.out, "row %d: %s\n", e.Row, e.Reason)
	}
	return nil
}

func runGeocode(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	res, err := a.dash.GeocodeCity(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if res.Status == models.GeocodeSuccess {
		fmt.Fprintf(a.out, "%s %.4f,%.4f\n", res.City, res.Lat, res.Lng)
	}
	return nil
}

func runMeetups(_ context.Context, a *app, _ []string) error {
	tw := table(a.out)
	fmt.Fprintln(tw, "ID\tTITLE\tCITY\tDATE\tATTENDEES")
	for _, m := range a.dash.Meetups() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", m.MeetupID, m.Title, m.City, m.Date, len(m.AttendeeIDs))
	}
	return tw.Flush()
}

func runMeetup(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	switch args[0] {
	case "create":
		fs := newFlags("meetup create")
		in := models.MeetupInput{}
		fs.StringVar(&in.Title, "title", "", "")
		fs.StringVar(&in.City, "city", "", "")
		fs.StringVar(&in.Date, "date", "", "")
		fs.StringVar(&in.Description, "description", "", "")
		fs.Float64Var(&in.CityLat, "lat", 0, "")
		fs.Float64Var(&in.CityLng, "lng", 0, "")
		invite := fs.String("invite", "", "")
		if err := fs.Parse(args[1:]); err != nil {
			return errUsage
		}
		if *invite != "" {
			in.InvitedUserIDs = strings.Split(*invite, ",")
		}
		created, err := a.dash.CreateMeetup(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, created.MeetupID)
		return nil
	case "join":
		if len(args) != 2 {
			return errUsage
		}
		return a.dash.JoinMeetup(ctx, args[1])
	case "delete":
		if len(args) != 2 {
			return errUsage
		}
		return a.dash.DeleteMeetup(ctx, args[1])
	}
	return errUsage
}

func runInbox(_ context.Context, a *app, _ []string) error {
	tw := table(a.out)
	fmt.Fprintln(tw, "ID\tFROM\tSENT\tREAD\tMESSAGE")
	for _, m := range a.dash.Inbox() {
		from := m.FromUserID
		if m.FromUser != nil {
			from = m.FromUser.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", m.MessageID, from, m.CreatedAt.Format("2006-01-02 15:04"), m.Read, m.Content)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\n%d pending friend requests\n", len(a.dash.Store().FriendRequests()))
	return nil
}

func runSent(ctx context.Context, a *app, _ []string) error {
	msgs, err := a.dash.SentMessages(ctx)
	if err != nil {
		return err
	}
	tw := table(a.out)
	fmt.Fprintln(tw, "ID\tTO\tSENT\tMESSAGE")
	for _, m := range msgs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.MessageID, m.ToUserID, m.CreatedAt.Format("2006-01-02 15:04"), m.Content)
	}
	return tw.Flush()
}

func runRead(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return a.dash.MarkRead(ctx, args[0])
}

func runMessage(ctx context.Context, a *app, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	return a.dash.SendMessage(ctx, args[0], strings.Join(args[1:], " "))
}

func runProfile(ctx context.Context, a *app, args []string) error {
	fs := newFlags("profile")
	bio := fs.String("bio", "", "")
	city := fs.String("city", "", "")
	lat := fs.String("lat", "", "")
	lng := fs.String("lng", "", "")
	availability := fs.String("availability", "", "")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	var up models.ProfileUpdate
	changed := false
	fs.Visit(func(f *flag.Flag) {
		changed = true
		switch f.Name {
		case "bio":
			up.Bio = bio
		case "city":
			up.ActiveCity = city
		case "availability":
			up.Availability = strings.Split(*availability, ",")
		}
	})
	var err error
	if up.ActiveCityLat, err = optionalFloat(*lat); err != nil {
		return err
	}
	if up.ActiveCityLng, err = optionalFloat(*lng); err != nil {
		return err
	}

	user, _ := a.dash.Auth().User()
	if changed {
		saved, err := a.dash.SaveProfile(ctx, up)
		if err != nil {
			return err
		}
		user = *saved
	}
	printUser(a.out, user)
	return nil
}

func printUser(w io.Writer, u models.User) {
	fmt.Fprintf(w, "%s <%s>\n", u.Name, u.Email)
	if u.Bio != "" {
		fmt.Fprintf(w, "Bio: %s\n", u.Bio)
	}
	if u.ActiveCity != "" {
		fmt.Fprintf(w, "Active city: %s\n", u.ActiveCity)
	}
	for _, c := range u.CompetentCities {
		fmt.Fprintf(w, "Knows: %s\n", c.Name)
	}
	if len(u.Availability) > 0 {
		fmt.Fprintf(w, "Available for: %s\n", strings.Join(u.Availability, ", "))
	}
}

func runUser(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	u, err := a.dash.UserProfile(ctx, args[0])
	if err != nil {
		return err
	}
	printUser(a.out, *u)
	return nil
}

func runSearch(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	users, err := a.dash.SearchUsers(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	tw := table(a.out)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tCITY")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.UserID, u.Name, u.Email, u.ActiveCity)
	}
	return tw.Flush()
}

func runStats(ctx context.Context, a *app, _ []string) error {
	s, err := a.dash.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Friends: %d (%d registered, %d imported)\n", s.TotalFriends, s.TotalRegistered, s.TotalImported)
	fmt.Fprintf(a.out, "Cities: %d  Countries: %d  Continents: %d\n", s.UniqueCities, s.UniqueCountries, s.UniqueContinents)
	fmt.Fprintf(a.out, "Meetups created: %d  Messages sent: %d\n", s.MeetupsCreated, s.MessagesSent)
	if len(s.Badges) == 0 {
		fmt.Fprintln(a.out, "Badges: none yet")
		return nil
	}
	fmt.Fprintln(a.out, "Badges:")
	for _, b := range s.Badges {
		fmt.Fprintf(a.out, "  %s %s - %s\n", b.Icon, b.Name, b.Description)
	}
	return nil
}

// runExport writes the export as indented JSON to the named file, or to stdout.
func runExport(ctx context.Context, a *app, args []string) error {
	if len(args) > 1 {
		return errUsage
	}
	export, err := a.dash.Export(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	data = append(data, '\n')
	if len(args) == 0 {
		_, err = a.out.Write(data)
		return err
	}
	if err := os.WriteFile(args[0], data, 0o600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(a.out, "Exported %d imported friends, %d friends and %d groups to %s\n",
		len(export.ImportedFriends), len(export.RegisteredFriends), len(export.Groups), args[0])
	return nil
}
