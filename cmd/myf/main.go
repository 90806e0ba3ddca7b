package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/thebestitaly/mapyourfriends-emergent/api"
	"github.com/thebestitaly/mapyourfriends-emergent/services"
)

type app struct {
	client      *api.Client
	dash        *services.Dashboard
	out         io.Writer
	errOut      io.Writer
	sessionFile string
	signInURL   string
}

// config is read from the environment by main.
type config struct {
	backendURL  string
	sessionFile string
	signInURL   string
}

type command struct {
	usage string
	// public commands run without resolving identity first.
	public bool
	run    func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":    {usage: "login <session_id>", public: true, run: runLogin},
	"logout":   {usage: "logout", public: true, run: runLogout},
	"status":   {usage: "status", run: runStatus},
	"map":      {usage: "map [-filter all|active|competent|imported|<group_id>]", run: runMap},
	"friends":  {usage: "friends", run: runFriends},
	"requests": {usage: "requests", run: runRequests},
	"request":  {usage: "request <user_id>", run: runRequest},
	"accept":   {usage: "accept <friendship_id>", run: runAccept},
	"unfriend": {usage: "unfriend <user_id>", run: runUnfriend},
	"groups":   {usage: "groups", run: runGroups},
	"group":    {usage: "group create <name> [color] | rename <group_id> <name> | delete <group_id>", run: runGroup},
	"toggle":   {usage: "toggle [-imported] <group_id> <member_id>", run: runToggle},
	"imported": {usage: "imported list | add -first -city [-last -email -phone] | edit <id> ... [-lat -lng] | delete <id> | geocode <id>", run: runImported},
	"import":   {usage: "import <file.csv>", run: runImport},
	"geocode":  {usage: "geocode <city>", run: runGeocode},
	"meetups":  {usage: "meetups", run: runMeetups},
	"meetup":   {usage: "meetup create|join|delete ...", run: runMeetup},
	"inbox":    {usage: "inbox", run: runInbox},
	"sent":     {usage: "sent", run: runSent},
	"read":     {usage: "read <message_id>", run: runRead},
	"message":  {usage: "message <user_id> <text...>", run: runMessage},
	"profile":  {usage: "profile [-bio] [-city -lat -lng] [-availability a,b]", run: runProfile},
	"user":     {usage: "user <user_id>", run: runUser},
	"search":   {usage: "search <query>", run: runSearch},
	"stats":    {usage: "stats", run: runStats},
	"export":   {usage: "export [file.json]", run: runExport},
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Error loading .env file: %v", err)
	}
	log.SetFlags(0)
	log.SetPrefix("myf: ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], config{
		backendURL:  os.Getenv("BACKEND_URL"),
		sessionFile: sessionPath(),
		signInURL:   os.Getenv("MYF_SIGN_IN_URL"),
	}, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, cfg config, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		usage(stderr)
		return 2
	}

	if cfg.backendURL == "" {
		log.Print("BACKEND_URL environment variable is not set")
		return 1
	}
	client, err := api.NewClient(cfg.backendURL)
	if err != nil {
		log.Print(err)
		return 1
	}

	a := &app{
		client:      client,
		out:         stdout,
		errOut:      stderr,
		sessionFile: cfg.sessionFile,
		signInURL:   cfg.signInURL,
	}
	if token, err := os.ReadFile(a.sessionFile); err == nil {
		client.SetSessionToken(strings.TrimSpace(string(token)))
	}

	auth := services.NewAuthState(client.Auth, services.NavigatorFunc(a.navigate))
	a.dash = services.NewDashboard(services.FromClient(client), auth, services.NewWriterNotifier(stderr))

	if !cmd.public {
		if _, err := a.dash.Mount(ctx); err != nil {
			if !errors.Is(err, services.ErrSignInRequired) {
				log.Print(err)
			}
			return 1
		}
		defer a.dash.Unmount()
	}
	if err := cmd.run(ctx, a, args[1:]); err != nil {
		if err == errUsage {
			fmt.Fprintf(stderr, "usage: myf %s\n", cmd.usage)
		} else {
			log.Print(err)
		}
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "usage: myf <command> [args]")
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

func sessionPath() string {
	if p := os.Getenv("MYF_SESSION_FILE"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mapyourfriends-session"
	}
	return filepath.Join(home, ".mapyourfriends", "session")
}

// navigate is the terminal rendition of front-end routing: sign-in prints where to go, the entry route
// forgets the stored session.
func (a *app) navigate(route string) {
	switch route {
	case services.RouteSignIn:
		if a.signInURL != "" {
			fmt.Fprintf(a.errOut, "Not signed in. Sign in at %s, then run: myf login <session_id>\n", a.signInURL)
		} else {
			fmt.Fprintln(a.errOut, "Not signed in. Run: myf login <session_id>")
		}
	case services.RouteEntry:
		if err := os.Remove(a.sessionFile); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to remove session file: %v", err)
		}
	}
}

func (a *app) saveSession() error {
	token := a.client.SessionToken()
	if token == "" {
		return fmt.Errorf("backend did not issue a session cookie")
	}
	if err := os.MkdirAll(filepath.Dir(a.sessionFile), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	return os.WriteFile(a.sessionFile, []byte(token+"\n"), 0o600)
}
