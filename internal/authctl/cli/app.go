// Package cli implements authctl, a small command-line client for the
// gateway's auth endpoints. It runs one command per invocation or, with no
// command, an interactive prompt.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/hugmood/internal/authctl/client"
	"github.com/dmitrijs2005/hugmood/internal/authctl/config"
	"github.com/dmitrijs2005/hugmood/internal/server/models"
)

// API is implemented by client.Client.
type API interface {
	Login(ctx context.Context, identifier, password string) (*client.AuthResult, error)
	Register(ctx context.Context, in client.RegisterRequest) (*client.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*client.AuthResult, error)
	Logout(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, token, current, next string) (*client.PasswordChangeResult, error)
	Me(ctx context.Context, token string) (*models.PublicUser, error)
	Health(ctx context.Context) (json.RawMessage, int, error)
}

// Sessions is implemented by client.SessionStore.
type Sessions interface {
	Load() (*client.Session, error)
	Save(sess *client.Session) error
	Clear() error
}

var errPasswordMismatch = errors.New("passwords do not match")

type App struct {
	api      API
	sessions Sessions
	reader   *bufio.Reader
	out      io.Writer
	now      func() time.Time
}

func NewApp(c *config.Config) *App {
	return newApp(
		client.New(c.GatewayURL, nil, c.Timeout),
		client.NewSessionStore(c.SessionFile),
		os.Stdin, os.Stdout,
	)
}

func newApp(api API, sessions Sessions, in io.Reader, out io.Writer) *App {
	return &App{
		api:      api,
		sessions: sessions,
		reader:   bufio.NewReader(in),
		out:      out,
		now:      time.Now,
	}
}

// Run executes the command in args, or starts the interactive prompt when
// args is empty. It returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.Root(ctx)
		return 0
	}
	if err := a.Exec(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return 1
	}
	return 0
}

// Exec runs a single command.
func (a *App) Exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.register(ctx)
	case "login":
		return a.login(ctx, args)
	case "refresh":
		return a.refresh(ctx)
	case "logout":
		return a.logout(ctx)
	case "passwd":
		return a.passwd(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "health":
		return a.health(ctx)
	case "help":
		a.help()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (a *App) help() {
	fmt.Fprintln(a.out, "Available commands: register, login [identifier], refresh, logout, passwd, whoami, health, exit")
}

func (a *App) prompt() string {
	sess, err := a.sessions.Load()
	if err != nil || sess.User == nil {
		return "authctl> "
	}
	return fmt.Sprintf("authctl (%s)> ", sess.User.Username)
}

// Root is the interactive loop.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "hugmood authctl (type 'help' for commands)")
	for {
		fmt.Fprint(a.out, a.prompt())
		line, err := a.reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) > 0 {
			switch parts[0] {
			case "exit", "quit":
				fmt.Fprintln(a.out, "Bye!")
				return
			default:
				if cerr := a.Exec(ctx, parts[0], parts[1:]); cerr != nil {
					fmt.Fprintln(a.out, "error:", cerr)
				}
			}
		}
		if err != nil {
			return
		}
	}
}

func (a *App) register(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	displayName, err := GetSimpleText(a.reader, "Display name (optional)", a.out)
	if err != nil {
		return err
	}
	password, err := a.newPassword("Password")
	if err != nil {
		return err
	}

	res, err := a.api.Register(ctx, client.RegisterRequest{
		Username:    username,
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	})
	if err != nil {
		return err
	}
	if err := a.sessions.Save(client.SessionFromResult(res, a.now())); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered as %s\n", describe(res.User))
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	var identifier string
	if len(args) > 0 {
		identifier = args[0]
	} else {
		var err error
		if identifier, err = GetSimpleText(a.reader, "Email or username", a.out); err != nil {
			return err
		}
	}
	password, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}

	res, err := a.api.Login(ctx, identifier, password)
	if err != nil {
		return err
	}
	if err := a.sessions.Save(client.SessionFromResult(res, a.now())); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", describe(res.User))
	return nil
}

func (a *App) refresh(ctx context.Context) error {
	sess, err := a.sessions.Load()
	if err != nil {
		return err
	}
	if _, err := a.rotate(ctx, sess); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Session refreshed")
	return nil
}

// rotate exchanges the refresh token for a new pair and persists it. A
// rejected refresh token ends the local session.
func (a *App) rotate(ctx context.Context, sess *client.Session) (*client.Session, error) {
	res, err := a.api.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		if client.IsUnauthorized(err) {
			_ = a.sessions.Clear()
		}
		return nil, err
	}
	next := client.SessionFromResult(res, a.now())
	if err := a.sessions.Save(next); err != nil {
		return nil, err
	}
	return next, nil
}

func (a *App) logout(ctx context.Context) error {
	sess, err := a.sessions.Load()
	if errors.Is(err, client.ErrNoSession) {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	if err != nil {
		return err
	}
	if err := a.api.Logout(ctx, sess.Token); err != nil {
		fmt.Fprintln(a.out, "warning: server logout failed:", err)
	}
	if err := a.sessions.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) passwd(ctx context.Context) error {
	sess, err := a.sessions.Load()
	if err != nil {
		return err
	}
	current, err := GetPassword("Current password", a.out)
	if err != nil {
		return err
	}
	next, err := a.newPassword("New password")
	if err != nil {
		return err
	}

	res, err := a.api.ChangePassword(ctx, sess.Token, current, next)
	if err != nil {
		return err
	}
	if !res.Success {
		return errors.New(res.Message)
	}
	// Every refresh token was revoked server side.
	if err := a.sessions.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, res.Message+". Please log in again.")
	return nil
}

func (a *App) whoami(ctx context.Context) error {
	sess, err := a.sessions.Load()
	if err != nil {
		return err
	}
	user, err := a.api.Me(ctx, sess.Token)
	if client.IsUnauthorized(err) {
		if sess, err = a.rotate(ctx, sess); err != nil {
			return err
		}
		user, err = a.api.Me(ctx, sess.Token)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s\nid:      %d\nemail:   %s\ncreated: %s\n",
		describe(user), user.ID, user.Email, user.CreatedAt.Format(time.RFC3339))
	return nil
}

func (a *App) health(ctx context.Context) error {
	body, status, err := a.api.Health(ctx)
	if err != nil {
		return err
	}
	var pretty any
	if json.Unmarshal(body, &pretty) == nil {
		if b, err := json.MarshalIndent(pretty, "", "  "); err == nil {
			body = b
		}
	}
	fmt.Fprintf(a.out, "%s\n%s\n", http.StatusText(status), body)
	return nil
}

func (a *App) newPassword(prompt string) (string, error) {
	first, err := GetPassword(prompt, a.out)
	if err != nil {
		return "", err
	}
	second, err := GetPassword("Repeat "+strings.ToLower(prompt), a.out)
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errPasswordMismatch
	}
	return first, nil
}

func describe(u *models.PublicUser) string {
	if u == nil {
		return "unknown user"
	}
	if u.DisplayName != "" && u.DisplayName != u.Username {
		return fmt.Sprintf("%s (%s)", u.DisplayName, u.Username)
	}
	return u.Username
}
