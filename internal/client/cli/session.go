package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/client/config"
	"github.com/dmitrijs2005/gophjournal/internal/client/services"
)

// getSimpleText and getToken are indirections swapped in tests.
var (
	getSimpleText = GetSimpleText
	getToken      = GetToken
)

var errEmptyUser = errors.New("user id is empty")

// restoreSession picks the user from the config or, failing that, from the
// session remembered by the last run.
func (a *App) restoreSession(ctx context.Context) {
	sess, ok, err := a.session.Restore(ctx)
	if err != nil {
		a.log.Warn(ctx, "restore session", "err", err)
	}

	user, token := a.config.UserID, a.config.AccessToken
	if user == "" && ok {
		user = sess.UserID
	}
	if token == "" && ok && sess.UserID == user {
		token = sess.Token
	}
	if user == "" {
		return
	}
	a.activate(ctx, services.Session{UserID: user, Token: token})
}

func (a *App) activate(ctx context.Context, sess services.Session) {
	if a.tokens != nil {
		a.tokens.SetAccessToken(sess.Token)
	}
	a.setUser(sess.UserID)
	if err := a.session.Remember(ctx, sess); err != nil {
		a.log.Warn(ctx, "remember session", "err", err)
	}
	a.probe(ctx)
}

func (a *App) probe(ctx context.Context) {
	if err := a.session.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// Login asks for the user id (unless given as argument) and, for the gRPC
// backend, for an access token.
func (a *App) Login(ctx context.Context, args []string) error {
	var user string
	if len(args) > 0 {
		user = args[0]
	} else {
		var err error
		if user, err = getSimpleText(a.reader, "Enter user id", a.out); err != nil {
			return err
		}
	}
	if user == "" {
		fmt.Fprintln(a.out, "Login unsuccessful:", errEmptyUser)
		return errEmptyUser
	}

	token := ""
	if a.config.Backend == config.BackendGRPC {
		token = a.config.AccessToken
		if token == "" {
			var err error
			if token, err = getToken(a.out); err != nil {
				fmt.Fprintln(a.out, "Login unsuccessful:", err)
				return err
			}
		}
	}

	a.activate(ctx, services.Session{UserID: user, Token: token})
	fmt.Fprintf(a.out, "Logged in as %s\n", user)
	return nil
}

// Logout forgets the remembered session. Cached data stays.
func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.session.Forget(ctx); err != nil {
		return a.report(err)
	}
	if a.tokens != nil {
		a.tokens.SetAccessToken("")
	}
	a.setUser("")
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
