package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phoneshop/posclient/internal/client/client"
	"github.com/phoneshop/posclient/internal/client/models"
	"github.com/phoneshop/posclient/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errNotLoggedIn = errors.New("not logged in")

// Login prompts for identifier, password and role, then signs in.
// The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Phone, email or username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	roleText, err := getSimpleText(a.reader, "Role (ADMIN, MANAGER, CASHIER, TECHNICIAN) [ADMIN]", a.out)
	if err != nil {
		return err
	}
	role, err := models.ParseRole(roleText)
	if err != nil {
		fmt.Fprintln(a.out, err)
		return err
	}

	snap, err := a.api.Login(ctx, identifier, string(password), role)
	if err != nil {
		a.report(ctx, "login", err)
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s (%s)\n", snap.User.DisplayName, snap.User.Role)
	return nil
}

// Logout signs out. It always succeeds locally.
func (a *App) Logout(ctx context.Context) error {
	a.signingOut.Store(true)
	defer a.signingOut.Store(false)

	a.api.Logout(ctx)
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

// WhoAmI re-validates the session with the backend and prints the profile.
func (a *App) WhoAmI(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return errNotLoggedIn
	}

	u, err := a.api.FetchCurrentUser(ctx)
	if err != nil {
		a.report(ctx, "whoami", err)
		return err
	}

	fmt.Fprintf(a.out, "%s (%s), id %s\n", u.DisplayName, u.Role, u.ID)
	if u.Email != "" {
		fmt.Fprintf(a.out, "  email: %s\n", u.Email)
	}
	if u.Phone != "" {
		fmt.Fprintf(a.out, "  phone: %s\n", u.Phone)
	}
	return nil
}

// Status prints the local session state without contacting the backend.
func (a *App) Status(ctx context.Context) error {
	snap := a.api.Session().Snapshot()
	if !snap.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}

	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", snap.User.DisplayName, snap.User.Role)
	if !snap.AccessExpiresAt.IsZero() {
		left := time.Until(snap.AccessExpiresAt).Round(time.Second)
		if left > 0 {
			fmt.Fprintf(a.out, "  access token expires in %s\n", left)
		} else {
			fmt.Fprintln(a.out, "  access token expired, it will be refreshed on the next request")
		}
	}
	if snap.RefreshToken == "" {
		fmt.Fprintln(a.out, "  no refresh token: you will be signed out when the access token expires")
	}
	return nil
}

// report prints a user-facing explanation of err and logs it.
func (a *App) report(ctx context.Context, op string, err error) {
	a.log.Warn(ctx, op+" failed", "error", err)

	var httpErr *client.HTTPError
	switch {
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.out, "Cannot reach the server. Check your connection.")
	case errors.As(err, &httpErr) && httpErr.Message() != "":
		fmt.Fprintln(a.out, httpErr.Message())
	case errors.Is(err, client.ErrUnauthorized) && op == "login":
		fmt.Fprintln(a.out, "Invalid credentials.")
	case errors.Is(err, client.ErrUnauthorized):
		fmt.Fprintln(a.out, "Not authorized.")
	default:
		fmt.Fprintln(a.out, "Error:", err)
	}
}
