package cli

import (
	"context"
	"os"

	"github.com/minbarcms/minbar/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for an email, password and display name and
// attempts to create a new account.
//
// On success it prints "Success!" and returns nil. The password byte slice
// is securely wiped before returning. Any I/O or service error is returned
// unchanged.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	displayName, err := getSimpleText(a.reader, "Enter display name", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.sessions.SignUp(ctx, email, string(password), displayName); err != nil {
		printlnFn("Registration unsuccessful:", err.Error())
		return err
	}

	printlnFn("Success!")
	return nil
}

// Login prompts for credentials and authenticates against the backend.
// On success the session manager installs the session and the content
// cache refreshes through its session subscription.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.sessions.SignIn(ctx, email, string(password)); err != nil {
		printlnFn("Login unsuccessful:", err.Error())
		return err
	}

	printlnFn("Login successful")
	return nil
}

// Logout revokes the backend session. The cache clears itself through
// the session subscription.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.SignOut(ctx); err != nil {
		printlnFn("Logout error:", err.Error())
		return err
	}
	printlnFn("Logged out")
	return nil
}

// Profile prompts for a new display name and updates the current user.
func (a *App) Profile(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter display name", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.sessions.UpdateProfile(ctx, name); err != nil {
		printlnFn("Profile update error:", err.Error())
		return err
	}
	printlnFn("Profile updated")
	return nil
}

// Password prompts for a new password and updates it. A successful
// change signs the user out so they re-authenticate with the new
// credentials.
func (a *App) Password(ctx context.Context) error {
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.sessions.UpdatePassword(ctx, string(password)); err != nil {
		printlnFn("Password update error:", err.Error())
		return err
	}
	printlnFn("Password updated, please log in again")
	return nil
}
