// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - Account commands: login, logout, whoami, signup, and
// password reset.

package cli

import (
	"fmt"

	"github.com/jeranaias/docchat-tui/internal/api"
)

// HandleLogin signs in and stores the access token.
func (a *App) HandleLogin(args Args) error {
	if err := RequiresTTY("sign in"); err != nil {
		return err
	}

	parser := NewArgParser(args.Raw)
	email := parser.Positional(0)
	if email == "" {
		var err error
		email, err = promptLine("Email: ")
		if err != nil {
			return err
		}
	}
	if email == "" {
		return NewUsageError("usage: docchat login [email]")
	}

	password, err := ReadPassword("Password: ")
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	resp, err := a.Client.Login(ctx, email, password)
	if err != nil {
		return NewCommandError("login", "authenticate", "sign in rejected", err)
	}
	if err := a.Creds.Save(resp.AccessToken); err != nil {
		return NewCommandError("login", "store token", "could not persist the access token", err)
	}

	name := email
	if resp.User != nil {
		name = resp.User.DisplayName()
	}
	fmt.Println(SuccessStyle.Render("[OK]") + " Signed in as " + name)
	return nil
}

// HandleLogout clears the stored token. Purely local, the server keeps
// no session state worth revoking.
func (a *App) HandleLogout(args Args) error {
	if err := a.Creds.Clear(); err != nil {
		return NewCommandError("logout", "clear token", "could not remove the stored token", err)
	}
	fmt.Println(SuccessStyle.Render("[OK]") + " Signed out")
	return nil
}

// HandleWhoami shows the signed-in account.
func (a *App) HandleWhoami(args Args) error {
	ctx, cancel := a.requestContext()
	defer cancel()

	user, err := a.Client.Me(ctx)
	if err != nil {
		return NewCommandError("whoami", "fetch profile", "could not load the account", err)
	}

	if args.JSON {
		NewJSONResponse("whoami", user).Print()
		return nil
	}

	fmt.Println(TitleStyle.Render("Account"))
	fmt.Println(RenderLabel("Name") + ValueStyle.Render(user.DisplayName()))
	fmt.Println(RenderLabel("Email") + ValueStyle.Render(user.Email))
	fmt.Println(RenderLabel("ID") + DimStyle.Render(user.ID))
	return nil
}

// HandleSignup creates an account interactively.
func (a *App) HandleSignup(args Args) error {
	if err := RequiresTTY("sign up"); err != nil {
		return err
	}

	first, err := promptLine("First name: ")
	if err != nil {
		return err
	}
	last, err := promptLine("Last name: ")
	if err != nil {
		return err
	}
	email, err := promptLine("Email: ")
	if err != nil {
		return err
	}
	if email == "" {
		return NewUsageError("an email address is required")
	}

	password, err := ReadPassword("Password: ")
	if err != nil {
		return err
	}
	again, err := ReadPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != again {
		return NewUsageError("passwords do not match")
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	user, err := a.Client.Signup(ctx, api.SignupRequest{
		Email:     email,
		Password:  password,
		FirstName: first,
		LastName:  last,
	})
	if err != nil {
		return NewCommandError("signup", "create account", "sign up rejected", err)
	}

	fmt.Println(SuccessStyle.Render("[OK]") + " Account created for " + user.Email)
	fmt.Println(DimStyle.Render("Run 'docchat login' to sign in."))
	return nil
}

// HandleForgotPassword requests a password reset email.
func (a *App) HandleForgotPassword(args Args) error {
	parser := NewArgParser(args.Raw)
	email := parser.Positional(0)
	if email == "" {
		return NewUsageError("usage: docchat forgot-password EMAIL")
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	ack, err := a.Client.ForgotPassword(ctx, email)
	if err != nil {
		return NewCommandError("forgot-password", "request reset", "could not request a reset", err)
	}
	printAck(ack, "If that address exists, a reset email is on the way.")
	return nil
}

// HandleResetPassword sets a new password using a reset token from the
// email.
func (a *App) HandleResetPassword(args Args) error {
	if err := RequiresTTY("reset a password"); err != nil {
		return err
	}

	parser := NewArgParser(args.Raw)
	token := parser.Positional(0)
	if token == "" {
		return NewUsageError("usage: docchat reset-password TOKEN")
	}

	password, err := ReadPassword("New password: ")
	if err != nil {
		return err
	}
	again, err := ReadPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != again {
		return NewUsageError("passwords do not match")
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	ack, err := a.Client.ResetPassword(ctx, api.ResetPasswordRequest{
		Token:       token,
		NewPassword: password,
	})
	if err != nil {
		return NewCommandError("reset-password", "reset", "could not reset the password", err)
	}
	printAck(ack, "Password updated. Sign in with the new password.")
	return nil
}
