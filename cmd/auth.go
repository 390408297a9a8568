package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/swatch/internal/shared"
	"github.com/desertthunder/swatch/internal/state"
	"github.com/urfave/cli/v3"
)

// AuthLogin logs in through the session holder, which persists the session on success.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email, password := cmd.String("email"), cmd.String("password")
	if password == "" {
		return fmt.Errorf("%w: --password (or SWATCH_PASSWORD) is required", shared.ErrMissingArgument)
	}
	if err := r.holders(ctx); err != nil {
		return err
	}

	r.logger.Info("logging in", "email", email)
	r.session.Login(ctx, email, password)

	snap := r.session.Snapshot()
	switch {
	case snap.Error == state.EmailNotVerifiedMessage:
		return fmt.Errorf("%w: %s", shared.ErrEmailNotVerified, snap.Error)
	case !snap.Authenticated:
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, snap.Message())
	}
	return r.writePlain("✓ Logged in as %s\n", snap.Session.Username)
}

// AuthRegister creates an account. The server sends a verification email before login is allowed.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	username, email, password := cmd.String("username"), cmd.String("email"), cmd.String("password")
	if password == "" {
		return fmt.Errorf("%w: --password (or SWATCH_PASSWORD) is required", shared.ErrMissingArgument)
	}
	if err := r.holders(ctx); err != nil {
		return err
	}

	r.logger.Info("registering", "username", username, "email", email)
	r.session.Register(ctx, username, email, password)

	snap := r.session.Snapshot()
	if snap.Error != "" {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, snap.Error)
	}
	return r.writePlain("✓ %s\n", snap.Notice)
}

// AuthLogout ends the session remotely and always clears it locally.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.holders(ctx); err != nil {
		return err
	}

	if !r.session.Snapshot().Authenticated {
		return r.writePlain("Not logged in\n")
	}

	r.session.Logout(ctx)
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus shows the stored session and checks it against the server's home endpoint.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.holders(ctx); err != nil {
		return err
	}

	r.writePlain("Server: %s\n", r.api.BaseURL())

	session, ok := r.session.Current()
	if !ok {
		return r.writePlain("Session: ✗ Not logged in\n")
	}
	r.writePlain("Session: ✓ %s <%s>\n", session.Username, session.Email)

	resp, err := r.api.Get(ctx, "/api/home", session.Token)
	switch {
	case err != nil:
		r.logger.Warn("status check failed", "error", err)
		return r.writePlain("Token: ? Server unreachable\n")
	case resp.OK():
		return r.writePlain("Token: ✓ Accepted\n")
	default:
		return r.writePlain("Token: ✗ Rejected (status %d)\n", resp.StatusCode)
	}
}
