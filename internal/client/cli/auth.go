package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/dokanload/internal/client/client"
	"github.com/dmitrijs2005/dokanload/internal/client/models"
)

func (a *App) login(ctx context.Context, args []string) error {
	email, err := GetSimpleText(a.reader, "-Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	u, err := a.session.Login(ctx, email, password)
	if err != nil {
		return err
	}
	a.printf("Welcome back, %s!\n", displayName(u))
	return nil
}

func (a *App) register(ctx context.Context, args []string) error {
	username, err := GetSimpleText(a.reader, "-Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "-Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	role, err := GetTextOr(a.reader, "-Role (Buyer or Seller)", "Buyer", a.out)
	if err != nil {
		return err
	}

	u, err := a.session.Register(ctx, client.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		return err
	}
	a.printf("Account created. Welcome to Dokan Load, %s!\n", displayName(u))
	return nil
}

func (a *App) logout(ctx context.Context, args []string) error {
	if !a.session.IsAuthenticated() {
		a.println("You are not logged in.")
		return nil
	}
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out.")
	return nil
}

func (a *App) whoami(ctx context.Context, args []string) error {
	u, ok := a.session.User()
	if !ok {
		a.println("Not logged in.")
		return nil
	}
	a.printUser(u)
	return nil
}

// profile refreshes the user from the server before printing it.
func (a *App) profile(ctx context.Context, args []string) error {
	u, err := a.session.RefreshUser(ctx)
	if err != nil {
		return err
	}
	a.printUser(u)
	return nil
}

func (a *App) editProfile(ctx context.Context, args []string) error {
	cur, err := a.session.RequireUser()
	if err != nil {
		return err
	}

	username, err := GetTextOr(a.reader, "-Username", cur.Username, a.out)
	if err != nil {
		return err
	}
	bio, err := GetMultiline(a.reader, "-Bio", a.out)
	if err != nil {
		return err
	}
	if bio == "" {
		bio = cur.Bio
	}
	avatarPath, err := GetTextOr(a.reader, "-Avatar image path (empty to keep)", "", a.out)
	if err != nil {
		return err
	}

	upd := models.ProfileUpdate{Username: username, Bio: bio}
	if avatarPath != "" {
		f, err := os.Open(avatarPath)
		if err != nil {
			return err
		}
		defer f.Close()
		upd.Avatar = f
		upd.AvatarName = filepath.Base(avatarPath)
	}

	u, err := a.session.UpdateProfile(ctx, upd)
	if err != nil {
		return err
	}
	a.println("Profile updated.")
	a.printUser(u)
	return nil
}

func displayName(u models.User) string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

func (a *App) printUser(u models.User) {
	a.printf("%s <%s>\n", displayName(u), u.Email)
	a.printf("  id:   %s\n", u.ID)
	a.printf("  role: %s\n", u.Role)
	if u.Bio != "" {
		a.printf("  bio:  %s\n", strings.ReplaceAll(u.Bio, "\n", "\n        "))
	}
	if u.AvatarURL != "" {
		a.printf("  avatar: %s\n", u.AvatarURL)
	}
}
