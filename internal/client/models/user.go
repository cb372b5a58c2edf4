// Package models defines the client-side data carried between the Remote API,
// the session, the cart and the listing views.
package models

import "io"

// User is the authenticated identity. ID and Email come from the token
// claims; the remaining fields are refreshed from the profile endpoint.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Profile is the body of GET/PUT /User/profile.
type Profile struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatarUrl"`
	Bio       string `json:"bio"`
}

// ProfileUpdate is sent as a multipart form. Avatar is optional; when set,
// AvatarName becomes the file name of the "file" part.
type ProfileUpdate struct {
	Username   string
	Bio        string
	AvatarName string
	Avatar     io.Reader
}

// Apply copies profile fields onto u, keeping the token-derived ID and Email.
// An empty username or role in p keeps the value u already has.
func (u User) Apply(p Profile) User {
	if p.Username != "" {
		u.Username = p.Username
	}
	if p.Role != "" {
		u.Role = p.Role
	}
	u.AvatarURL = p.AvatarURL
	u.Bio = p.Bio
	return u
}
