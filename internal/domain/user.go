package domain

import "time"

// DefaultAvatar is served for accounts that never set a profile picture.
const DefaultAvatar = "/avatar.png"

// User represents a messaging account.
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash []byte
	ProfilePic   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the public projection of a User. It never carries the password
// hash.
type Profile struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	ProfilePic string    `json:"profilePic"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Profile builds the public projection, substituting the placeholder avatar
// when no picture is set.
func (u *User) Profile() Profile {
	pic := u.ProfilePic
	if pic == "" {
		pic = DefaultAvatar
	}
	return Profile{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		ProfilePic: pic,
		CreatedAt:  u.CreatedAt,
	}
}

// ProfilePatch is a partial profile update. Nil fields are left unchanged.
// Email and password are deliberately absent: they cannot be changed through
// the profile-update path.
type ProfilePatch struct {
	FullName   *string
	ProfilePic *string
}
