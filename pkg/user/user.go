package user

import (
	"errors"
	"slices"
	"time"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidUser       = errors.New("invalid user data")
)

type User struct {
	Uid         string
	Email       string
	DisplayName string
	PhotoUrl    string
	Major       string
	Year        string
	Bio         string
	Interests   []string
	// Friends holds the uids this user added as friends.
	Friends   []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) IsFriend(uid string) bool {
	return slices.Contains(u.Friends, uid)
}

// UserUpdate lists the profile fields of a partial update. Nil fields are left
// unchanged.
type UserUpdate struct {
	DisplayName *string
	PhotoUrl    *string
	Major       *string
	Year        *string
	Bio         *string
	Interests   *[]string
}

func (u UserUpdate) apply(user User) User {
	if u.DisplayName != nil {
		user.DisplayName = *u.DisplayName
	}
	if u.PhotoUrl != nil {
		user.PhotoUrl = *u.PhotoUrl
	}
	if u.Major != nil {
		user.Major = *u.Major
	}
	if u.Year != nil {
		user.Year = *u.Year
	}
	if u.Bio != nil {
		user.Bio = *u.Bio
	}
	if u.Interests != nil {
		user.Interests = *u.Interests
	}
	return user
}

// Recommendation is a suggested friend with the interests they share with the
// user the recommendation is for.
type Recommendation struct {
	User            User
	SharedInterests []string
}
