package user

import (
	"cmp"
	"context"
	"fmt"
	"net/mail"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"
)

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	UpdateUser(ctx context.Context, uid string, update UserUpdate) (User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	AddFriend(ctx context.Context, uid string, friendUid string) (User, error)
	RemoveFriend(ctx context.Context, uid string, friendUid string) (User, error)
	// Recommendations ranks every other user who is not yet a friend by the
	// number of shared interests, most first. limit <= 0 returns all of them.
	Recommendations(ctx context.Context, uid string, limit int) ([]Recommendation, error)
	CountUsers(ctx context.Context) (int, error)
}

type UserServiceImpl struct {
	repo Repo
}

func NewUserService(repo Repo) *UserServiceImpl {
	return &UserServiceImpl{repo: repo}
}

func (u *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	uid, err := CurrentUid(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u.GetUserByUid(ctx, uid)
}

func (u *UserServiceImpl) CreateUser(ctx context.Context, user User) (User, error) {
	user.Uid = strings.TrimSpace(user.Uid)
	user.Email = strings.TrimSpace(user.Email)
	user.DisplayName = strings.TrimSpace(user.DisplayName)
	if user.Uid == "" || user.Email == "" || user.DisplayName == "" {
		return User{}, fmt.Errorf("%w: uid, email and displayName are required", ErrInvalidUser)
	}
	if _, err := mail.ParseAddress(user.Email); err != nil {
		return User{}, fmt.Errorf("%w: email is not valid", ErrInvalidUser)
	}
	user.Interests = normalizeInterests(user.Interests)
	user.Friends = nil

	created, err := u.repo.CreateUser(ctx, user)
	if err != nil {
		return User{}, fmt.Errorf("failed to create user %s: %w", user.Uid, err)
	}
	log.Debugf("Created user %s", created.Uid)
	return created, nil
}

func (u *UserServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	user, err := u.repo.GetUser(ctx, uid)
	if err != nil {
		return User{}, fmt.Errorf("failed to get user %s: %w", uid, err)
	}
	return user, nil
}

func (u *UserServiceImpl) UpdateUser(ctx context.Context, uid string, update UserUpdate) (User, error) {
	if update.DisplayName != nil {
		displayName := strings.TrimSpace(*update.DisplayName)
		if displayName == "" {
			return User{}, fmt.Errorf("%w: displayName cannot be empty", ErrInvalidUser)
		}
		update.DisplayName = &displayName
	}
	if update.Interests != nil {
		interests := normalizeInterests(*update.Interests)
		update.Interests = &interests
	}

	existing, err := u.repo.GetUser(ctx, uid)
	if err != nil {
		return User{}, fmt.Errorf("failed to update user %s: %w", uid, err)
	}
	updated, err := u.repo.UpdateUser(ctx, update.apply(existing))
	if err != nil {
		return User{}, fmt.Errorf("failed to update user %s: %w", uid, err)
	}
	return updated, nil
}

func (u *UserServiceImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	users, err := u.repo.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (u *UserServiceImpl) AddFriend(ctx context.Context, uid string, friendUid string) (User, error) {
	friendUid = strings.TrimSpace(friendUid)
	if friendUid == "" {
		return User{}, fmt.Errorf("%w: friendUid is required", ErrInvalidUser)
	}
	if friendUid == uid {
		return User{}, fmt.Errorf("%w: a user cannot befriend themselves", ErrInvalidUser)
	}
	if _, err := u.repo.GetUser(ctx, friendUid); err != nil {
		return User{}, fmt.Errorf("failed to add friend %s: %w", friendUid, err)
	}

	user, err := u.repo.AddFriend(ctx, uid, friendUid)
	if err != nil {
		return User{}, fmt.Errorf("failed to add friend %s to %s: %w", friendUid, uid, err)
	}
	return user, nil
}

func (u *UserServiceImpl) RemoveFriend(ctx context.Context, uid string, friendUid string) (User, error) {
	user, err := u.repo.RemoveFriend(ctx, uid, friendUid)
	if err != nil {
		return User{}, fmt.Errorf("failed to remove friend %s from %s: %w", friendUid, uid, err)
	}
	return user, nil
}

func (u *UserServiceImpl) Recommendations(ctx context.Context, uid string, limit int) ([]Recommendation, error) {
	me, err := u.repo.GetUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendations for %s: %w", uid, err)
	}
	users, err := u.repo.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendations for %s: %w", uid, err)
	}

	recommendations := make([]Recommendation, 0, len(users))
	for _, candidate := range users {
		if candidate.Uid == me.Uid || me.IsFriend(candidate.Uid) {
			continue
		}
		recommendations = append(recommendations, Recommendation{
			User:            candidate,
			SharedInterests: sharedInterests(me.Interests, candidate.Interests),
		})
	}
	slices.SortFunc(recommendations, func(a, b Recommendation) int {
		if c := cmp.Compare(len(b.SharedInterests), len(a.SharedInterests)); c != 0 {
			return c
		}
		return cmp.Compare(a.User.Uid, b.User.Uid)
	})

	if limit > 0 && len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}
	return recommendations, nil
}

func (u *UserServiceImpl) CountUsers(ctx context.Context) (int, error) {
	count, err := u.repo.CountUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// sharedInterests returns the case-insensitive intersection of a and b in the
// order of a.
func sharedInterests(a, b []string) []string {
	theirs := make(map[string]struct{}, len(b))
	for _, interest := range b {
		theirs[strings.ToLower(interest)] = struct{}{}
	}
	shared := make([]string, 0)
	for _, interest := range a {
		if _, ok := theirs[strings.ToLower(interest)]; ok {
			shared = append(shared, interest)
		}
	}
	return shared
}

// normalizeInterests trims entries and drops blanks and case-insensitive
// duplicates, keeping the first spelling.
func normalizeInterests(interests []string) []string {
	seen := make(map[string]struct{}, len(interests))
	normalized := make([]string, 0, len(interests))
	for _, interest := range interests {
		interest = strings.TrimSpace(interest)
		key := strings.ToLower(interest)
		if interest == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		normalized = append(normalized, interest)
	}
	return normalized
}
