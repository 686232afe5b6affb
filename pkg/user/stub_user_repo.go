package user

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
)

type StubUserRepository struct {
	mu   sync.RWMutex
	data map[string]User
}

func NewStubUserRepository() *StubUserRepository {
	return &StubUserRepository{data: map[string]User{}}
}

func (s *StubUserRepository) CreateUser(ctx context.Context, user User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[user.Uid]; ok {
		return User{}, ErrUserAlreadyExists
	}
	for _, existing := range s.data {
		if strings.EqualFold(existing.Email, user.Email) {
			return User{}, ErrUserAlreadyExists
		}
	}
	user.Interests = slices.Clone(nonNil(user.Interests))
	user.Friends = slices.Clone(nonNil(user.Friends))
	s.data[user.Uid] = user
	return user, nil
}

func (s *StubUserRepository) GetUser(ctx context.Context, uid string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.data[uid]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *StubUserRepository) UpdateUser(ctx context.Context, user User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.data[user.Uid]
	if !ok {
		return User{}, ErrUserNotFound
	}
	user.Email = existing.Email
	user.Friends = existing.Friends
	user.CreatedAt = existing.CreatedAt
	user.Interests = nonNil(user.Interests)
	s.data[user.Uid] = user
	return user, nil
}

func (s *StubUserRepository) GetAllUsers(ctx context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]User, 0, len(s.data))
	for _, uid := range slices.Sorted(maps.Keys(s.data)) {
		users = append(users, s.data[uid])
	}
	return users, nil
}

func (s *StubUserRepository) AddFriend(ctx context.Context, uid string, friendUid string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.data[uid]
	if !ok {
		return User{}, ErrUserNotFound
	}
	if !slices.Contains(user.Friends, friendUid) {
		user.Friends = append(slices.Clone(user.Friends), friendUid)
	}
	s.data[uid] = user
	return user, nil
}

func (s *StubUserRepository) RemoveFriend(ctx context.Context, uid string, friendUid string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.data[uid]
	if !ok {
		return User{}, ErrUserNotFound
	}
	user.Friends = slices.DeleteFunc(slices.Clone(user.Friends), func(f string) bool { return f == friendUid })
	s.data[uid] = user
	return user, nil
}

func (s *StubUserRepository) CountUsers(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}
