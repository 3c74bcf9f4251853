package user

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store.
type fakeStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[uuid.UUID]*User)}
}

func (s *fakeStore) Create(ctx context.Context, params CreateParams) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == params.Email {
			return nil, ErrDuplicateEmail
		}
	}

	now := time.Now()
	u := &User{
		ID:           uuid.New(),
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *fakeStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *fakeStore) List(ctx context.Context, offset, limit int) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if offset >= len(all) {
		return []User{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *fakeStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

func (s *fakeStore) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if params.Email != nil {
		u.Email = *params.Email
	}
	if params.FirstName != nil {
		u.FirstName = params.FirstName
	}
	if params.LastName != nil {
		u.LastName = params.LastName
	}
	u.UpdatedAt = time.Now()
	return u, nil
}

func (s *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// fakeHasher marks inputs instead of running bcrypt.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	return NewService(store, fakeHasher{}), store
}

func ptr(s string) *string { return &s }

func TestService_CreateUser(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:     "  Alice@Example.COM ",
		Password:  "Sup3rSecret",
		FirstName: ptr("  Alice "),
		LastName:  ptr(""),
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", created.Email)
	assert.Equal(t, "hashed:Sup3rSecret", created.PasswordHash)
	require.NotNil(t, created.FirstName)
	assert.Equal(t, "Alice", *created.FirstName)
	assert.Nil(t, created.LastName, "blank name should be dropped")
	assert.True(t, created.IsActive)
}

func TestService_CreateUser_Validation(t *testing.T) {
	svc, store := newTestService()

	_, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "", Password: "Sup3rSecret"})
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.CreateUser(context.Background(), CreateUserInput{Email: "nope", Password: "Sup3rSecret"})
	assert.ErrorIs(t, err, ErrInvalidEmailFormat)

	_, err = svc.CreateUser(context.Background(), CreateUserInput{Email: "alice@example.com", Password: "weak"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	count, _ := store.Count(context.Background())
	assert.Equal(t, 0, count)
}

func TestService_CreateUser_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "alice@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), CreateUserInput{Email: "Alice@example.com", Password: "Sup3rSecret"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestService_GetUserByID(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "alice@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	found, err := svc.GetUserByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, found.Email)

	_, err = svc.GetUserByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ListUsers(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := svc.CreateUser(ctx, CreateUserInput{Email: email, Password: "Sup3rSecret"})
		require.NoError(t, err)
	}

	page, err := svc.ListUsers(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Users, 2)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.TotalPages)

	second, err := svc.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, second.Users, 1)
	assert.Equal(t, 2, second.Page)
}

func TestService_ListUsers_ClampsInput(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	page, err := svc.ListUsers(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)

	page, err = svc.ListUsers(ctx, -3, 5000)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 0, page.TotalPages)
}

func TestService_UpdateUser(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserInput{Email: "alice@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	updated, err := svc.UpdateUser(ctx, created.ID, UpdateUserInput{
		Email:     ptr("New@Example.com"),
		FirstName: ptr("Alice"),
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
	require.NotNil(t, updated.FirstName)
	assert.Equal(t, "Alice", *updated.FirstName)
}

func TestService_UpdateUser_EmailConflict(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserInput{Email: "alice@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)
	bob, err := svc.CreateUser(ctx, CreateUserInput{Email: "bob@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	_, err = svc.UpdateUser(ctx, bob.ID, UpdateUserInput{Email: ptr("alice@example.com")})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// keeping your own email is not a conflict
	updated, err := svc.UpdateUser(ctx, bob.ID, UpdateUserInput{Email: ptr("BOB@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", updated.Email)
}

func TestService_UpdateUser_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateUser(context.Background(), uuid.New(), UpdateUserInput{FirstName: ptr("Ghost")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_DeleteUser(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserInput{Email: "alice@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, created.ID))

	_, err = svc.GetUserByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.DeleteUser(ctx, created.ID), ErrNotFound)
}
