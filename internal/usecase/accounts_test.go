package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpendScout/internal/domain"
)

type memoryUserRepo struct {
	nextID int64
	users  map[string]domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[string]domain.User{}}
}

func (r *memoryUserRepo) CreateUser(_ context.Context, user domain.User) (int64, error) {
	r.nextID++
	user.ID = r.nextID
	r.users[user.Email] = user
	return user.ID, nil
}

func (r *memoryUserRepo) UserByID(_ context.Context, id int64) (domain.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (r *memoryUserRepo) UserByEmail(_ context.Context, email string) (domain.User, error) {
	user, ok := r.users[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (r *memoryUserRepo) UpdateUser(_ context.Context, user domain.User) error {
	r.users[user.Email] = user
	return nil
}

func TestAccountRegisterAndLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewAccountService(newMemoryUserRepo(), nil)

	registered, err := svc.Register(ctx, "Ada", "ada@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), registered.ID)
	assert.NotEqual(t, "hunter2", string(registered.PasswordHash))

	logged, err := svc.Login(ctx, "ada@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, logged.ID)
	assert.Equal(t, "Ada", logged.Name)
}

func TestAccountRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewAccountService(newMemoryUserRepo(), nil)

	_, err := svc.Register(ctx, "Ada", "ada@example.com", "hunter2")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Eve", "ada@example.com", "other")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestAccountLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewAccountService(newMemoryUserRepo(), nil)

	_, err := svc.Register(ctx, "Ada", "ada@example.com", "hunter2")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "hunter2")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
