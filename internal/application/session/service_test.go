package session

import (
	"context"
	"errors"
	"testing"

	"github.com/go-matchmaker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- Context ---

func TestContext_Lifecycle(t *testing.T) {
	sc := New("")
	_, err := sc.CurrentUser()
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
	assert.False(t, sc.Changed())

	sc.Establish("u1")
	id, err := sc.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
	assert.True(t, sc.Changed())

	sc.Teardown()
	_, err = sc.CurrentUser()
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
}

func TestContext_RestoredIsUnchanged(t *testing.T) {
	sc := New("u1")
	id, err := sc.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
	assert.False(t, sc.Changed())
}

func TestContext_NilIsUnauthenticated(t *testing.T) {
	var sc *Context
	_, err := sc.CurrentUser()
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
}

func TestFromContext(t *testing.T) {
	sc := New("u1")
	ctx := WithContext(context.Background(), sc)
	assert.Same(t, sc, FromContext(ctx))

	fresh := FromContext(context.Background())
	_, err := fresh.CurrentUser()
	assert.Error(t, err)
}

// --- Service ---

func TestCurrent_Unauthenticated(t *testing.T) {
	us := &mockUserStore{}
	svc := NewService(us)

	_, err := svc.Current(context.Background(), New(""))
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
	us.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestCurrent_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Name: "Ann"}, nil)

	u, err := NewService(us).Current(context.Background(), New("u1"))
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
	us.AssertExpectations(t)
}

func TestCurrent_StaleBindingIsTornDown(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "gone").Return(nil, domain.ErrNotFound)

	sc := New("gone")
	_, err := NewService(us).Current(context.Background(), sc)
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
	assert.True(t, sc.Changed())
	_, err = sc.CurrentUser()
	assert.Error(t, err)
}

func TestCurrent_StoreErrorPropagates(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(nil, errors.New("boom"))

	sc := New("u1")
	_, err := NewService(us).Current(context.Background(), sc)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrUnauthenticated))
	assert.False(t, sc.Changed())
}

func TestLogout(t *testing.T) {
	sc := New("u1")
	NewService(&mockUserStore{}).Logout(context.Background(), sc)
	assert.True(t, sc.Changed())
	_, err := sc.CurrentUser()
	assert.Error(t, err)
}
