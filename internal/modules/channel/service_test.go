package channel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cliptube/internal/domain"
)

type mockUserReader struct {
	mock.Mock
}

func (m *mockUserReader) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockSubscriptionRepo struct {
	mock.Mock
}

func (m *mockSubscriptionRepo) Create(ctx context.Context, subscriberID, channelID int64) error {
	args := m.Called(ctx, subscriberID, channelID)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) Delete(ctx context.Context, subscriberID, channelID int64) error {
	args := m.Called(ctx, subscriberID, channelID)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) CountSubscribers(ctx context.Context, channelID int64) (int64, error) {
	args := m.Called(ctx, channelID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSubscriptionRepo) CountSubscribedTo(ctx context.Context, subscriberID int64) (int64, error) {
	args := m.Called(ctx, subscriberID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSubscriptionRepo) Exists(ctx context.Context, subscriberID, channelID int64) (bool, error) {
	args := m.Called(ctx, subscriberID, channelID)
	return args.Bool(0), args.Error(1)
}

func TestService_Profile_Aggregation(t *testing.T) {
	users := new(mockUserReader)
	subs := new(mockSubscriptionRepo)

	users.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{ID: 1, Username: "alice", FullName: "Alice Doe"}, nil)
	subs.On("CountSubscribers", mock.Anything, int64(1)).Return(int64(12), nil)
	subs.On("CountSubscribedTo", mock.Anything, int64(1)).Return(int64(3), nil)
	subs.On("Exists", mock.Anything, int64(7), int64(1)).Return(true, nil)

	service := NewService(users, subs)

	profile, err := service.Profile(context.Background(), "alice", 7)
	require.NoError(t, err)
	assert.Equal(t, int64(12), profile.SubscriberCount)
	assert.Equal(t, int64(3), profile.SubscribedToCount)
	assert.True(t, profile.IsSubscribed)

	subs.AssertExpectations(t)
}

func TestService_Profile_AnonymousViewer(t *testing.T) {
	users := new(mockUserReader)
	subs := new(mockSubscriptionRepo)

	users.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{ID: 1, Username: "alice"}, nil)
	subs.On("CountSubscribers", mock.Anything, int64(1)).Return(int64(0), nil)
	subs.On("CountSubscribedTo", mock.Anything, int64(1)).Return(int64(0), nil)

	service := NewService(users, subs)

	profile, err := service.Profile(context.Background(), "alice", 0)
	require.NoError(t, err)
	assert.False(t, profile.IsSubscribed)
	subs.AssertNotCalled(t, "Exists")
}

func TestService_Profile_UnknownChannel(t *testing.T) {
	users := new(mockUserReader)
	users.On("GetByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	service := NewService(users, new(mockSubscriptionRepo))

	_, err := service.Profile(context.Background(), "ghost", 0)
	assert.ErrorIs(t, err, ErrChannelNotFound)
}

func TestService_Subscribe(t *testing.T) {
	users := new(mockUserReader)
	subs := new(mockSubscriptionRepo)

	users.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{ID: 1, Username: "alice"}, nil)
	subs.On("Create", mock.Anything, int64(7), int64(1)).Return(nil)

	service := NewService(users, subs)

	require.NoError(t, service.Subscribe(context.Background(), 7, "alice"))
	subs.AssertExpectations(t)
}

func TestService_Subscribe_Self(t *testing.T) {
	users := new(mockUserReader)
	subs := new(mockSubscriptionRepo)

	users.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{ID: 7, Username: "alice"}, nil)

	service := NewService(users, subs)

	err := service.Subscribe(context.Background(), 7, "alice")
	assert.ErrorIs(t, err, ErrSelfSubscription)
	subs.AssertNotCalled(t, "Create")
}

func TestService_Unsubscribe(t *testing.T) {
	users := new(mockUserReader)
	subs := new(mockSubscriptionRepo)

	users.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{ID: 1, Username: "alice"}, nil)
	subs.On("Delete", mock.Anything, int64(7), int64(1)).Return(nil)

	service := NewService(users, subs)

	require.NoError(t, service.Unsubscribe(context.Background(), 7, "alice"))
	subs.AssertExpectations(t)
}
