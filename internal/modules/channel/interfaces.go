package channel

import (
	"context"

	"cliptube/internal/domain"
)

// UserReader reads users; the channel module never writes them.
type UserReader interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// SubscriptionRepositoryInterface covers subscription rows and the aggregate
// counts shown on a channel profile
type SubscriptionRepositoryInterface interface {
	Create(ctx context.Context, subscriberID, channelID int64) error
	Delete(ctx context.Context, subscriberID, channelID int64) error
	CountSubscribers(ctx context.Context, channelID int64) (int64, error)
	CountSubscribedTo(ctx context.Context, subscriberID int64) (int64, error)
	Exists(ctx context.Context, subscriberID, channelID int64) (bool, error)
}
