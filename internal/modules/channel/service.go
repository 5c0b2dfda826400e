package channel

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Service aggregates channel profiles and manages subscriptions.
type Service struct {
	users UserReader
	subs  SubscriptionRepositoryInterface
}

func NewService(users UserReader, subs SubscriptionRepositoryInterface) *Service {
	return &Service{users: users, subs: subs}
}

// Profile builds the channel view for the given username. viewerID is 0 for
// anonymous requests, which leaves IsSubscribed false.
func (s *Service) Profile(ctx context.Context, username string, viewerID int64) (*ChannelProfileResponse, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}

	subscribers, err := s.subs.CountSubscribers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	subscribedTo, err := s.subs.CountSubscribedTo(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	isSubscribed := false
	if viewerID != 0 && viewerID != user.ID {
		isSubscribed, err = s.subs.Exists(ctx, viewerID, user.ID)
		if err != nil {
			return nil, err
		}
	}

	return &ChannelProfileResponse{
		ID:                user.ID,
		Username:          user.Username,
		FullName:          user.FullName,
		AvatarURL:         user.AvatarURL,
		CoverImageURL:     user.CoverImageURL,
		SubscriberCount:   subscribers,
		SubscribedToCount: subscribedTo,
		IsSubscribed:      isSubscribed,
	}, nil
}

// Subscribe is idempotent; subscribing twice is a no-op.
func (s *Service) Subscribe(ctx context.Context, subscriberID int64, channelUsername string) error {
	channel, err := s.users.GetByUsername(ctx, channelUsername)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChannelNotFound
		}
		return err
	}

	if channel.ID == subscriberID {
		return ErrSelfSubscription
	}

	return s.subs.Create(ctx, subscriberID, channel.ID)
}

// Unsubscribe is idempotent; removing a missing subscription is a no-op.
func (s *Service) Unsubscribe(ctx context.Context, subscriberID int64, channelUsername string) error {
	channel, err := s.users.GetByUsername(ctx, channelUsername)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChannelNotFound
		}
		return err
	}

	return s.subs.Delete(ctx, subscriberID, channel.ID)
}
