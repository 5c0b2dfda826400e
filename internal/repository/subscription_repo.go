package repository

import (
	"context"
	"errors"

	"cliptube/internal/domain"

	"gorm.io/gorm"
)

// SubscriptionRepository provides DB access for channel subscriptions.
type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Create is idempotent: an existing (subscriber, channel) pair is left as is.
func (r *SubscriptionRepository) Create(ctx context.Context, subscriberID, channelID int64) error {
	err := r.db.WithContext(ctx).Create(&domain.Subscription{
		SubscriberID: subscriberID,
		ChannelID:    channelID,
	}).Error
	if err != nil && isUniqueViolation(err) {
		return nil
	}
	return err
}

func (r *SubscriptionRepository) Delete(ctx context.Context, subscriberID, channelID int64) error {
	return r.db.WithContext(ctx).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Delete(&domain.Subscription{}).Error
}

// CountSubscribers returns how many users follow the channel.
func (r *SubscriptionRepository) CountSubscribers(ctx context.Context, channelID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Subscription{}).
		Where("channel_id = ?", channelID).
		Count(&count).Error
	return count, err
}

// CountSubscribedTo returns how many channels the user follows.
func (r *SubscriptionRepository) CountSubscribedTo(ctx context.Context, subscriberID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Subscription{}).
		Where("subscriber_id = ?", subscriberID).
		Count(&count).Error
	return count, err
}

func (r *SubscriptionRepository) Exists(ctx context.Context, subscriberID, channelID int64) (bool, error) {
	var sub domain.Subscription
	err := r.db.WithContext(ctx).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
