package channel

// ChannelProfileResponse is the aggregated public view of a user's channel.
// IsSubscribed is only meaningful when the viewer is authenticated.
type ChannelProfileResponse struct {
	ID                int64  `json:"id"`
	Username          string `json:"username"`
	FullName          string `json:"full_name"`
	AvatarURL         string `json:"avatar_url"`
	CoverImageURL     string `json:"cover_image_url,omitempty"`
	SubscriberCount   int64  `json:"subscriber_count"`
	SubscribedToCount int64  `json:"subscribed_to_count"`
	IsSubscribed      bool   `json:"is_subscribed"`
}
