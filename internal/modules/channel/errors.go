package channel

import "errors"

var (
	ErrChannelNotFound  = errors.New("channel does not exist")
	ErrSelfSubscription = errors.New("cannot subscribe to own channel")
)
