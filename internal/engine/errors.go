package engine

import "errors"

var (
	// ErrStaleDelivery is returned when a result targets a node that no longer exists
	ErrStaleDelivery = errors.New("delivery target no longer exists")

	// ErrInvalidDelivery is returned when a result is delivered to a node kind
	// that does not publish, or with the wrong payload for its kind
	ErrInvalidDelivery = errors.New("node kind does not accept this delivery")
)
