package broadcaster

import "errors"

var (
	// ErrConnectionNotAlive marks a connection that failed the liveness
	// check before the send was attempted.
	ErrConnectionNotAlive = errors.New("connection is not alive")
	// ErrUnknownConnection marks a send targeted at a connection id that
	// is not in the live set.
	ErrUnknownConnection = errors.New("unknown connection id")
)
