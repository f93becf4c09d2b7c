package relay

import "errors"

var (
	ErrConnectFailed = errors.New("failed to connect to sink")
	ErrPingFailed    = errors.New("failed to ping sink")
)
