package discord

import "errors"

var (
	errTokenRequired    = errors.New("discord: bot token required")
	errResolverRequired = errors.New("discord: resolver required")
)
