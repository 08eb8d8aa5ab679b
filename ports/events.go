package ports

import "context"

// EventPublisher publishes auth lifecycle events to notify other instances
type EventPublisher interface {
	PublishLogin(ctx context.Context, address string, sessionID string) error
	PublishLogout(ctx context.Context, address string, sessionID string) error
}
