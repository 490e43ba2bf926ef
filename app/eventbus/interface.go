package eventbus

import "github.com/ThreeDotsLabs/watermill/message"

// Topics carrying reaction gateway events from the Discord adapter to the
// reconciler.
const (
	TopicReactionAdded   = "discord.reaction.added"
	TopicReactionRemoved = "discord.reaction.removed"
)

// EventBus is the transport between the gateway adapter and the event
// handlers. The gochannel backend keeps everything in process; the NATS
// backend lets handlers run in a separate deployment.
type EventBus interface {
	message.Publisher
	message.Subscriber
}
