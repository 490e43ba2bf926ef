package discord

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bwmarrin/discordgo"

	"github.com/grammar-gang/grammar-bot/app/models"
	"github.com/grammar-gang/grammar-bot/app/modules/points"
	"github.com/grammar-gang/grammar-bot/app/modules/role"
	"github.com/grammar-gang/grammar-bot/app/modules/tag"
	"github.com/grammar-gang/grammar-bot/config"
)

// Bot owns the discordgo session: it publishes reaction events to the bus,
// registers the slash-command surface and dispatches interactions to the
// services.
type Bot struct {
	session   *discordgo.Session
	gateway   *Gateway
	publisher message.Publisher
	logger    *slog.Logger

	tags   tag.Service
	roles  role.Service
	points points.Service

	guildID    string
	registered []*discordgo.ApplicationCommand
}

// New creates the bot and its gateway adapter. The services the command
// handlers call are bound afterwards with BindServices, since some of them
// depend on the gateway this constructor creates. The session stays closed
// until Open.
func New(cfg config.DiscordConfig, publisher message.Publisher, logger *slog.Logger) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildEmojis

	b := &Bot{
		session:   s,
		gateway:   NewGateway(s),
		publisher: publisher,
		logger:    logger,
		guildID:   cfg.GuildID,
	}

	s.AddHandler(b.onReactionAdd)
	s.AddHandler(b.onReactionRemove)
	s.AddHandler(b.onInteraction)

	return b, nil
}

// BindServices attaches the command-facing services. Must happen before Open.
func (b *Bot) BindServices(tags tag.Service, roles role.Service, pts points.Service) {
	b.tags = tags
	b.roles = roles
	b.points = pts
}

// Gateway returns the adapter the core services call back into.
func (b *Bot) Gateway() *Gateway {
	return b.gateway
}

// Open connects to the gateway and registers the slash commands.
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	b.gateway.setSelfID(models.UserID(b.session.State.User.ID))
	b.logger.Info("connected to Discord",
		"user", b.session.State.User.Username,
		"self_id", b.session.State.User.ID,
	)

	for _, cmd := range commandDefinitions() {
		created, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.guildID, cmd)
		if err != nil {
			return fmt.Errorf("failed to register command %q: %w", cmd.Name, err)
		}
		b.registered = append(b.registered, created)
	}
	b.logger.Info("slash commands registered", "count", len(b.registered))

	return nil
}

// Close disconnects from the gateway.
func (b *Bot) Close() error {
	return b.session.Close()
}
