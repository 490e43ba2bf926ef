package role

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/grammar-gang/grammar-bot/app/models"
	"github.com/grammar-gang/grammar-bot/app/shared"
)

// ServiceImpl handles the reaction-role command surface.
type ServiceImpl struct {
	repo    Repository
	gateway shared.DiscordGateway
	logger  *slog.Logger
}

var _ Service = (*ServiceImpl)(nil)

// NewService creates a role service.
func NewService(repo Repository, gateway shared.DiscordGateway, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{repo: repo, gateway: gateway, logger: logger}
}

// AddUserRole registers a role as self-assignable. Both sides of the binding
// are unique: an emote may trigger only one role and a role may be bound to
// only one emote. The role side is checked here because the store only keys
// on the emote.
func (s *ServiceImpl) AddUserRole(ctx context.Context, guildID models.GuildID, ur models.UserRole) (*models.UserRole, error) {
	partition := models.PartitionFor(guildID)

	existing, err := s.repo.ListBindings(ctx, partition)
	if err != nil {
		return nil, err
	}
	for _, b := range existing {
		if b.Emote.Equals(ur.Emote) || b.GuildRole.ID == ur.GuildRole.ID {
			return nil, models.ErrAlreadyExists
		}
	}

	if err := s.repo.AddBinding(ctx, partition, ur); err != nil {
		return nil, err
	}

	s.logger.Info("role binding added",
		"partition", partition,
		"role", ur.GuildRole.Name,
		"emote", ur.Emote.Key(),
	)
	return &ur, nil
}

// RemoveUserRole deletes the binding for a guild role.
func (s *ServiceImpl) RemoveUserRole(ctx context.Context, guildID models.GuildID, roleID models.RoleID) (*models.UserRole, error) {
	partition := models.PartitionFor(guildID)

	bindings, err := s.repo.ListBindings(ctx, partition)
	if err != nil {
		return nil, err
	}
	for _, b := range bindings {
		if b.GuildRole.ID == roleID {
			removed, err := s.repo.DeleteBinding(ctx, partition, b.Emote.Key())
			if err != nil {
				return nil, err
			}
			s.logger.Info("role binding removed", "partition", partition, "role", removed.GuildRole.Name)
			return removed, nil
		}
	}
	return nil, models.ErrNotFound
}

// ListUserRoles returns all bindings, possibly none.
func (s *ServiceImpl) ListUserRoles(ctx context.Context, guildID models.GuildID) ([]models.UserRole, error) {
	return s.repo.ListBindings(ctx, models.PartitionFor(guildID))
}

// ResetUserRoles drops every binding, mostly to clear out bindings whose
// roles were deleted from the guild.
func (s *ServiceImpl) ResetUserRoles(ctx context.Context, guildID models.GuildID) ([]models.UserRole, error) {
	partition := models.PartitionFor(guildID)
	removed, err := s.repo.DeleteAllBindings(ctx, partition)
	if err != nil {
		return nil, err
	}
	s.logger.Info("role bindings reset", "partition", partition, "removed", len(removed))
	return removed, nil
}

// SetRoleMessageText creates or overwrites the role message text. An already
// posted message keeps its posting and active state; only the text and the
// setter change.
func (s *ServiceImpl) SetRoleMessageText(ctx context.Context, guildID models.GuildID, text string, setBy models.UserRef) error {
	partition := models.PartitionFor(guildID)

	cur, err := s.repo.GetRoleMessage(ctx, partition)
	if err != nil {
		return err
	}

	rm := models.RoleMessage{Text: text, SetBy: setBy}
	if cur != nil {
		rm.Posted = cur.Posted
		rm.Active = cur.Active
		rm.PostedBy = cur.PostedBy
	}

	if err := s.repo.SaveRoleMessage(ctx, partition, rm); err != nil {
		return err
	}

	s.logger.Info("role message text set", "partition", partition, "set_by", setBy.ID)
	return nil
}

// GetRoleMessage returns the current role message, or nil when unset.
func (s *ServiceImpl) GetRoleMessage(ctx context.Context, guildID models.GuildID) (*models.RoleMessage, error) {
	return s.repo.GetRoleMessage(ctx, models.PartitionFor(guildID))
}

// PostRoleMessage renders the role message with the bound roles into a
// channel, seeds one reaction per binding and activates reaction-role
// handling for the posted message.
func (s *ServiceImpl) PostRoleMessage(ctx context.Context, guildID models.GuildID, channelID models.ChannelID, postedBy models.UserRef) (*models.MessageRef, error) {
	partition := models.PartitionFor(guildID)

	cur, err := s.repo.GetRoleMessage(ctx, partition)
	if err != nil {
		return nil, err
	}
	bindings, err := s.repo.ListBindings(ctx, partition)
	if err != nil {
		return nil, err
	}
	if cur == nil || len(bindings) == 0 {
		return nil, fmt.Errorf("%w: role message and at least one binding are required", models.ErrNotFound)
	}

	ref, err := s.gateway.SendChannelMessage(ctx, channelID, renderRoleMessage(cur.Text, bindings))
	if err != nil {
		return nil, err
	}

	for _, b := range bindings {
		if err := s.gateway.React(ctx, ref.ChannelID, ref.ID, b.Emote); err != nil {
			// A missing seed reaction degrades the UX but does not
			// invalidate the posted message.
			s.logger.Warn("failed to seed reaction",
				"partition", partition,
				"emote", b.Emote.Key(),
				"error", err,
			)
		}
	}

	cur.Posted = ref
	cur.Active = true
	cur.PostedBy = &postedBy
	if err := s.repo.SaveRoleMessage(ctx, partition, *cur); err != nil {
		return nil, err
	}

	s.logger.Info("role message posted",
		"partition", partition,
		"channel", channelID,
		"message", ref.ID,
	)
	return ref, nil
}

// SetRoleMessageActive toggles role granting for an already posted message.
func (s *ServiceImpl) SetRoleMessageActive(ctx context.Context, guildID models.GuildID, active bool, by models.UserRef) error {
	partition := models.PartitionFor(guildID)

	cur, err := s.repo.GetRoleMessage(ctx, partition)
	if err != nil {
		return err
	}
	if cur == nil || !cur.IsPosted() {
		return fmt.Errorf("%w: role message must be posted before toggling", models.ErrNotFound)
	}

	cur.Active = active
	cur.PostedBy = &by
	if err := s.repo.SaveRoleMessage(ctx, partition, *cur); err != nil {
		return err
	}

	s.logger.Info("role message active state changed", "partition", partition, "active", active)
	return nil
}

// renderRoleMessage builds the channel message body: the operator's text
// followed by one line per assignable role.
func renderRoleMessage(text string, bindings []models.UserRole) string {
	var sb strings.Builder
	sb.WriteString("# Reaction roles\n")
	sb.WriteString(text)
	sb.WriteString("\n## Available roles\n")
	for _, b := range bindings {
		fmt.Fprintf(&sb, "%s %s: %s\n", b.Emote, b.GuildRole.Name, b.Description)
	}
	return sb.String()
}
