package topplays

import (
	"context"
	"errors"
	"fmt"

	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
	"github.com/Black-And-White-Club/discord-osu-bot/app/paginator"
	"github.com/Black-And-White-Club/discord-osu-bot/app/shared/discordutils"
	"github.com/bwmarrin/discordgo"
)

// HandleNavigation moves a session one page in response to a ◀️/▶️ press.
func (tm *topPlaysManager) HandleNavigation(ctx context.Context, i *discordgo.InteractionCreate) (TopPlaysOperationResult, error) {
	customID := i.MessageComponentData().CustomID
	tm.logger.InfoContext(ctx, "Handling top plays navigation",
		attr.String("interaction_id", i.ID),
		attr.String("custom_id", customID),
	)

	return tm.operationWrapper(ctx, "handle_topplays_navigation", func(ctx context.Context) (TopPlaysOperationResult, error) {
		action, sessionID, err := discordutils.ParseCustomID(customID)
		if err != nil {
			tm.logger.ErrorContext(ctx, err.Error())
			return TopPlaysOperationResult{Error: err}, nil
		}

		sess, err := tm.sessions.Get(ctx, sessionID)
		if err != nil {
			// The menu outlived its session; acknowledge so the client stops waiting.
			if err := tm.acknowledge(i); err != nil {
				return TopPlaysOperationResult{Error: err}, nil
			}
			return TopPlaysOperationResult{Failure: "session expired"}, nil
		}

		user := discordutils.InteractionUser(i)
		if user == nil || user.ID != sess.pager.OwnerID {
			err := tm.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseChannelMessageWithSource,
				Data: &discordgo.InteractionResponseData{
					Content: replyNotOwner,
					Flags:   discordgo.MessageFlagsEphemeral,
				},
			})
			if err != nil {
				return TopPlaysOperationResult{Error: fmt.Errorf("failed to reject foreign navigation: %w", err)}, nil
			}
			return TopPlaysOperationResult{Failure: "not session owner"}, nil
		}

		// Rendering can take up to the star-rating bound, past Discord's 3s reply window.
		if err := tm.acknowledge(i); err != nil {
			return TopPlaysOperationResult{Error: err}, nil
		}

		var (
			page  int
			moved bool
		)
		switch action {
		case ActionPrev:
			page, moved, err = sess.pager.Prev()
		case ActionNext:
			page, moved, err = sess.pager.Next()
		default:
			return TopPlaysOperationResult{Error: fmt.Errorf("unknown navigation action %q", action)}, nil
		}
		if errors.Is(err, paginator.ErrSessionExpired) {
			return TopPlaysOperationResult{Failure: "session expired"}, nil
		}
		if err != nil {
			return TopPlaysOperationResult{Error: err}, nil
		}
		if !moved {
			return TopPlaysOperationResult{Success: "unchanged"}, nil
		}
		// The page change restarted the idle timer; the stored entry has to outlive it again.
		if err := tm.sessions.Set(ctx, sess.pager.ID, sess); err != nil {
			tm.logger.WarnContext(ctx, "Failed to refresh top plays session", attr.SessionID(sessionID), attr.Error(err))
		}

		embed := tm.renderEmbed(ctx, sess, page)
		embeds := []*discordgo.MessageEmbed{embed}
		components := []discordgo.MessageComponent{NavButtons(sess.pager.ID, sess.pager.HasPrev(), sess.pager.HasNext())}
		if _, err := tm.session.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
			Embeds:     &embeds,
			Components: &components,
		}); err != nil {
			err = fmt.Errorf("failed to update top plays page: %w", err)
			tm.logger.ErrorContext(ctx, err.Error(), attr.SessionID(sessionID))
			return TopPlaysOperationResult{Error: err}, nil
		}

		return TopPlaysOperationResult{Success: page}, nil
	})
}

func (tm *topPlaysManager) acknowledge(i *discordgo.InteractionCreate) error {
	err := tm.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		return fmt.Errorf("failed to acknowledge navigation: %w", err)
	}
	return nil
}
