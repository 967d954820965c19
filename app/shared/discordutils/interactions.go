package discordutils

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const customIDSeparator = "|"

// CustomID joins an action and a target into a component custom ID such as
// "topplays_next|<session id>".
func CustomID(action, target string) string {
	return action + customIDSeparator + target
}

// ParseCustomID splits a custom ID built by CustomID.
func ParseCustomID(customID string) (action, target string, err error) {
	action, target, ok := strings.Cut(customID, customIDSeparator)
	if !ok || action == "" || target == "" {
		return "", "", fmt.Errorf("invalid CustomID format: %s", customID)
	}
	return action, target, nil
}

// InteractionUser returns whoever pressed a component, in a guild or a DM.
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i == nil || i.Interaction == nil {
		return nil
	}
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}
