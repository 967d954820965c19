package accountevents

import "time"

// Topics published when a Discord user links or unlinks an osu! account.
const (
	AccountLinkedV1   = "osu.account.linked.v1"
	AccountUnlinkedV1 = "osu.account.unlinked.v1"
)

// AccountLinkedPayloadV1 is published after a link is stored.
type AccountLinkedPayloadV1 struct {
	DiscordUserID string `json:"discord_user_id"`
	OsuUsername   string `json:"osu_username"`
	// PreviousUsername is set when the link replaced an older one.
	PreviousUsername string    `json:"previous_username,omitempty"`
	ChannelID        string    `json:"channel_id"`
	LinkedAt         time.Time `json:"linked_at"`
}

// AccountUnlinkedPayloadV1 is published after a link is removed.
type AccountUnlinkedPayloadV1 struct {
	DiscordUserID string    `json:"discord_user_id"`
	OsuUsername   string    `json:"osu_username"`
	ChannelID     string    `json:"channel_id"`
	UnlinkedAt    time.Time `json:"unlinked_at"`
}
