package domain

import "time"

// PendingPostTTL is how long a cached post stays usable after creation.
const PendingPostTTL = 24 * time.Hour

// LaunchPayload is the set of launch fields carried by a social post.
type LaunchPayload struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Wallet      string `json:"wallet"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Website     string `json:"website,omitempty"`
	Twitter     string `json:"twitter,omitempty"`
	Telegram    string `json:"telegram,omitempty"`
}

// PendingPost caches a post the service published on the agent's behalf,
// so launching from it needs no re-fetch.
type PendingPost struct {
	PostID    string        `json:"postId"`
	PostURL   string        `json:"postUrl,omitempty"`
	AgentName string        `json:"agentName,omitempty"`
	Payload   LaunchPayload `json:"payload"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Expired reports whether the entry is older than PendingPostTTL at now.
func (p *PendingPost) Expired(now time.Time) bool {
	return now.Sub(p.CreatedAt) > PendingPostTTL
}
