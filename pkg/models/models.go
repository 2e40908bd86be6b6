package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// CreatedAtLayout is the timestamp format X uses in legacy tweet payloads,
// e.g. "Sun Nov 09 11:05:17 +0000 2025".
const CreatedAtLayout = "Mon Jan 02 15:04:05 -0700 2006"

// User is the author of a tweet, embedded by value in each Tweet.
type User struct {
	ID              string `json:"id"`
	ScreenName      string `json:"screen_name"`
	Name            string `json:"name"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	Verified        bool   `json:"verified"`
	FollowersCount  int    `json:"followers_count"`
	FollowingCount  int    `json:"following_count"`
}

// Media is one attachment of a tweet. LocalPath is filled in by the media
// downloader after the fetch completes; the fetch engine never touches it.
type Media struct {
	Type            string `json:"type"` // photo, video, animated_gif
	URL             string `json:"url"`
	MediaURL        string `json:"media_url,omitempty"`
	PreviewImageURL string `json:"preview_image_url,omitempty"`
	Width           int    `json:"width,omitempty"`
	Height          int    `json:"height,omitempty"`
	LocalPath       string `json:"local_path,omitempty"`
}

// Tweet is one exported liked post. Values are immutable once handed to the
// formatters, except for Media.LocalPath.
type Tweet struct {
	ID              string   `json:"id"`
	Text            string   `json:"text"`
	CreatedAt       string   `json:"created_at"`
	User            User     `json:"user"`
	RetweetCount    int      `json:"retweet_count"`
	FavoriteCount   int      `json:"favorite_count"`
	ReplyCount      int      `json:"reply_count"`
	QuoteCount      int      `json:"quote_count"`
	ViewCount       int      `json:"view_count"`
	Lang            string   `json:"lang"`
	IsRetweet       bool     `json:"is_retweet"`
	IsQuote         bool     `json:"is_quote"`
	Media           []Media  `json:"media"`
	URLs            []string `json:"urls"`
	Hashtags        []string `json:"hashtags"`
	Mentions        []string `json:"mentions"`
	ConversationID  string   `json:"conversation_id,omitempty"`
	InReplyToUserID string   `json:"in_reply_to_user_id,omitempty"`

	// Raw is the unmodified API payload for this tweet, carried so exports
	// can include it on request.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// URL returns the canonical link to the tweet.
func (t *Tweet) URL() string {
	return fmt.Sprintf("https://x.com/%s/status/%s", t.User.ScreenName, t.ID)
}

// CreatedTime parses the source-format created_at timestamp.
func (t *Tweet) CreatedTime() (time.Time, error) {
	return time.Parse(CreatedAtLayout, t.CreatedAt)
}
