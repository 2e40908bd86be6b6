package twitter

import "encoding/json"

// Wire types for the Likes GraphQL response. The timeline format nests tweets
// several levels deep; only the fields the exporter consumes are declared.

type likesResponse struct {
	Data struct {
		User struct {
			Result struct {
				Timeline struct {
					Timeline struct {
						Instructions []instruction `json:"instructions"`
					} `json:"timeline"`
				} `json:"timeline"`
			} `json:"result"`
		} `json:"user"`
	} `json:"data"`
}

type instruction struct {
	Type    string  `json:"type"`
	Entries []entry `json:"entries"`
}

type entry struct {
	EntryID string       `json:"entryId"`
	Content entryContent `json:"content"`
}

type entryContent struct {
	EntryType   string `json:"entryType"`
	CursorType  string `json:"cursorType"`
	Value       string `json:"value"`
	ItemContent struct {
		TweetResults struct {
			Result json.RawMessage `json:"result"`
		} `json:"tweet_results"`
	} `json:"itemContent"`
}

type tweetResult struct {
	RestID string       `json:"rest_id"`
	Legacy *tweetLegacy `json:"legacy"`
	Core   struct {
		UserResults struct {
			Result userResult `json:"result"`
		} `json:"user_results"`
	} `json:"core"`
	Views struct {
		Count string `json:"count"`
	} `json:"views"`
	QuotedStatusResult json.RawMessage `json:"quoted_status_result"`
}

type tweetLegacy struct {
	IDStr              string          `json:"id_str"`
	FullText           string          `json:"full_text"`
	CreatedAt          string          `json:"created_at"`
	RetweetCount       int             `json:"retweet_count"`
	FavoriteCount      int             `json:"favorite_count"`
	ReplyCount         int             `json:"reply_count"`
	QuoteCount         int             `json:"quote_count"`
	Lang               string          `json:"lang"`
	ConversationIDStr  string          `json:"conversation_id_str"`
	InReplyToUserIDStr string          `json:"in_reply_to_user_id_str"`
	Entities           tweetEntities   `json:"entities"`
	ExtendedEntities   struct {
		Media []mediaItem `json:"media"`
	} `json:"extended_entities"`
	RetweetedStatusResult json.RawMessage `json:"retweeted_status_result"`
}

type tweetEntities struct {
	URLs []struct {
		ExpandedURL string `json:"expanded_url"`
	} `json:"urls"`
	Hashtags []struct {
		Text string `json:"text"`
	} `json:"hashtags"`
	UserMentions []struct {
		ScreenName string `json:"screen_name"`
	} `json:"user_mentions"`
}

type mediaItem struct {
	Type          string `json:"type"`
	URL           string `json:"url"`
	MediaURLHTTPS string `json:"media_url_https"`
	OriginalInfo  struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"original_info"`
	VideoInfo *videoInfo `json:"video_info"`
}

type videoInfo struct {
	Variants []videoVariant `json:"variants"`
}

type videoVariant struct {
	Bitrate     int    `json:"bitrate"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

type userResult struct {
	RestID string `json:"rest_id"`
	Legacy struct {
		ScreenName           string `json:"screen_name"`
		Name                 string `json:"name"`
		ProfileImageURLHTTPS string `json:"profile_image_url_https"`
		Verified             bool   `json:"verified"`
		FollowersCount       int    `json:"followers_count"`
		FriendsCount         int    `json:"friends_count"`
	} `json:"legacy"`
}
