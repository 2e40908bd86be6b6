package twitter

import (
	"encoding/json"
	"strconv"

	"github.com/norandom/x-likes-scraper/pkg/logger"
	"github.com/norandom/x-likes-scraper/pkg/models"
)

// timeline entry and cursor type discriminators
const (
	instructionAddEntries = "TimelineAddEntries"
	entryTypeItem         = "TimelineTimelineItem"
	entryTypeCursor       = "TimelineTimelineCursor"
	cursorTypeBottom      = "Bottom"
)

// extractTweets pulls tweets out of the timeline instructions. Entries that
// fail to parse are logged and skipped; one malformed tweet never fails the
// page.
func extractTweets(resp *likesResponse, log logger.Logger) []models.Tweet {
	var tweets []models.Tweet

	for _, inst := range resp.Data.User.Result.Timeline.Timeline.Instructions {
		if inst.Type != instructionAddEntries {
			continue
		}
		for _, e := range inst.Entries {
			if e.Content.EntryType != entryTypeItem {
				continue
			}
			raw := e.Content.ItemContent.TweetResults.Result
			if len(raw) == 0 {
				continue
			}
			var result tweetResult
			if err := json.Unmarshal(raw, &result); err != nil {
				log.WithField("entry_id", e.EntryID).WithError(err).Warn("skipping unparseable tweet entry")
				continue
			}
			if result.Legacy == nil {
				// Tombstoned or withheld tweets have no legacy payload
				continue
			}
			tweet, ok := parseTweet(&result)
			if !ok {
				log.WithField("entry_id", e.EntryID).Warn("skipping unparseable tweet entry")
				continue
			}
			tweet.Raw = raw
			tweets = append(tweets, tweet)
		}
	}

	return tweets
}

// extractCursor finds the Bottom cursor. A missing Bottom cursor means the
// timeline is exhausted.
func extractCursor(resp *likesResponse) models.Cursor {
	for _, inst := range resp.Data.User.Result.Timeline.Timeline.Instructions {
		if inst.Type != instructionAddEntries {
			continue
		}
		for _, e := range inst.Entries {
			if e.Content.EntryType == entryTypeCursor && e.Content.CursorType == cursorTypeBottom {
				return models.NextCursor(e.Content.Value)
			}
		}
	}
	return models.EndCursor()
}

func parseTweet(result *tweetResult) (models.Tweet, bool) {
	legacy := result.Legacy

	id := result.RestID
	if id == "" {
		id = legacy.IDStr
	}
	if id == "" {
		return models.Tweet{}, false
	}

	userLegacy := result.Core.UserResults.Result.Legacy
	user := models.User{
		ID:              result.Core.UserResults.Result.RestID,
		ScreenName:      userLegacy.ScreenName,
		Name:            userLegacy.Name,
		ProfileImageURL: userLegacy.ProfileImageURLHTTPS,
		Verified:        userLegacy.Verified,
		FollowersCount:  userLegacy.FollowersCount,
		FollowingCount:  userLegacy.FriendsCount,
	}

	media := make([]models.Media, 0, len(legacy.ExtendedEntities.Media))
	for _, item := range legacy.ExtendedEntities.Media {
		media = append(media, parseMedia(item))
	}

	urls := make([]string, 0, len(legacy.Entities.URLs))
	for _, u := range legacy.Entities.URLs {
		urls = append(urls, u.ExpandedURL)
	}
	hashtags := make([]string, 0, len(legacy.Entities.Hashtags))
	for _, h := range legacy.Entities.Hashtags {
		hashtags = append(hashtags, h.Text)
	}
	mentions := make([]string, 0, len(legacy.Entities.UserMentions))
	for _, m := range legacy.Entities.UserMentions {
		mentions = append(mentions, m.ScreenName)
	}

	lang := legacy.Lang
	if lang == "" {
		lang = "en"
	}

	tweet := models.Tweet{
		ID:              id,
		Text:            legacy.FullText,
		CreatedAt:       legacy.CreatedAt,
		User:            user,
		RetweetCount:    legacy.RetweetCount,
		FavoriteCount:   legacy.FavoriteCount,
		ReplyCount:      legacy.ReplyCount,
		QuoteCount:      legacy.QuoteCount,
		Lang:            lang,
		IsRetweet:       len(legacy.RetweetedStatusResult) > 0,
		IsQuote:         len(result.QuotedStatusResult) > 0,
		Media:           media,
		URLs:            urls,
		Hashtags:        hashtags,
		Mentions:        mentions,
		ConversationID:  legacy.ConversationIDStr,
		InReplyToUserID: legacy.InReplyToUserIDStr,
	}

	if result.Views.Count != "" {
		if views, err := strconv.Atoi(result.Views.Count); err == nil {
			tweet.ViewCount = views
		}
	}

	return tweet, true
}

// parseMedia maps one media item. For videos and animated gifs the direct
// media URL points at the highest-bitrate mp4 variant, with the thumbnail
// kept as the preview image.
func parseMedia(item mediaItem) models.Media {
	media := models.Media{
		Type:     item.Type,
		URL:      item.URL,
		MediaURL: item.MediaURLHTTPS,
		Width:    item.OriginalInfo.Width,
		Height:   item.OriginalInfo.Height,
	}

	if item.VideoInfo != nil {
		best := bestVariant(item.VideoInfo.Variants)
		if best != "" {
			media.PreviewImageURL = item.MediaURLHTTPS
			media.MediaURL = best
		}
	}

	return media
}

func bestVariant(variants []videoVariant) string {
	var url string
	bitrate := -1
	for _, v := range variants {
		if v.ContentType != "video/mp4" {
			continue
		}
		if v.Bitrate > bitrate {
			bitrate = v.Bitrate
			url = v.URL
		}
	}
	return url
}
