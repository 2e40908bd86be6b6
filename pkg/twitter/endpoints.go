package twitter

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/norandom/x-likes-scraper/pkg/models"
)

// LikesOperation is the GraphQL operation name whose query id the auth
// provider scrapes from the web client bundle.
const LikesOperation = "Likes"

// DefaultBaseURL is the X web origin
const DefaultBaseURL = "https://x.com"

// likesFeatures is the feature flag set the Likes endpoint requires. The API
// rejects requests missing any of these, so the set mirrors what the web
// client sends.
var likesFeatures = map[string]bool{
	"rweb_tipjar_consumption_enabled":                                         true,
	"responsive_web_graphql_exclude_directive_enabled":                        true,
	"verified_phone_label_enabled":                                            false,
	"creator_subscriptions_tweet_preview_api_enabled":                         true,
	"responsive_web_graphql_timeline_navigation_enabled":                      true,
	"responsive_web_graphql_skip_user_profile_image_extensions_enabled":       false,
	"communities_web_enable_tweet_community_results_fetch":                    true,
	"c9s_tweet_anatomy_moderator_badge_enabled":                               true,
	"articles_preview_enabled":                                                true,
	"responsive_web_edit_tweet_api_enabled":                                   true,
	"graphql_is_translatable_rweb_tweet_is_translatable_enabled":              true,
	"view_counts_everywhere_api_enabled":                                      true,
	"longform_notetweets_consumption_enabled":                                 true,
	"responsive_web_twitter_article_tweet_consumption_enabled":                true,
	"tweet_awards_web_tipping_enabled":                                        false,
	"creator_subscriptions_quote_tweet_preview_enabled":                       false,
	"freedom_of_speech_not_reach_fetch_enabled":                               true,
	"standardized_nudges_misinfo":                                             true,
	"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": true,
	"rweb_video_timestamps_enabled":                                           true,
	"longform_notetweets_rich_text_read_enabled":                              true,
	"longform_notetweets_inline_media_enabled":                                true,
	"responsive_web_enhance_cards_enabled":                                    false,
	"responsive_web_grok_analyze_post_followups_enabled":                      false,
	"responsive_web_grok_imagine_annotation_enabled":                          false,
	"premium_content_api_read_enabled":                                        false,
	"responsive_web_grok_analysis_button_from_backend":                        false,
	"responsive_web_profile_redirect_enabled":                                 false,
	"responsive_web_grok_share_attachment_enabled":                            false,
	"responsive_web_grok_show_grok_translated_post":                           false,
	"profile_label_improvements_pcf_label_in_post_enabled":                    false,
	"payments_enabled":                                                        false,
	"rweb_video_screen_enabled":                                               false,
	"responsive_web_jetfuel_frame":                                            false,
	"responsive_web_grok_community_note_auto_translation_is_enabled":          false,
	"responsive_web_grok_image_annotation_enabled":                            false,
	"responsive_web_grok_analyze_button_fetch_trends_enabled":                 false,
}

// likesURL builds the full request URL for one Likes page.
func likesURL(baseURL, queryID, userID string, cursor models.Cursor, count int) (string, error) {
	variables := map[string]interface{}{
		"userId":                 userID,
		"count":                  count,
		"includePromotedContent": false,
		"withClientEventToken":   false,
		"withBirdwatchNotes":     false,
		"withVoice":              true,
		"withV2Timeline":         true,
	}
	if !cursor.IsStart() {
		variables["cursor"] = cursor.String()
	}

	variablesJSON, err := json.Marshal(variables)
	if err != nil {
		return "", fmt.Errorf("failed to encode variables: %w", err)
	}
	featuresJSON, err := json.Marshal(likesFeatures)
	if err != nil {
		return "", fmt.Errorf("failed to encode features: %w", err)
	}

	params := url.Values{}
	params.Set("variables", string(variablesJSON))
	params.Set("features", string(featuresJSON))

	return fmt.Sprintf("%s/i/api/graphql/%s/%s?%s", baseURL, queryID, LikesOperation, params.Encode()), nil
}
