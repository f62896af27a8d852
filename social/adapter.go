package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/exp/maps"

	"github.com/autosocial/modbot/model"
)

const (
	facebookGraphBase = "https://graph.facebook.com/v19.0"
	youtubeAPIBase    = "https://www.googleapis.com/youtube/v3"
)

/*
Adapter shapes delete and reply requests for one platform. The platforms
differ in where the token goes (Facebook: query string, YouTube: bearer
header) and in endpoint layout, but not in anything the pipeline cares
about, so the variance lives here as data rather than as branches in the
dispatcher.
*/
type Adapter struct {
	BuildDeleteRequest func(ctx context.Context, externalID string, token string) (*http.Request, error)
	BuildReplyRequest  func(ctx context.Context, externalID string, message string, token string) (*http.Request, error)
}

var adapters = map[model.Platform]Adapter{
	model.PlatformFacebook: {
		BuildDeleteRequest: buildFacebookDelete,
		BuildReplyRequest:  buildFacebookReply,
	},
	model.PlatformYouTube: {
		BuildDeleteRequest: buildYouTubeDelete,
		BuildReplyRequest:  buildYouTubeReply,
	},
}

func ForPlatform(platform model.Platform) (Adapter, bool) {
	adapter, ok := adapters[platform]
	return adapter, ok
}

func SupportedPlatforms() []model.Platform {
	return maps.Keys(adapters)
}

// Graph API: DELETE /{comment-id}, token in the query string.
func buildFacebookDelete(ctx context.Context, externalID string, token string) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s/%s", facebookGraphBase, url.PathEscape(externalID))
	q := url.Values{}
	q.Add("access_token", token)
	return http.NewRequestWithContext(ctx, http.MethodDelete, endpoint+"?"+q.Encode(), nil)
}

// Graph API: POST /{comment-id}/comments, token in the JSON body.
func buildFacebookReply(ctx context.Context, externalID string, message string, token string) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s/%s/comments", facebookGraphBase, url.PathEscape(externalID))
	body, err := json.Marshal(map[string]string{
		"message":      message,
		"access_token": token,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Content-Type", "application/json")
	return req, nil
}

// YouTube Data API: DELETE /comments?id={id}, OAuth bearer header.
// The externalID must be the specific comment id, not the thread id.
func buildYouTubeDelete(ctx context.Context, externalID string, token string) (*http.Request, error) {
	q := url.Values{}
	q.Add("id", externalID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, youtubeAPIBase+"/comments?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	return req, nil
}

// YouTube Data API: POST /comments?part=snippet. Replies are inserts into
// the parent comment.
func buildYouTubeReply(ctx context.Context, externalID string, message string, token string) (*http.Request, error) {
	body, err := json.Marshal(map[string]any{
		"snippet": map[string]string{
			"parentId":     externalID,
			"textOriginal": message,
		},
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, youtubeAPIBase+"/comments?part=snippet", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	req.Header.Add("Content-Type", "application/json")
	return req, nil
}
