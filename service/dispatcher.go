package service

import (
	"context"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/autosocial/modbot/model"
	"github.com/autosocial/modbot/social"
)

/*
DispatcherService executes delete and reply actions against the origin
platform. Both operations are best-effort and non-blocking for the caller:
they never return an error, because by the time an action is dispatched the
event's status has already been decided and recorded semantics must not
depend on whether the platform call landed. Failures are logged and dropped;
recovery relies on the webhook source redelivering the event.
*/
type DispatcherService struct {
	httpClient      *http.Client
	testModeEnabled bool
}

func NewDispatcherService(isTestMode bool) *DispatcherService {
	return &DispatcherService{
		httpClient:      http.DefaultClient,
		testModeEnabled: isTestMode,
	}
}

func (s *DispatcherService) Delete(ctx context.Context, platform model.Platform, externalID string, token string) {
	if token == "" {
		log.Warnf("[%s] no access token provided, skipping DELETE action", platform)
		return
	}
	adapter, ok := social.ForPlatform(platform)
	if !ok {
		log.Warnf("[%s] platform has no adapter, skipping DELETE action", platform)
		return
	}
	if s.testModeEnabled {
		log.WithField("externalID", externalID).Infof("[%s] simulating DELETE", platform)
		return
	}

	req, err := adapter.BuildDeleteRequest(ctx, externalID, token)
	if err != nil {
		log.Errorf("[%s] failed to build DELETE request: %v", platform, err)
		return
	}
	s.execute(req, platform, "DELETE", externalID)
}

func (s *DispatcherService) Reply(ctx context.Context, platform model.Platform, externalID string, message string, token string) {
	if token == "" {
		log.Warnf("[%s] no access token provided, skipping REPLY action", platform)
		return
	}
	adapter, ok := social.ForPlatform(platform)
	if !ok {
		log.Warnf("[%s] platform has no adapter, skipping REPLY action", platform)
		return
	}
	if s.testModeEnabled {
		log.WithField("externalID", externalID).WithField("message", message).Infof("[%s] simulating REPLY", platform)
		return
	}

	req, err := adapter.BuildReplyRequest(ctx, externalID, message, token)
	if err != nil {
		log.Errorf("[%s] failed to build REPLY request: %v", platform, err)
		return
	}
	s.execute(req, platform, "REPLY", externalID)
}

func (s *DispatcherService) execute(req *http.Request, platform model.Platform, action string, externalID string) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Errorf("[%s] failed to %s comment %s: %v", platform, action, externalID, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		log.WithField("status", resp.StatusCode).Errorf("[%s] failed to %s comment %s: %s", platform, action, externalID, string(body))
		return
	}
	log.Infof("[%s] %s succeeded for comment %s", platform, action, externalID)
}
