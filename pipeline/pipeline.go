package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/autosocial/modbot/model"
)

// ErrInvalidInput marks an event that was rejected before any processing.
// Nothing is dispatched and nothing is recorded for such events.
var ErrInvalidInput = errors.New("missing required fields")

type Store interface {
	GetAccountCredentials(ctx context.Context, platform model.Platform, platformID string) (*model.SocialAccount, error)
	GetActiveKnowledge(ctx context.Context) (string, error)
	UpsertInteraction(ctx context.Context, entry model.Interaction) error
}

type CommentClassifier interface {
	Classify(ctx context.Context, comment string, knowledge string) model.Decision
}

type ActionDispatcher interface {
	Delete(ctx context.Context, platform model.Platform, externalID string, token string)
	Reply(ctx context.Context, platform model.Platform, externalID string, message string, token string)
}

type Pipeline struct {
	store      Store
	classifier CommentClassifier
	dispatcher ActionDispatcher
}

func NewPipeline(store Store, classifier CommentClassifier, dispatcher ActionDispatcher) *Pipeline {
	return &Pipeline{
		store:      store,
		classifier: classifier,
		dispatcher: dispatcher,
	}
}

// Outcome describes what the pipeline decided for one event.
type Outcome struct {
	Action model.InteractionStatus
	Reply  string
	Reason string
}

/*
Process runs one comment event through the full pipeline: validate, resolve
credentials, assemble knowledge context, classify, dispatch the corrective
action, record the interaction. Steps run strictly in order; each depends on
the one before it.

A missing credential is not an error: the action step is skipped but the
decided status is still recorded, so the audit trail reflects decisions
rather than external side effects. Store failures are fatal for the event;
classifier and dispatch failures are absorbed upstream and never reach here.
*/
func (p *Pipeline) Process(ctx context.Context, event model.CommentEvent) (*Outcome, error) {
	if event.Text == "" || event.Platform == "" || event.ExternalID == "" {
		return nil, ErrInvalidInput
	}

	credentials, err := p.store.GetAccountCredentials(ctx, event.Platform, event.PlatformID)
	if err != nil {
		return nil, fmt.Errorf("resolving credentials: %w", err)
	}
	if credentials == nil {
		log.WithField("platform", event.Platform).WithField("platformID", event.PlatformID).Warn("no credentials on file, actions will be skipped")
	}

	knowledge, err := p.store.GetActiveKnowledge(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregating knowledge: %w", err)
	}

	start := time.Now()
	decision := p.classifier.Classify(ctx, event.Text, knowledge)
	processingTime := time.Since(start).Milliseconds()

	status := model.Decide(decision)

	switch status {
	case model.StatusDeleted:
		log.Infof("[%s] DELETING comment from %s: %s", event.Platform, event.Author, decision.Reason)
		if credentials != nil {
			p.dispatcher.Delete(ctx, event.Platform, event.ExternalID, credentials.AccessToken)
		}
	case model.StatusReplied:
		log.Infof("[%s] REPLYING to %s: %s", event.Platform, event.Author, decision.Reply)
		if credentials != nil {
			p.dispatcher.Reply(ctx, event.Platform, event.ExternalID, decision.Reply, credentials.AccessToken)
		}
	}

	err = p.store.UpsertInteraction(ctx, model.Interaction{
		ExternalID:       event.ExternalID,
		Platform:         event.Platform,
		Author:           event.Author,
		Text:             event.Text,
		Status:           status,
		IsAbusive:        decision.IsAbusive,
		AIReply:          decision.Reply,
		ProcessingTimeMs: processingTime,
	})
	if err != nil {
		return nil, fmt.Errorf("recording interaction: %w", err)
	}

	return &Outcome{
		Action: status,
		Reply:  decision.Reply,
		Reason: decision.Reason,
	}, nil
}
