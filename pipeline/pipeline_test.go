package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/autosocial/modbot/model"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetAccountCredentials(ctx context.Context, platform model.Platform, platformID string) (*model.SocialAccount, error) {
	args := m.Called(ctx, platform, platformID)
	account, _ := args.Get(0).(*model.SocialAccount)
	return account, args.Error(1)
}

func (m *MockStore) GetActiveKnowledge(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.Get(0).(string), args.Error(1)
}

func (m *MockStore) UpsertInteraction(ctx context.Context, entry model.Interaction) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, comment string, knowledge string) model.Decision {
	args := m.Called(ctx, comment, knowledge)
	return args.Get(0).(model.Decision)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Delete(ctx context.Context, platform model.Platform, externalID string, token string) {
	m.Called(ctx, platform, externalID, token)
}

func (m *MockDispatcher) Reply(ctx context.Context, platform model.Platform, externalID string, message string, token string) {
	m.Called(ctx, platform, externalID, message, token)
}

func facebookAccount() *model.SocialAccount {
	return &model.SocialAccount{
		ID:          "acc1",
		Platform:    model.PlatformFacebook,
		PlatformID:  "PG1",
		AccessToken: "tok-123",
		Name:        "My Business Page",
	}
}

// Matches an upserted interaction on everything except the measured
// processing time.
func interactionLike(externalID string, status model.InteractionStatus, isAbusive bool, reply string) any {
	return mock.MatchedBy(func(entry model.Interaction) bool {
		return entry.ExternalID == externalID &&
			entry.Status == status &&
			entry.IsAbusive == isAbusive &&
			entry.AIReply == reply
	})
}

func TestProcess(t *testing.T) {
	t.Run("abusive comment is deleted and recorded as DELETED with no reply", func(t *testing.T) {
		event := model.CommentEvent{
			ExternalID: "C1",
			Platform:   model.PlatformFacebook,
			PlatformID: "PG1",
			Author:     "joe",
			Text:       "You guys are scammers!!",
		}
		mockStore := new(MockStore)
		mockStore.On("GetAccountCredentials", context.TODO(), model.PlatformFacebook, "PG1").Return(facebookAccount(), nil)
		mockStore.On("GetActiveKnowledge", context.TODO()).Return("", nil)
		mockStore.On("UpsertInteraction", context.TODO(), interactionLike("C1", model.StatusDeleted, true, "")).Return(nil)
		mockClassifier := new(MockClassifier)
		mockClassifier.On("Classify", mock.Anything, event.Text, "").Return(model.Decision{IsAbusive: true, Reason: "hate speech"})
		mockDispatcher := new(MockDispatcher)
		mockDispatcher.On("Delete", mock.Anything, model.PlatformFacebook, "C1", "tok-123").Return()

		outcome, err := NewPipeline(mockStore, mockClassifier, mockDispatcher).Process(context.TODO(), event)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusDeleted, outcome.Action)
		assert.Equal(t, "", outcome.Reply)
		assert.Equal(t, "hate speech", outcome.Reason)
		mockDispatcher.AssertNumberOfCalls(t, "Delete", 1)
		mockDispatcher.AssertNumberOfCalls(t, "Reply", 0)
		mockStore.AssertNumberOfCalls(t, "UpsertInteraction", 1)
	})

	t.Run("answerable comment is replied to with the classifier's reply", func(t *testing.T) {
		event := model.CommentEvent{
			ExternalID: "C2",
			Platform:   model.PlatformYouTube,
			PlatformID: "CH1",
			Author:     "ann",
			Text:       "What are your hours?",
		}
		knowledge := "- [Professional] We open at 9am"
		account := &model.SocialAccount{Platform: model.PlatformYouTube, PlatformID: "CH1", AccessToken: "tok-456"}
		mockStore := new(MockStore)
		mockStore.On("GetAccountCredentials", context.TODO(), model.PlatformYouTube, "CH1").Return(account, nil)
		mockStore.On("GetActiveKnowledge", context.TODO()).Return(knowledge, nil)
		mockStore.On("UpsertInteraction", context.TODO(), interactionLike("C2", model.StatusReplied, false, "We're open from 9am!")).Return(nil)
		mockClassifier := new(MockClassifier)
		mockClassifier.On("Classify", mock.Anything, event.Text, knowledge).Return(model.Decision{Reply: "We're open from 9am!", Reason: "answered from context"})
		mockDispatcher := new(MockDispatcher)
		mockDispatcher.On("Reply", mock.Anything, model.PlatformYouTube, "C2", "We're open from 9am!", "tok-456").Return()

		outcome, err := NewPipeline(mockStore, mockClassifier, mockDispatcher).Process(context.TODO(), event)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusReplied, outcome.Action)
		assert.Equal(t, "We're open from 9am!", outcome.Reply)
		mockDispatcher.AssertNumberOfCalls(t, "Reply", 1)
		mockDispatcher.AssertNumberOfCalls(t, "Delete", 0)
	})

	t.Run("safe comment with no reply is ignored and nothing is dispatched", func(t *testing.T) {
		event := model.CommentEvent{ExternalID: "C3", Platform: model.PlatformFacebook, PlatformID: "PG1", Author: "sam", Text: "nice"}
		mockStore := new(MockStore)
		mockStore.On("GetAccountCredentials", context.TODO(), model.PlatformFacebook, "PG1").Return(facebookAccount(), nil)
		mockStore.On("GetActiveKnowledge", context.TODO()).Return("", nil)
		mockStore.On("UpsertInteraction", context.TODO(), interactionLike("C3", model.StatusIgnored, false, "")).Return(nil)
		mockClassifier := new(MockClassifier)
		mockClassifier.On("Classify", mock.Anything, event.Text, "").Return(model.Decision{Reason: "no reply needed"})
		mockDispatcher := new(MockDispatcher)

		outcome, err := NewPipeline(mockStore, mockClassifier, mockDispatcher).Process(context.TODO(), event)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusIgnored, outcome.Action)
		mockDispatcher.AssertNumberOfCalls(t, "Delete", 0)
		mockDispatcher.AssertNumberOfCalls(t, "Reply", 0)
	})

	t.Run("missing credential skips dispatch but still records the decided status", func(t *testing.T) {
		event := model.CommentEvent{ExternalID: "C4", Platform: model.PlatformFacebook, PlatformID: "unknown-page", Author: "joe", Text: "spam spam spam"}
		mockStore := new(MockStore)
		mockStore.On("GetAccountCredentials", context.TODO(), model.PlatformFacebook, "unknown-page").Return(nil, nil)
		mockStore.On("GetActiveKnowledge", context.TODO()).Return("", nil)
		mockStore.On("UpsertInteraction", context.TODO(), interactionLike("C4", model.StatusDeleted, true, "")).Return(nil)
		mockClassifier := new(MockClassifier)
		mockClassifier.On("Classify", mock.Anything, event.Text, "").Return(model.Decision{IsAbusive: true, Reason: "spam"})
		mockDispatcher := new(MockDispatcher)

		outcome, err := NewPipeline(mockStore, mockClassifier, mockDispatcher).Process(context.TODO(), event)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusDeleted, outcome.Action)
		mockDispatcher.AssertNumberOfCalls(t, "Delete", 0)
		mockStore.AssertNumberOfCalls(t, "UpsertInteraction", 1)
	})

	t.Run("classifier fallback ends as IGNORED with the fallback reason", func(t *testing.T) {
		event := model.CommentEvent{ExternalID: "C5", Platform: model.PlatformFacebook, PlatformID: "PG1", Author: "joe", Text: "hello?"}
		fallback := model.Decision{IsAbusive: false, Reply: "", Reason: "AI error - manual review needed"}
		mockStore := new(MockStore)
		mockStore.On("GetAccountCredentials", context.TODO(), model.PlatformFacebook, "PG1").Return(facebookAccount(), nil)
		mockStore.On("GetActiveKnowledge", context.TODO()).Return("", nil)
		mockStore.On("UpsertInteraction", context.TODO(), interactionLike("C5", model.StatusIgnored, false, "")).Return(nil)
		mockClassifier := new(MockClassifier)
		mockClassifier.On("Classify", mock.Anything, event.Text, "").Return(fallback)
		mockDispatcher := new(MockDispatcher)

		outcome, err := NewPipeline(mockStore, mockClassifier, mockDispatcher).Process(context.TODO(), event)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusIgnored, outcome.Action)
		assert.Equal(t, "AI error - manual review needed", outcome.Reason)
	})

	t.Run("redelivery records under the same key both times", func(t *testing.T) {
		event := model.CommentEvent{ExternalID: "C6", Platform: model.PlatformFacebook, PlatformID: "PG1", Author: "joe", Text: "nice"}
		mockStore := new(MockStore)
		mockStore.On("GetAccountCredentials", context.TODO(), model.PlatformFacebook, "PG1").Return(facebookAccount(), nil)
		mockStore.On("GetActiveKnowledge", context.TODO()).Return("", nil)
		mockStore.On("UpsertInteraction", context.TODO(), interactionLike("C6", model.StatusIgnored, false, "")).Return(nil)
		mockClassifier := new(MockClassifier)
		mockClassifier.On("Classify", mock.Anything, event.Text, "").Return(model.Decision{Reason: "ok"})
		pipeline := NewPipeline(mockStore, mockClassifier, new(MockDispatcher))

		_, err := pipeline.Process(context.TODO(), event)
		assert.NoError(t, err)
		_, err = pipeline.Process(context.TODO(), event)
		assert.NoError(t, err)
		// Both writes target the same external id; the store's upsert makes
		// the second one an overwrite rather than a duplicate.
		mockStore.AssertNumberOfCalls(t, "UpsertInteraction", 2)
	})

	t.Run("rejects events missing required fields before any side effect", func(t *testing.T) {
		testCases := []struct {
			description string
			event       model.CommentEvent
		}{
			{"missing comment text", model.CommentEvent{ExternalID: "C7", Platform: model.PlatformFacebook}},
			{"missing platform", model.CommentEvent{ExternalID: "C7", Text: "hello"}},
			{"missing external id", model.CommentEvent{Platform: model.PlatformFacebook, Text: "hello"}},
		}
		for _, testCase := range testCases {
			t.Run(testCase.description, func(t *testing.T) {
				mockStore := new(MockStore)
				mockClassifier := new(MockClassifier)
				mockDispatcher := new(MockDispatcher)

				outcome, err := NewPipeline(mockStore, mockClassifier, mockDispatcher).Process(context.TODO(), testCase.event)
				assert.ErrorIs(t, err, ErrInvalidInput)
				assert.Nil(t, outcome)
				mockStore.AssertNumberOfCalls(t, "GetAccountCredentials", 0)
				mockStore.AssertNumberOfCalls(t, "UpsertInteraction", 0)
				mockClassifier.AssertNumberOfCalls(t, "Classify", 0)
			})
		}
	})

	t.Run("credential lookup failure aborts before classification", func(t *testing.T) {
		event := model.CommentEvent{ExternalID: "C8", Platform: model.PlatformFacebook, PlatformID: "PG1", Author: "joe", Text: "hello"}
		mockStore := new(MockStore)
		mockStore.On("GetAccountCredentials", context.TODO(), model.PlatformFacebook, "PG1").Return(nil, errors.New("store unreachable"))
		mockClassifier := new(MockClassifier)

		_, err := NewPipeline(mockStore, mockClassifier, new(MockDispatcher)).Process(context.TODO(), event)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidInput)
		mockClassifier.AssertNumberOfCalls(t, "Classify", 0)
		mockStore.AssertNumberOfCalls(t, "UpsertInteraction", 0)
	})

	t.Run("recording failure surfaces after dispatch with no rollback", func(t *testing.T) {
		event := model.CommentEvent{ExternalID: "C9", Platform: model.PlatformFacebook, PlatformID: "PG1", Author: "joe", Text: "spam"}
		mockStore := new(MockStore)
		mockStore.On("GetAccountCredentials", context.TODO(), model.PlatformFacebook, "PG1").Return(facebookAccount(), nil)
		mockStore.On("GetActiveKnowledge", context.TODO()).Return("", nil)
		mockStore.On("UpsertInteraction", context.TODO(), mock.Anything).Return(errors.New("store unreachable"))
		mockClassifier := new(MockClassifier)
		mockClassifier.On("Classify", mock.Anything, event.Text, "").Return(model.Decision{IsAbusive: true, Reason: "spam"})
		mockDispatcher := new(MockDispatcher)
		mockDispatcher.On("Delete", mock.Anything, model.PlatformFacebook, "C9", "tok-123").Return()

		outcome, err := NewPipeline(mockStore, mockClassifier, mockDispatcher).Process(context.TODO(), event)
		assert.Error(t, err)
		assert.Nil(t, outcome)
		// The delete already happened; the failed log write doesn't undo it.
		mockDispatcher.AssertNumberOfCalls(t, "Delete", 1)
	})
}
