package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/autosocial/modbot/model"
	"github.com/autosocial/modbot/pipeline"
)

type EventProcessor interface {
	Process(ctx context.Context, event model.CommentEvent) (*pipeline.Outcome, error)
}

type WebhookServer struct {
	Server http.Server
}

func NewWebhookServer(port int, processor EventProcessor) WebhookServer {
	mux := http.NewServeMux()
	mux.Handle("POST /api/webhook", handleWebhook(processor))
	mux.Handle("GET /health", handleHealthcheck())
	return WebhookServer{
		Server: http.Server{
			Addr:    fmt.Sprintf("0.0.0.0:%d", port),
			Handler: mux,
		},
	}
}

type webhookRequest struct {
	Comment    string `json:"comment"`
	Author     string `json:"author"`
	Platform   string `json:"platform"`
	PlatformID string `json:"platformId"`
	ExternalID string `json:"externalId"`
}

type webhookResponse struct {
	Success bool                    `json:"success"`
	Action  model.InteractionStatus `json:"action"`
	Reply   string                  `json:"reply,omitempty"`
	Reason  string                  `json:"reason"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func handleWebhook(processor EventProcessor) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			var body webhookRequest
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
				return
			}
			if body.Comment == "" || body.Platform == "" || body.ExternalID == "" {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing required fields"})
				return
			}
			platform, err := model.ParsePlatform(body.Platform)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
				return
			}

			outcome, err := processor.Process(r.Context(), model.CommentEvent{
				ExternalID: body.ExternalID,
				Platform:   platform,
				PlatformID: body.PlatformID,
				Author:     body.Author,
				Text:       body.Comment,
			})
			if err != nil {
				if errors.Is(err, pipeline.ErrInvalidInput) {
					writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
					return
				}
				log.Errorf("webhook error: %v", err)
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
				return
			}

			writeJSON(w, http.StatusOK, webhookResponse{
				Success: true,
				Action:  outcome.Action,
				Reply:   outcome.Reply,
				Reason:  outcome.Reason,
			})
		},
	)
}

func handleHealthcheck() http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			log.Debug("received healthcheck request")
			// This will have a status of 200
			fmt.Fprintf(w, "all good in the hood")
		},
	)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("error writing response: %v", err)
	}
}
