package service

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	log "github.com/sirupsen/logrus"

	"github.com/autosocial/modbot/config"
	"github.com/autosocial/modbot/gemini"
	"github.com/autosocial/modbot/model"
)

// Returned whenever the model can't produce a usable verdict. Inaction is the
// safe failure mode: a missed abusive comment can be handled on redelivery or
// by a human, a wrongly deleted comment can't be undone.
const fallbackReason = "AI error - manual review needed"

type ClassifierService struct {
	config config.GeminiConfig
	client *gemini.Client
}

func NewClassifierService(ctx context.Context, cfg config.Config, secretsManagerClient *secretsmanager.Client) *ClassifierService {
	apiKey := cfg.Gemini.APIKey
	if apiKey == "" {
		// Get the Gemini secrets from AWS Secrets Manager
		result, err := secretsManagerClient.GetSecretValue(
			ctx,
			&secretsmanager.GetSecretValueInput{
				SecretId: aws.String(cfg.Gemini.SecretPath),
			},
		)
		if err != nil {
			log.Fatal(err.Error())
		}
		var geminiSecrets config.GeminiSecretData
		err = json.Unmarshal([]byte(*result.SecretString), &geminiSecrets)
		if err != nil {
			log.Panicf("gemini secrets read error: %v", err)
		}
		apiKey = geminiSecrets.ApiKey
	}

	client, err := gemini.NewClient(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		log.Fatalf("error initializing gemini client: %v", err)
	}
	log.Infof("Gemini client initialized. Model: %s", cfg.Gemini.Model)

	return &ClassifierService{
		config: cfg.Gemini,
		client: client,
	}
}

/*
Classify runs one comment through the model under the configured time bound.
It never fails: any fault (transport, timeout, unparsable output) is logged
and absorbed into the fallback decision, so an outage degrades to IGNORED
events instead of failed requests.
*/
func (s *ClassifierService) Classify(ctx context.Context, comment string, knowledge string) model.Decision {
	ctx, cancel := context.WithTimeout(ctx, s.config.ClassifyTimeout)
	defer cancel()

	decision, err := s.client.Classify(ctx, comment, knowledge)
	if err != nil {
		log.Errorf("classification failed, falling back: %v", err)
		return fallbackDecision()
	}
	return *decision
}

func fallbackDecision() model.Decision {
	return model.Decision{
		IsAbusive: false,
		Reply:     "",
		Reason:    fallbackReason,
	}
}
