package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/autosocial/modbot/config"
	"github.com/autosocial/modbot/database"
	"github.com/autosocial/modbot/pipeline"
	"github.com/autosocial/modbot/service"
)

func init() {
	rootCmd.AddCommand(serverCmd)
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Runs the modbot webhook server",
	Long:  `Runs the modbot webhook server`,
	Run: func(cmd *cobra.Command, args []string) {

		cfg := config.FromEnvfile()

		log.SetLevel(cfg.LogLevel)

		switch cfg.LogFormat {
		case config.LogFormatJSON:
			log.SetFormatter(&log.JSONFormatter{})
		default:
			log.SetFormatter(&log.TextFormatter{})
		}

		if cfg.TestModeEnabled {
			log.Info("TEST MODE ENABLED")
		}

		awsConfig, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		secretsManagerClient := secretsmanager.NewFromConfig(awsConfig)

		databaseURL := resolveDatabaseURL(cfg, secretsManagerClient)

		/*
			Graceful shutdown is possible with errgroup + signal.NotifyContext
			NotifyContext returns a context that will close on OS signals to terminate the process
			errgroup uses that context, and also closes it in case a goroutine errors out
		*/
		ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGKILL)
		defer done()
		g, gCtx := errgroup.WithContext(ctx)

		classifierService := service.NewClassifierService(gCtx, cfg, secretsManagerClient)
		dispatcherService := service.NewDispatcherService(cfg.TestModeEnabled)

		database := database.NewDatabase(databaseURL)
		if err = database.Connect(gCtx); err != nil {
			log.Fatalf("error connecting to database: %v", err)
		}
		defer database.Disconnect()

		eventPipeline := pipeline.NewPipeline(database, classifierService, dispatcherService)

		webhookServer := service.NewWebhookServer(cfg.Webhook.Port, eventPipeline)

		g.Go(func() error {
			log.Infof("webhook server listening on %s", webhookServer.Server.Addr)
			if err := webhookServer.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		// ...and shut down the server if the bot needs to terminate
		g.Go(func() error {
			<-gCtx.Done()
			defer log.Info("exiting webhook server")
			return webhookServer.Server.Shutdown(context.Background())
		})

		err = g.Wait()
		if err != nil {
			log.Errorf("caught error: %v", err)
		}
	},
}

func resolveDatabaseURL(cfg config.Config, secretsManagerClient *secretsmanager.Client) string {
	if cfg.PostgresURL != "" {
		return cfg.PostgresURL
	}
	// Get the DB secrets from AWS Secrets Manager
	result, err := secretsManagerClient.GetSecretValue(context.Background(), &secretsmanager.GetSecretValueInput{SecretId: aws.String(cfg.PostgresSecretPath)})
	if err != nil {
		log.Fatal(err.Error())
	}
	var pgSecrets config.PostgresSecretData
	err = json.Unmarshal([]byte(*result.SecretString), &pgSecrets)
	if err != nil {
		log.Fatalf("postgres secrets read error: %v", err)
	}
	return pgSecrets.ConnectionString
}
