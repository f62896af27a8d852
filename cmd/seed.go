package cmd

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/autosocial/modbot/config"
	"github.com/autosocial/modbot/database"
)

func init() {
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seeds the knowledge base with a default snippet if it is empty",
	Long:  `Seeds the knowledge base with a default snippet if it is empty`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.FromEnvfile()

		log.SetLevel(cfg.LogLevel)
		switch cfg.LogFormat {
		case config.LogFormatJSON:
			log.SetFormatter(&log.JSONFormatter{})
		default:
			log.SetFormatter(&log.TextFormatter{})
		}

		awsConfig, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		secretsManagerClient := secretsmanager.NewFromConfig(awsConfig)

		databaseURL := resolveDatabaseURL(cfg, secretsManagerClient)

		ctx := context.Background()
		db := database.NewDatabase(databaseURL)
		if err := db.Connect(ctx); err != nil {
			log.Fatalf("error connecting to database: %v", err)
		}
		defer db.Disconnect()

		seeded, err := db.SeedKnowledge(ctx)
		if err != nil {
			log.Fatalf("error seeding knowledge base: %v", err)
		}
		if seeded {
			log.Info("knowledge base seeded with default snippet")
		} else {
			log.Info("knowledge base already has content, nothing to do")
		}
	},
}
