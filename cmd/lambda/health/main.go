// Health Check Lambda entry point
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"emi-eligibility-engine/internal/config"
	"emi-eligibility-engine/internal/handlers"
	"emi-eligibility-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	svc, err := handlers.Bootstrap(context.Background(), cfg, utils.GetLogger())
	if err != nil {
		utils.GetLogger().Fatal("Failed to create handler", zap.Error(err))
	}

	lambda.Start(handlers.NewHealthHandler(svc).Handle)
}
