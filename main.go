package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"go.uber.org/zap"
)

var handler *LambdaHandler

func init() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}

	sess := session.Must(session.NewSessionWithOptions(session.Options{
		Config:            aws.Config{Region: aws.String(cfg.SecretsRegion)},
		SharedConfigState: session.SharedConfigEnable,
	}))
	smClient := secretsmanager.New(sess)

	conn := NewConnector(smClient, cfg.SecretID, connectMongo, logger)
	handler = CreateLambdaHandler(conn, logger)
	logger.Debug("Handler ready", zap.String("secretId", cfg.SecretID), zap.String("region", cfg.SecretsRegion))
}

func main() {
	lambda.Start(handler.Handle)
}
