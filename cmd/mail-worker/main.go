package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"

	"github.com/hourdesk/appointments-api/cmd/mainconfig"
	appconfig "github.com/hourdesk/appointments-api/internal/config"
	"github.com/hourdesk/appointments-api/internal/jobs"
	"github.com/hourdesk/appointments-api/internal/mail"
	"github.com/hourdesk/appointments-api/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting cancellation mail worker",
		"env", cfg.Env,
		"mail_provider", cfg.MailProvider,
		"worker_count", cfg.WorkerCount,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	if cfg.CancellationQueueURL == "" {
		logger.Error("CANCELLATION_QUEUE_URL is required")
		os.Exit(1)
	}
	queue := jobs.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.CancellationQueueURL)

	var sender mail.EmailSender
	switch cfg.MailProvider {
	case "sendgrid":
		sg := mail.NewSendGridSender(mail.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sg == nil {
			logger.Error("MAIL_PROVIDER=sendgrid but SENDGRID_API_KEY is not set")
			os.Exit(1)
		}
		sender = sg
	case "ses":
		sender = mail.NewSESSender(sesv2.NewFromConfig(awsCfg), mail.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
	default:
		sender = mail.NewStubSender(logger)
	}

	worker := jobs.NewWorker(queue, func(ctx context.Context, snapshot jobs.AppointmentSnapshot) error {
		return sender.Send(ctx, mail.RenderCancellation(snapshot))
	}, logger, jobs.WithWorkerCount(cfg.WorkerCount))

	worker.Run(ctx)
	logger.Info("worker stopped")
}
