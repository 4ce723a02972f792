package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/temple-booking/internal/application/notification"
	"github.com/temple-booking/internal/config"
	"github.com/temple-booking/internal/infrastructure/dynamo"
	jwtinfra "github.com/temple-booking/internal/infrastructure/jwt"
	"github.com/temple-booking/internal/infrastructure/mq"
	s3infra "github.com/temple-booking/internal/infrastructure/s3"
	"github.com/temple-booking/internal/infrastructure/smtp"
	"github.com/temple-booking/internal/infrastructure/sns"
	"github.com/temple-booking/internal/pkg/ticket"
	transporthttp "github.com/temple-booking/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx := context.Background()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		log.Fatalf("dynamodb: %v", err)
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	deps := &transporthttp.Deps{
		BookingRepo:      dynamo.NewBookingRepo(dynamoClient, cfg.DynamoTables.Bookings),
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		JWTProvider:      jwtProvider,
		Tickets:          ticket.NewGenerator(),
	}

	// S3 archive (optional).
	if cfg.ArchiveBucket != "" {
		s3Client, err := s3infra.NewClient(ctx, cfg)
		if err != nil {
			log.Fatalf("s3: %v", err)
		}
		deps.Archive = s3infra.NewArchive(s3Client, cfg.ArchiveBucket)
	}

	// SMTP email channel (optional).
	if cfg.SMTPHost != "" {
		deps.Channels = []notification.Channel{smtp.NewEmailChannel(smtp.NewMailer(cfg))}
	}

	// SNS SMS sender (optional, graceful fallback).
	if cfg.SNSEnabled {
		if sender, err := sns.NewSender(ctx, cfg); err == nil {
			deps.SMSSender = sender
		} else {
			log.Printf("WARN: SNS sender not available: %v", err)
		}
	}

	// AMQP event publisher (optional, graceful fallback).
	if cfg.AMQPURL != "" {
		if pub, err := mq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange); err == nil {
			deps.Publisher = pub
			defer pub.Close()
		} else {
			log.Printf("WARN: event publisher not available: %v", err)
		}
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
