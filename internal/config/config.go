package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string        `envconfig:"APP_PORT" default:"5000"`
	AppEnv         string        `envconfig:"APP_ENV" default:"development"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`

	AWSRegion      string `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSEndpointURL string `envconfig:"AWS_ENDPOINT_URL"` // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey   string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	DynamoTables   DynamoTables

	ArchiveBucket string `envconfig:"S3_ARCHIVE_BUCKET"` // empty disables pre-purge archiving

	JWTPrivateKeyPath string        `envconfig:"JWT_PRIVATE_KEY_PATH" required:"true"`
	JWTPublicKeyPath  string        `envconfig:"JWT_PUBLIC_KEY_PATH" required:"true"`
	JWTExpiry         time.Duration `envconfig:"JWT_EXPIRY" default:"24h"`
	BcryptCost        int           `envconfig:"BCRYPT_SALT_ROUNDS" default:"10"`

	AdminUsername          string `envconfig:"ADMIN_USERNAME" required:"true"`
	AdminPassword          string `envconfig:"ADMIN_PASSWORD" required:"true"`
	NotificationAdminEmail string `envconfig:"NOTIFICATION_ADMIN_EMAIL" required:"true"`

	TicketMaxAttempts int `envconfig:"TICKET_MAX_ATTEMPTS" default:"5"`

	SMTPHost     string `envconfig:"SMTP_HOST"` // empty disables email delivery
	SMTPPort     string `envconfig:"SMTP_PORT" default:"587"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"noreply@pilgrimage.local"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`

	SNSEnabled bool   `envconfig:"SNS_ENABLED" default:"false"`
	SNSRegion  string `envconfig:"SNS_REGION" default:"us-east-1"`

	AMQPURL      string `envconfig:"AMQP_URL"` // empty disables event publishing
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"bookings"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5500,http://127.0.0.1:5500,http://localhost:3000,http://127.0.0.1:3000"`
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Bookings      string `envconfig:"DYNAMO_TABLE_BOOKINGS" default:"bookings"`
	Users         string `envconfig:"DYNAMO_TABLE_USERS" default:"users"`
	Notifications string `envconfig:"DYNAMO_TABLE_NOTIFICATIONS" default:"notifications"`
}

// shippedAdminPassword was the hard-coded fallback of the previous deployment.
const shippedAdminPassword = "admin123"

// Load reads all configuration from environment variables and validates it.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks rules that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.AdminUsername == "" || c.AdminPassword == "" {
		errs = append(errs, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD are required"))
	}
	if c.AdminPassword == shippedAdminPassword {
		errs = append(errs, errors.New("ADMIN_PASSWORD must not be the default password"))
	}
	if c.NotificationAdminEmail == "" {
		errs = append(errs, errors.New("NOTIFICATION_ADMIN_EMAIL is required"))
	}
	if c.JWTPrivateKeyPath == "" || c.JWTPublicKeyPath == "" {
		errs = append(errs, errors.New("JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH are required"))
	}
	if c.TicketMaxAttempts < 1 {
		errs = append(errs, errors.New("TICKET_MAX_ATTEMPTS must be at least 1"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_SALT_ROUNDS must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }
