package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_PRIVATE_KEY_PATH", "/keys/private.pem")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/keys/public.pem")
	t.Setenv("ADMIN_USERNAME", "admin@booking.com")
	t.Setenv("ADMIN_PASSWORD", "correct-horse-battery")
	t.Setenv("NOTIFICATION_ADMIN_EMAIL", "admin@pilgrimage.com")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.AppPort)
	assert.Equal(t, 5, cfg.TicketMaxAttempts)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "bookings", cfg.DynamoTables.Bookings)
	assert.Equal(t, "notifications", cfg.DynamoTables.Notifications)
	assert.Len(t, cfg.AllowedOrigins, 4)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingSecretFailsFast(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate_RejectsDefaultAdminPassword(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_PASSWORD", "admin123")

	_, err := Load()
	assert.ErrorContains(t, err, "default password")
}

func TestValidate_TicketAttempts(t *testing.T) {
	setRequired(t)
	t.Setenv("TICKET_MAX_ATTEMPTS", "0")

	_, err := Load()
	assert.ErrorContains(t, err, "TICKET_MAX_ATTEMPTS")
}

func TestValidate_BcryptCost(t *testing.T) {
	setRequired(t)
	t.Setenv("BCRYPT_SALT_ROUNDS", "99")

	_, err := Load()
	assert.ErrorContains(t, err, "BCRYPT_SALT_ROUNDS")
}
