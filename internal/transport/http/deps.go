package http

import (
	"github.com/temple-booking/internal/application/notification"
	"github.com/temple-booking/internal/infrastructure/dynamo"
	jwtinfra "github.com/temple-booking/internal/infrastructure/jwt"
	"github.com/temple-booking/internal/infrastructure/mq"
	s3infra "github.com/temple-booking/internal/infrastructure/s3"
	"github.com/temple-booking/internal/infrastructure/sns"
	"github.com/temple-booking/internal/pkg/ticket"
)

// Deps holds all infrastructure dependencies for the router.
// Archive, SMSSender, Publisher and Channels are optional.
type Deps struct {
	BookingRepo      *dynamo.BookingRepo
	UserRepo         *dynamo.UserRepo
	NotificationRepo *dynamo.NotificationRepo
	Archive          *s3infra.Archive
	SMSSender        sns.SMSSender
	Publisher        *mq.Publisher
	Channels         []notification.Channel
	JWTProvider      *jwtinfra.Provider
	Tickets          *ticket.Generator
}
