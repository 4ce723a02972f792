package dynamo

// DynamoDB attribute and index names shared across repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldTicketID       = "ticket_id"
	fieldStatus         = "status"
	fieldDate           = "date"
	fieldEmail          = "email"
	fieldUpdatedAt      = "updated_at"
	fieldUserID         = "user_id"
	fieldUsername       = "username"
	fieldNotificationID = "notification_id"
	fieldUserEmail      = "user_email"
	fieldCreatedAt      = "created_at"
	fieldRead           = "read"
	fieldClaimedBy      = "claimed_by"

	indexEmail              = "email-index"
	indexUsername           = "username-index"
	indexUserEmailCreatedAt = "user_email-created_at-index"

	// Uniqueness claims share the users table under prefixed keys.
	claimUsername = "username#"
	claimEmail    = "email#"
)
