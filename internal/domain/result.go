package domain

// Warning reports a secondary failure that did not undo the primary outcome.
type Warning struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// BookingResult carries a booking state change together with any
// best-effort follow-up failures (notifications, SMS, events).
type BookingResult struct {
	Booking  *Booking
	Warnings []Warning
}

// AddDispatchWarning records err as a NotificationDispatchFailure warning.
func (r *BookingResult) AddDispatchWarning(err error) {
	r.Warnings = append(r.Warnings, Warning{Kind: KindNotificationDispatch, Message: err.Error()})
}
