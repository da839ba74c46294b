package event

// swagger:parameters findEvent exportEvent updateEvent deleteEvent toggleAttendance
type _ struct {
	// in: path
	// required: true
	ID uint `json:"id"`
}

// swagger:parameters listEvents
type _ struct {
	// 1-based page number, pages past the end show the last page
	// in: query
	Page int `json:"page"`
}

// swagger:parameters createEvent updateEvent
type _ struct {
	// Event form. when is either a datetime-local value (2006-01-02T15:04) or RFC3339
	// in: body
	// required: true
	Body Request
}

// swagger:parameters adminListEvents
type _ struct {
	// Search term matched against title and description
	// in: query
	Q string `json:"q"`
}
