package docs

// swagger:response
type Error struct {
	// The error message
	//in: body
	Message string
}

// swagger:response
type Health struct {
	//in: body
	Body struct {
		Status string `json:"status"`
	}
}

// Server-sent events. Every event carries the notification id, its kind as event name and the JSON encoded notification as data.
// swagger:response
type Stream struct {
	//in: body
	Body string
}
