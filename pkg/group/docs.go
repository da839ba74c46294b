package group

// swagger:parameters groupCreate
type _ struct {
	// Create group request body parameter
	// in: body
	// required: true
	Body CreateGroupRequest
}

// swagger:parameters addUserToGroup removeUserFromGroup
type _ struct {
	// in: path
	// required: true
	Name string `json:"name"`

	// in: path
	// required: true
	UserID uint `json:"userId"`
}
