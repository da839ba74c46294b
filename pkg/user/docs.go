package user

// swagger:parameters signUp
type _ struct {
	// Registration form
	// in: body
	// required: true
	Body SignUpRequest
}

// swagger:parameters signIn
type _ struct {
	// Login form
	// in: body
	// required: true
	Body SignInRequest
}
