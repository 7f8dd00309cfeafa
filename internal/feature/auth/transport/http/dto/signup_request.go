package dto

// SignupReq is the request body of /signup.
// bcrypt only uses the first 72 bytes of a password, so longer ones are rejected.
type SignupReq struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}
