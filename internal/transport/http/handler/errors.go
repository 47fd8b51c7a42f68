package handler

const (
	errInternalServer     = "Internal server error"
	errInvalidCredentials = "Invalid credentials"
	errEmailTaken         = "User with this email already exists"
	errTaskNotFound       = "Task not found"
	errUserNotFound       = "User not found"
)
