package actions

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")               // 404
	ErrImageNotFound       = errors.New("image not found")              // 404
	ErrUnauthorized        = errors.New("unauthorized or image not found") // 401
	ErrInsufficientCredits = errors.New("insufficient credit balance")  // 402
)
