package dto

import "time"

// LoginRequest exchanges the operator access key for a token.
type LoginRequest struct {
	AccessKey string `json:"accessKey" binding:"required"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
