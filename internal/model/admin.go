package model

import "time"

// Admin represents a console user who manages questions and categories.
type Admin struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AdminLoginRequest is the payload for admin authentication.
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// AdminLoginResponse is returned after successful admin login.
type AdminLoginResponse struct {
	Token string `json:"token"`
	Admin Admin  `json:"admin"`
}
