package model

import "time"

// User is an account of any role. AdvisorID points at a lecturer account.
type User struct {
	ID           int       `json:"id"`
	NIM          string    `json:"nim"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	StudyProgram string    `json:"study_program"`
	Role         Role      `json:"role"`
	AdvisorID    *int      `json:"advisor_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	NIM      string `json:"nim" binding:"required,max=20"`
	Password string `json:"password" binding:"required,max=128"`
}

// RegisterRequest is the payload for public student self-registration.
type RegisterRequest struct {
	NIM             string `json:"nim" binding:"required,nim,max=20"`
	Name            string `json:"name" binding:"required,min=2,max=100"`
	Email           string `json:"email" binding:"required,email,max=120"`
	StudyProgram    string `json:"study_program" binding:"required,max=100"`
	Password        string `json:"password" binding:"required,min=6,max=128"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

// CreateUserRequest is the payload for creating an account of any role.
type CreateUserRequest struct {
	NIM          string `json:"nim" binding:"required,nim,max=20"`
	Name         string `json:"name" binding:"required,min=2,max=100"`
	Email        string `json:"email" binding:"required,email,max=120"`
	StudyProgram string `json:"study_program" binding:"required,max=100"`
	Password     string `json:"password" binding:"required,min=6,max=128"`
	Role         Role   `json:"role" binding:"required,oneof=mahasiswa dosen admin"`
	AdvisorID    *int   `json:"advisor_id" binding:"omitempty,min=1"`
}

// UpdateUserRequest is the payload for partial account updates.
// Nil fields are left unchanged.
type UpdateUserRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email        *string `json:"email" binding:"omitempty,email,max=120"`
	StudyProgram *string `json:"study_program" binding:"omitempty,max=100"`
	Password     *string `json:"password" binding:"omitempty,min=6,max=128"`
	Role         *Role   `json:"role" binding:"omitempty,oneof=mahasiswa dosen admin"`
	AdvisorID    *int    `json:"advisor_id" binding:"omitempty,min=0"`
}
