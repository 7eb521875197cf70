package model

import "time"

// Course is a catalog entry taught by one lecturer.
type Course struct {
	ID         int       `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Credits    int       `json:"credits"`
	Semester   int       `json:"semester"`
	LecturerID int       `json:"lecturer_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CourseRequest is the payload for creating or replacing a course.
type CourseRequest struct {
	Code        string `json:"code" binding:"required,alphanum,min=2,max=20"`
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Credits     int    `json:"credits" binding:"required,min=1,max=24"`
	Semester    int    `json:"semester" binding:"required,min=1,max=14"`
	LecturerNIM string `json:"lecturer_nim" binding:"required,max=20"`
}
