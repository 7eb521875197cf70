package model

import "time"

// Schedule is a weekly lecture slot.
type Schedule struct {
	ID           int       `json:"id"`
	CourseID     int       `json:"course_id"`
	Day          string    `json:"day"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	Room         string    `json:"room"`
	Semester     int       `json:"semester"`
	AcademicYear string    `json:"academic_year"`
	CreatedAt    time.Time `json:"created_at"`
}

// ScheduleRequest is the payload for adding a lecture slot.
type ScheduleRequest struct {
	CourseID     int    `json:"course_id" binding:"required,min=1"`
	Day          string `json:"day" binding:"required,oneof=Senin Selasa Rabu Kamis Jumat Sabtu Minggu"`
	StartTime    string `json:"start_time" binding:"required,datetime=15:04"`
	EndTime      string `json:"end_time" binding:"required,datetime=15:04"`
	Room         string `json:"room" binding:"required,max=50"`
	Semester     int    `json:"semester" binding:"required,min=1,max=14"`
	AcademicYear string `json:"academic_year" binding:"required,academic_year"`
}
