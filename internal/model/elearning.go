package model

import "time"

// Material is a downloadable course file for one week.
type Material struct {
	ID          int       `json:"id"`
	CourseID    int       `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FilePath    string    `json:"file_path"`
	FileType    string    `json:"file_type"`
	Week        int       `json:"week"`
	UploadedBy  int       `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Video is a recorded lecture for one week.
type Video struct {
	ID              int       `json:"id"`
	CourseID        int       `json:"course_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	VideoPath       string    `json:"video_path"`
	DurationMinutes int       `json:"duration_minutes"`
	Week            int       `json:"week"`
	UploadedBy      int       `json:"uploaded_by"`
	UploadedAt      time.Time `json:"uploaded_at"`
}

// VideoWatch tracks how far a student got through a video.
type VideoWatch struct {
	ID           int       `json:"id"`
	StudentID    int       `json:"student_id"`
	VideoID      int       `json:"video_id"`
	WatchSeconds int       `json:"watch_seconds"`
	TotalSeconds int       `json:"total_seconds"`
	Completed    bool      `json:"completed"`
	LastWatched  time.Time `json:"last_watched"`
}

// LearningForm is the multipart form for material and video uploads.
type LearningForm struct {
	CourseID        int    `form:"course_id" json:"course_id" binding:"required,min=1"`
	Title           string `form:"title" json:"title" binding:"required,max=200"`
	Description     string `form:"description" json:"description" binding:"max=5000"`
	Week            int    `form:"week" json:"week" binding:"omitempty,min=1,max=16"`
	DurationMinutes int    `form:"duration_minutes" json:"duration_minutes" binding:"omitempty,min=0"`
}

// WatchRequest is the payload for reporting video progress.
type WatchRequest struct {
	WatchSeconds int `json:"watch_seconds" binding:"min=0"`
	TotalSeconds int `json:"total_seconds" binding:"min=0"`
}
