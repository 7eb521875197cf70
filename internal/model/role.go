package model

// Role is the closed set of account roles.
type Role string

const (
	RoleStudent  Role = "mahasiswa"
	RoleLecturer Role = "dosen"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleLecturer, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether r may act on academic records of other users.
func (r Role) IsStaff() bool {
	return r == RoleLecturer || r == RoleAdmin
}

// Status is the review state shared by KRS rows and every submission kind.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether s is a final review outcome.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}
