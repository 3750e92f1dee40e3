package models

import "github.com/golang-jwt/jwt/v5"

// UserRole scopes what a caller may do within their school.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)

// AuthClaims are the JWT claims every request carries. SchoolID is the
// tenant boundary: a token never grants access across schools.
type AuthClaims struct {
	UserID   string   `json:"user_id"`
	SchoolID string   `json:"school_id"`
	Role     UserRole `json:"role"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}
