package model

import "time"

type AccountStatus string

const (
	AccountPending  AccountStatus = "PENDING"
	AccountApproved AccountStatus = "APPROVED"
	AccountRejected AccountStatus = "REJECTED"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID             string        `json:"id" db:"id"`
	FullName       string        `json:"full_name" db:"full_name"`
	Email          string        `json:"email" db:"email"`
	UniversityID   string        `json:"university_id" db:"university_id"`
	UniversityCard string        `json:"university_card" db:"university_card"`
	PasswordHash   string        `json:"-" db:"password_hash"`
	Status         AccountStatus `json:"status" db:"status"`
	Role           Role          `json:"role" db:"role"`
	LastActivityAt time.Time     `json:"last_activity_at" db:"last_activity_at"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}

// RegisterReq represents signup payload
// swagger:model RegisterReq
type RegisterReq struct {
	FullName       string `json:"full_name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	UniversityID   string `json:"university_id" validate:"required"`
	UniversityCard string `json:"university_card" validate:"required"`
	Password       string `json:"password" validate:"required,min=8"`
}

// LoginReq represents login payload
// swagger:model LoginReq
type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
