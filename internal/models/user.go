package models

import "time"

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

type User struct {
	ID               string     `json:"_id" yaml:"id"`
	Username         string     `json:"username" yaml:"username"`
	Email            string     `json:"email" yaml:"email"`
	AvatarURL        string     `json:"avatarUrl,omitempty" yaml:"avatarUrl,omitempty"`
	Role             string     `json:"role" yaml:"role"`
	IsVerified       bool       `json:"isVerified" yaml:"isVerified"`
	Status           UserStatus `json:"status" yaml:"status"`
	Balance          float64    `json:"balance" yaml:"balance"`
	EnrolledCourses  []string   `json:"enrolledCourses" yaml:"enrolledCourses"`
	CompletedCourses []string   `json:"completedCourses" yaml:"completedCourses"`
	BoughtCourses    []string   `json:"boughtCourses,omitempty" yaml:"boughtCourses,omitempty"`
	IsDeleted        bool       `json:"isDeleted" yaml:"isDeleted"`
	CreatedAt        time.Time  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt" yaml:"updatedAt"`
}

// LoginResult is the payload returned by the sign-in endpoint
type LoginResult struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

type MessageData struct {
	Message string `json:"message"`
}
