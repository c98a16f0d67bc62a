package model

import "time"

type User struct {
	ID          string    `json:"id"`
	LineUserID  string    `json:"lineUserId"`
	DisplayName string    `json:"displayName"`
	PictureURL  *string   `json:"pictureUrl,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
