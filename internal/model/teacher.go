package model

import "time"

type Teacher struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PictureURL  *string   `json:"pictureUrl,omitempty"`
	Bio         *string   `json:"bio,omitempty"`
	Specialties []string  `json:"specialties"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}
