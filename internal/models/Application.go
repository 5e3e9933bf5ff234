package models

import "time"

type Application struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ApplicationInput struct {
	Name        string `json:"name" validate:"required|maxLen:255"`
	URL         string `json:"url" validate:"fullUrl|maxLen:255"`
	Description string `json:"description" validate:"maxLen:1000"`
}
