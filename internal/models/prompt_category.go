package models

import "time"

// PromptCategory selects the system prompt used by the chat assistant.
type PromptCategory struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"unique;not null"`
	Description  string    `json:"description"`
	SystemPrompt string    `json:"system_prompt" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
