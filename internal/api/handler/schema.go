package handler

import (
	"github.com/wordlab/study-api/internal/core/domain"
)

// MessageResponse is the body of every error and of message-only replies.
type MessageResponse struct {
	Message string `json:"message"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type registerResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

// loginRequest accepts either the username or the email in Username.
type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type targetWordRequest struct {
	Word       string `json:"word" validate:"required"`
	Definition string `json:"definition" validate:"required"`
}

type createExperimentRequest struct {
	Title       string              `json:"title" validate:"required"`
	Description string              `json:"description"`
	StoryTheme  string              `json:"storyTheme" validate:"required"`
	TargetWords []targetWordRequest `json:"targetWords" validate:"dive"`
}

// updateExperimentRequest fields left out of the body stay unchanged.
type updateExperimentRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	StoryTheme  *string              `json:"storyTheme"`
	TargetWords *[]targetWordRequest `json:"targetWords" validate:"omitempty,dive"`
	IsActive    *bool                `json:"isActive"`
}

type generateContentResponse struct {
	Message    string             `json:"message"`
	Experiment *domain.Experiment `json:"experiment"`
}

type startSessionRequest struct {
	Condition string `json:"condition"`
}

type startSessionResponse struct {
	Session    *domain.StudySession     `json:"session"`
	Experiment *domain.PublicExperiment `json:"experiment"`
}

type advanceSessionRequest struct {
	Consent bool `json:"consent"`
}
