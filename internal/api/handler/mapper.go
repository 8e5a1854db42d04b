package handler

import (
	"github.com/wordlab/study-api/internal/core/domain"
	"github.com/wordlab/study-api/internal/core/ports"
)

func toTargetWords(in []targetWordRequest) []domain.TargetWord {
	out := make([]domain.TargetWord, 0, len(in))
	for _, w := range in {
		out = append(out, domain.TargetWord{Word: w.Word, Definition: w.Definition})
	}
	return out
}

func toCreateExperimentInput(req createExperimentRequest) ports.CreateExperimentInput {
	return ports.CreateExperimentInput{
		Title:       req.Title,
		Description: req.Description,
		StoryTheme:  req.StoryTheme,
		TargetWords: toTargetWords(req.TargetWords),
	}
}

func toUpdateExperimentInput(req updateExperimentRequest) ports.UpdateExperimentInput {
	in := ports.UpdateExperimentInput{
		Title:       req.Title,
		Description: req.Description,
		StoryTheme:  req.StoryTheme,
		IsActive:    req.IsActive,
	}
	if req.TargetWords != nil {
		words := toTargetWords(*req.TargetWords)
		in.TargetWords = &words
	}
	return in
}
