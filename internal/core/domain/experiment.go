package domain

import (
	"strconv"
	"strings"
	"time"
)

// StoryMarker delimits target words inside a generated story.
const StoryMarker = "__"

// MinStoryLength is the shortest story accepted from a generator.
const MinStoryLength = 50

// TargetWord is a vocabulary item an experiment teaches. Two target words are
// the same word when their text matches.
type TargetWord struct {
	Word       string `json:"word" bson:"word"`
	Definition string `json:"definition" bson:"definition"`
}

func (w TargetWord) Equal(o TargetWord) bool { return w.Word == o.Word }

// Experiment is the aggregate a teacher authors and participants study.
type Experiment struct {
	ID             string       `json:"id"`
	OwnerID        string       `json:"ownerId"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	StoryTheme     string       `json:"storyTheme"`
	TargetWords    []TargetWord `json:"targetWords"`
	GeneratedStory string       `json:"generatedStory"`
	AudioURL       string       `json:"audioUrl"`
	IsActive       bool         `json:"isActive"`
	Version        int64        `json:"version"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// OwnedBy reports whether userID created the experiment.
func (e *Experiment) OwnedBy(userID string) bool {
	return userID != "" && e.OwnerID == userID
}

// Words returns the target word texts in order.
func (e *Experiment) Words() []string {
	words := make([]string, 0, len(e.TargetWords))
	for _, tw := range e.TargetWords {
		words = append(words, tw.Word)
	}
	return words
}

// Public returns the participant-safe projection.
func (e *Experiment) Public() PublicExperiment {
	words := make([]TargetWord, len(e.TargetWords))
	copy(words, e.TargetWords)
	return PublicExperiment{
		ID:             e.ID,
		Title:          e.Title,
		Description:    e.Description,
		GeneratedStory: e.GeneratedStory,
		TargetWords:    words,
		AudioURL:       e.AudioURL,
	}
}

// PublicExperiment is what participants may see: no ownership or lifecycle metadata.
type PublicExperiment struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	GeneratedStory string       `json:"generatedStory"`
	TargetWords    []TargetWord `json:"targetWords"`
	AudioURL       string       `json:"audioUrl"`
}

// ValidateTargetWords rejects any word or definition that is blank.
func ValidateTargetWords(words []TargetWord) error {
	for i, tw := range words {
		if strings.TrimSpace(tw.Word) == "" || strings.TrimSpace(tw.Definition) == "" {
			return NewValidationError("target word " + strconv.Itoa(i+1) + " needs both a word and a definition")
		}
	}
	return nil
}

// MarkWord wraps word in story markers: "__word__".
func MarkWord(word string) string {
	return StoryMarker + word + StoryMarker
}

// StripMarkers removes every marker from text, leaving plain narration.
func StripMarkers(text string) string {
	return strings.ReplaceAll(text, StoryMarker, "")
}

// MissingWords returns the words that do not appear marked in story.
func MissingWords(story string, words []string) []string {
	var missing []string
	for _, w := range words {
		if !strings.Contains(story, MarkWord(w)) {
			missing = append(missing, w)
		}
	}
	return missing
}

// ValidStory reports whether story is long enough and marks every word.
func ValidStory(story string, words []string) bool {
	return len(story) > MinStoryLength && len(MissingWords(story, words)) == 0
}
