package dto

import "github.com/google/uuid"

// SentimentWriteRequest creates or updates the requester's edge toward
// another user. The from side is always taken from the access token.
type SentimentWriteRequest struct {
	SentimentTo uuid.UUID `json:"sentiment_to"`
	Sentiment   string    `json:"sentiment"`
}

// ProfileViewWriteRequest records that the requester viewed a profile.
type ProfileViewWriteRequest struct {
	Viewee uuid.UUID `json:"viewee"`
}
