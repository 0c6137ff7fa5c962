package models

import "time"

type Letter struct {
	ID                 string
	UserID             string
	Title              string
	LetterType         string
	Description        string
	TemplateData       map[string]string
	RecipientInfo      map[string]string
	SenderInfo         map[string]string
	Status             string
	Priority           string
	DueDate            *time.Time
	AIGeneratedContent *string
	FinalContent       *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// LetterInput carries the caller-supplied fields of a new letter. Empty
// status and priority are defaulted by the server.
type LetterInput struct {
	Title         string
	LetterType    string
	Description   string
	TemplateData  map[string]string
	RecipientInfo map[string]string
	SenderInfo    map[string]string
	Status        string
	Priority      string
	DueDate       *time.Time
}

// DraftRequest asks the server to fill a template. TemplateKey selects a
// catalog entry; TemplateBody is used when the key is empty.
type DraftRequest struct {
	Title             string
	TemplateKey       string
	TemplateBody      string
	TemplateFields    map[string]string
	AdditionalContext string
	Tone              string
	Length            string
}

type AffiliateStats struct {
	Code          string
	TotalSignups  int
	TotalEarnings float64
	TotalPoints   int
}

type Template struct {
	Key            string
	Label          string
	Description    string
	RequiredFields []string
	Body           string
}
