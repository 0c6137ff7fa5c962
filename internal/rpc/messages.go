package rpc

import "time"

type Empty struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	AffiliateCode string    `json:"affiliateCode,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type SignupRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          string `json:"role,omitempty"`
	AffiliateCode string `json:"affiliateCode,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type Letter struct {
	ID                 string            `json:"id"`
	UserID             string            `json:"userId"`
	Title              string            `json:"title"`
	LetterType         string            `json:"letterType"`
	Description        string            `json:"description"`
	TemplateData       map[string]string `json:"templateData"`
	RecipientInfo      map[string]string `json:"recipientInfo"`
	SenderInfo         map[string]string `json:"senderInfo"`
	Status             string            `json:"status"`
	Priority           string            `json:"priority"`
	DueDate            *time.Time        `json:"dueDate,omitempty"`
	AIGeneratedContent *string           `json:"aiGeneratedContent,omitempty"`
	FinalContent       *string           `json:"finalContent,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

type CreateLetterRequest struct {
	Title         string            `json:"title"`
	LetterType    string            `json:"letterType"`
	Description   string            `json:"description"`
	TemplateData  map[string]string `json:"templateData,omitempty"`
	RecipientInfo map[string]string `json:"recipientInfo,omitempty"`
	SenderInfo    map[string]string `json:"senderInfo,omitempty"`
	Status        string            `json:"status,omitempty"`
	Priority      string            `json:"priority,omitempty"`
	DueDate       *time.Time        `json:"dueDate,omitempty"`
}

type LetterResponse struct {
	Letter Letter `json:"letter"`
}

type LettersResponse struct {
	Letters []Letter `json:"letters"`
}

type DeleteLetterRequest struct {
	ID string `json:"id"`
}

type UsersResponse struct {
	Users []User `json:"users"`
}

type GenerateDraftRequest struct {
	Title             string            `json:"title"`
	TemplateKey       string            `json:"templateKey,omitempty"`
	TemplateBody      string            `json:"templateBody,omitempty"`
	TemplateFields    map[string]string `json:"templateFields,omitempty"`
	AdditionalContext string            `json:"additionalContext,omitempty"`
	Tone              string            `json:"tone,omitempty"`
	Length            string            `json:"length,omitempty"`
}

type GenerateDraftResponse struct {
	Text string `json:"text"`
}

type AffiliateStatsResponse struct {
	Code          string  `json:"code"`
	TotalSignups  int     `json:"totalSignups"`
	TotalEarnings float64 `json:"totalEarnings"`
	TotalPoints   int     `json:"totalPoints"`
}

type Template struct {
	Key            string   `json:"key"`
	Label          string   `json:"label"`
	Description    string   `json:"description"`
	RequiredFields []string `json:"requiredFields"`
	Body           string   `json:"body"`
}

type TemplatesResponse struct {
	Templates []Template `json:"templates"`
}
