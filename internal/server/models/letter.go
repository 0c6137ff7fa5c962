package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/letterdesk/internal/common"
)

type LetterStatus string

const (
	StatusDraft     LetterStatus = "draft"
	StatusSubmitted LetterStatus = "submitted"
	StatusInReview  LetterStatus = "in_review"
	StatusApproved  LetterStatus = "approved"
	StatusCompleted LetterStatus = "completed"
	StatusCancelled LetterStatus = "cancelled"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// nextStatus holds the forward step of the workflow. Cancellation is handled
// separately since it is reachable from every non-terminal status.
var nextStatus = map[LetterStatus]LetterStatus{
	StatusDraft:     StatusSubmitted,
	StatusSubmitted: StatusInReview,
	StatusInReview:  StatusApproved,
	StatusApproved:  StatusCompleted,
}

func (s LetterStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusInReview, StatusApproved, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s LetterStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CheckTransition validates moving a letter from one status to another.
// Keeping the same status is always allowed.
func CheckTransition(from, to LetterStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", common.ErrValidation, to)
	}
	if from == to {
		return nil
	}
	if from.Terminal() {
		return fmt.Errorf("%w: %s is terminal", common.ErrInvalidTransition, from)
	}
	if to == StatusCancelled || nextStatus[from] == to {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, from, to)
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Letter is a letter request owned by exactly one user.
type Letter struct {
	ID                 string
	UserID             string
	Title              string
	LetterType         string
	Description        string
	TemplateData       map[string]string
	RecipientInfo      map[string]string
	SenderInfo         map[string]string
	Status             LetterStatus
	Priority           Priority
	DueDate            *time.Time
	AIGeneratedContent *string
	FinalContent       *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// LetterTypes lists the built-in letter kinds. Template catalog keys are
// accepted as letter types as well.
var LetterTypes = []string{
	"demand_letter",
	"cease_and_desist",
	"defamation_slander",
	"breach_of_contract",
	"employment_dispute",
	"landlord_tenant",
	"debt_collection",
	"insurance_claim",
	"other",
}
