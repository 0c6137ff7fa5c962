package grpc

import (
	"github.com/dmitrijs2005/letterdesk/internal/rpc"
	"github.com/dmitrijs2005/letterdesk/internal/server/models"
	"github.com/dmitrijs2005/letterdesk/internal/server/services"
	"github.com/dmitrijs2005/letterdesk/internal/server/templates"
)

func userToRPC(u *models.User) rpc.User {
	return rpc.User{
		ID:            u.ID,
		Email:         u.Email,
		Role:          string(u.Role),
		AffiliateCode: u.AffiliateCode,
		CreatedAt:     u.CreatedAt,
	}
}

func sessionToRPC(s *services.Session) *rpc.SessionResponse {
	return &rpc.SessionResponse{
		User:         userToRPC(s.User),
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
}

func letterToRPC(l *models.Letter) rpc.Letter {
	return rpc.Letter{
		ID:                 l.ID,
		UserID:             l.UserID,
		Title:              l.Title,
		LetterType:         l.LetterType,
		Description:        l.Description,
		TemplateData:       l.TemplateData,
		RecipientInfo:      l.RecipientInfo,
		SenderInfo:         l.SenderInfo,
		Status:             string(l.Status),
		Priority:           string(l.Priority),
		DueDate:            l.DueDate,
		AIGeneratedContent: l.AIGeneratedContent,
		FinalContent:       l.FinalContent,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

func lettersToRPC(ls []*models.Letter) []rpc.Letter {
	out := make([]rpc.Letter, 0, len(ls))
	for _, l := range ls {
		out = append(out, letterToRPC(l))
	}
	return out
}

func letterFromRPC(l *rpc.Letter) *models.Letter {
	return &models.Letter{
		ID:                 l.ID,
		UserID:             l.UserID,
		Title:              l.Title,
		LetterType:         l.LetterType,
		Description:        l.Description,
		TemplateData:       l.TemplateData,
		RecipientInfo:      l.RecipientInfo,
		SenderInfo:         l.SenderInfo,
		Status:             models.LetterStatus(l.Status),
		Priority:           models.Priority(l.Priority),
		DueDate:            l.DueDate,
		AIGeneratedContent: l.AIGeneratedContent,
		FinalContent:       l.FinalContent,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

func templateToRPC(t templates.Template) rpc.Template {
	return rpc.Template{
		Key:            t.Key,
		Label:          t.Label,
		Description:    t.Description,
		RequiredFields: t.RequiredFields,
		Body:           t.Body,
	}
}
