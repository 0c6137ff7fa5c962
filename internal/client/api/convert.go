package api

import (
	"github.com/dmitrijs2005/letterdesk/internal/client/models"
	"github.com/dmitrijs2005/letterdesk/internal/rpc"
)

func sessionFromWire(r *rpc.SessionResponse) Session {
	return Session{
		User:         userFromWire(&r.User),
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
	}
}

// userFromWire keeps an unknown role verbatim; capability checks treat it
// as the least privileged.
func userFromWire(u *rpc.User) models.User {
	role, err := models.ParseRole(u.Role)
	if err != nil {
		role = models.Role(u.Role)
	}
	return models.User{
		ID:            u.ID,
		Email:         u.Email,
		Role:          role,
		AffiliateCode: u.AffiliateCode,
		CreatedAt:     u.CreatedAt,
	}
}

func letterFromWire(l rpc.Letter) models.Letter {
	return models.Letter{
		ID:                 l.ID,
		UserID:             l.UserID,
		Title:              l.Title,
		LetterType:         l.LetterType,
		Description:        l.Description,
		TemplateData:       l.TemplateData,
		RecipientInfo:      l.RecipientInfo,
		SenderInfo:         l.SenderInfo,
		Status:             l.Status,
		Priority:           l.Priority,
		DueDate:            l.DueDate,
		AIGeneratedContent: l.AIGeneratedContent,
		FinalContent:       l.FinalContent,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

func lettersFromWire(ls []rpc.Letter) []models.Letter {
	out := make([]models.Letter, 0, len(ls))
	for _, l := range ls {
		out = append(out, letterFromWire(l))
	}
	return out
}

func letterToWire(l models.Letter) rpc.Letter {
	return rpc.Letter{
		ID:                 l.ID,
		UserID:             l.UserID,
		Title:              l.Title,
		LetterType:         l.LetterType,
		Description:        l.Description,
		TemplateData:       l.TemplateData,
		RecipientInfo:      l.RecipientInfo,
		SenderInfo:         l.SenderInfo,
		Status:             l.Status,
		Priority:           l.Priority,
		DueDate:            l.DueDate,
		AIGeneratedContent: l.AIGeneratedContent,
		FinalContent:       l.FinalContent,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}
