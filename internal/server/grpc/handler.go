package grpc

import (
	"context"

	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/dmitrijs2005/letterdesk/internal/rpc"
	"github.com/dmitrijs2005/letterdesk/internal/server/auth"
	"github.com/dmitrijs2005/letterdesk/internal/server/generation"
	"github.com/dmitrijs2005/letterdesk/internal/server/models"
	"github.com/dmitrijs2005/letterdesk/internal/server/services"
	"github.com/dmitrijs2005/letterdesk/internal/server/templates"
)

type userSvc interface {
	Signup(ctx context.Context, email, password string, role models.Role, affiliateCode string) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (*services.Session, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	WhoAmI(ctx context.Context, userID string) (*models.User, error)
}

type letterSvc interface {
	FetchLetters(ctx context.Context, p auth.Principal) ([]*models.Letter, error)
	CreateLetter(ctx context.Context, p auth.Principal, in services.LetterInput) (*models.Letter, error)
	UpdateLetter(ctx context.Context, p auth.Principal, upd *models.Letter) (*models.Letter, error)
	DeleteLetter(ctx context.Context, p auth.Principal, id string) error
	FetchAllLetters(ctx context.Context, p auth.Principal) ([]*models.Letter, error)
	FetchAllUsers(ctx context.Context, p auth.Principal) ([]*models.User, error)
	GenerateDraft(ctx context.Context, p auth.Principal, in services.DraftRequest) (string, error)
	AffiliateStats(ctx context.Context, p auth.Principal) (models.AffiliateStats, error)
	ListTemplates(ctx context.Context) []templates.Template
}

var _ rpc.Server = (*GRPCServer)(nil)

func principal(ctx context.Context) (auth.Principal, error) {
	p, ok := auth.FromContext(ctx)
	if !ok {
		return auth.Principal{}, rpc.StatusFromError(common.ErrNotAuthenticated)
	}
	return p, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *rpc.Empty) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Signup(ctx context.Context, req *rpc.SignupRequest) (*rpc.SessionResponse, error) {
	s.logger.Info(ctx, "Signup request", "email", req.Email)

	sess, err := s.users.Signup(ctx, req.Email, req.Password, models.Role(req.Role), req.AffiliateCode)
	if err != nil {
		return nil, rpc.StatusFromError(err)
	}

	s.logger.Info(ctx, "Signed up", "user_id", sess.User.ID)
	return sessionToRPC(sess), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.SessionResponse, error) {
	sess, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, rpc.StatusFromError(err)
	}
	return sessionToRPC(sess), nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *rpc.RefreshTokenRequest) (*rpc.Empty, error) {
	if err := s.users.Logout(ctx, req.RefreshToken); err != nil {
		return nil, rpc.StatusFromError(err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *rpc.RefreshTokenRequest) (*rpc.SessionResponse, error) {
	sess, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, rpc.StatusFromError(err)
	}
	return sessionToRPC(sess), nil
}

func (s *GRPCServer) RequestPasswordReset(ctx context.Context, req *rpc.PasswordResetRequest) (*rpc.Empty, error) {
	if err := s.users.RequestPasswordReset(ctx, req.Email); err != nil {
		return nil, rpc.StatusFromError(err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *rpc.ResetPasswordRequest) (*rpc.Empty, error) {
	if err := s.users.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return nil, rpc.StatusFromError(err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *rpc.Empty) (*rpc.User, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.users.WhoAmI(ctx, p.UserID)
	if err != nil {
		return nil, rpc.StatusFromError(err)
	}
	out := userToRPC(u)
	return &out, nil
}

func (s *GRPCServer) FetchLetters(ctx context.Context, _ *rpc.Empty) (*rpc.LettersResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	ls, err := s.letters.FetchLetters(ctx, p)
	if err != nil {
		return nil, rpc.StatusFromError(err)
	}
	return &rpc.LettersResponse{Letters: lettersToRPC(ls)}, nil
}

func (s *GRPCServer) CreateLetter(ctx context.Context, req *rpc.CreateLetterRequest) (*rpc.LetterResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	l, err := s.letters.CreateLetter(ctx, p, services.LetterInput{
		Title:         req.Title,
		LetterType:    req.LetterType,
		Description:   req.Description,
		TemplateData:  req.TemplateData,
		RecipientInfo: req.RecipientInfo,
		SenderInfo:    req.SenderInfo,
		Status:        models.LetterStatus(req.Status),
		Priority:      models.Priority(req.Priority),
		DueDate:       req.DueDate,
	})
	if err != nil {
		return nil, rpc.StatusFromError(err)
	}
	return &rpc.LetterResponse{Letter: letterToRPC(l)}, nil
}

func (s *GRPCServer) UpdateLetter(ctx context.Context, req *rpc.Letter) (*rpc.LetterResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	l, err := s.letters.UpdateLetter(ctx, p, letterFromRPC(req))
	if err != nil {
		return nil, rpc.StatusFromError(err)
	}
	return &rpc.LetterResponse{Letter: letterToRPC(l)}, nil
}

func (s *GRPCServer) DeleteLetter(ctx context.Context, req *rpc.DeleteLetterRequest) (*rpc.Empty, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.letters.DeleteLetter(ctx, p, req.ID); err != nil {
		return nil, rpc.StatusFromError(err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) FetchAllLetters(ctx context.Context, _ *rpc.Empty) (*rpc.LettersResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	ls, err := s.letters.FetchAllLetters(ctx, p)
	if err != nil {
		return nil, rpc.StatusFromError(err)
	}
	return &rpc.LettersResponse{Letters: lettersToRPC(ls)}, nil
}

func (s *GRPCServer) FetchAllUsers(ctx context.Context, _ *rpc.Empty) (*rpc.UsersResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	us, err := s.letters.FetchAllUsers(ctx, p)
	if err != nil {
		return nil, rpc.StatusFromError(err)
	}
	out := make([]rpc.User, 0, len(us))
	for _, u := range us {
		out = append(out, userToRPC(u))
	}
	return &rpc.UsersResponse{Users: out}, nil
}

func (s *GRPCServer) GenerateDraft(ctx context.Context, req *rpc.GenerateDraftRequest) (*rpc.GenerateDraftResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	text, err := s.letters.GenerateDraft(ctx, p, services.DraftRequest{
		Title:             req.Title,
		TemplateKey:       req.TemplateKey,
		TemplateBody:      req.TemplateBody,
		TemplateFields:    req.TemplateFields,
		AdditionalContext: req.AdditionalContext,
		Tone:              generation.Tone(req.Tone),
		Length:            generation.Length(req.Length),
	})
	if err != nil {
		return nil, rpc.StatusFromError(err)
	}
	return &rpc.GenerateDraftResponse{Text: text}, nil
}

func (s *GRPCServer) AffiliateStats(ctx context.Context, _ *rpc.Empty) (*rpc.AffiliateStatsResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.letters.AffiliateStats(ctx, p)
	if err != nil {
		return nil, rpc.StatusFromError(err)
	}
	return &rpc.AffiliateStatsResponse{
		Code:          st.Code,
		TotalSignups:  st.TotalSignups,
		TotalEarnings: st.TotalEarnings,
		TotalPoints:   st.TotalPoints,
	}, nil
}

func (s *GRPCServer) ListTemplates(ctx context.Context, _ *rpc.Empty) (*rpc.TemplatesResponse, error) {
	ts := s.letters.ListTemplates(ctx)
	out := make([]rpc.Template, 0, len(ts))
	for _, t := range ts {
		out = append(out, templateToRPC(t))
	}
	return &rpc.TemplatesResponse{Templates: out}, nil
}
