// Package api is the client side of the letterdesk gRPC transport. It
// converts between wire messages and client models, attaches the access
// token to outgoing calls and maps status errors into the error taxonomy.
package api

import (
	"context"
	"time"

	"github.com/dmitrijs2005/letterdesk/internal/client/models"
	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/dmitrijs2005/letterdesk/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// Session is the outcome of a successful signup, login or refresh.
type Session struct {
	User         models.User
	AccessToken  string
	RefreshToken string
}

// Client talks to a letterdesk server. Each call is bounded by timeout when
// it is positive.
type Client struct {
	conn    *grpc.ClientConn
	stub    *rpc.Client
	timeout time.Duration
}

// Dial creates a lazily connecting client for addr.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	c := NewWithConn(conn, timeout)
	c.conn = conn
	return c, nil
}

// NewWithConn wraps an existing connection. Close does not close it.
func NewWithConn(cc grpc.ClientConnInterface, timeout time.Duration) *Client {
	return &Client{stub: rpc.NewClient(cc), timeout: timeout}
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// authed bounds ctx and attaches token.
func (c *Client) authed(ctx context.Context, token string) (context.Context, context.CancelFunc) {
	ctx, cancel := c.bound(ctx)
	return withAccessToken(ctx, token), cancel
}

// Ping reports whether the server answers.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	resp, err := c.stub.Ping(ctx)
	if err != nil {
		return mapError(err)
	}
	if resp.Status != "OK" {
		return &common.RemoteServiceError{Kind: common.RemoteUnavailable, Message: "server status " + resp.Status}
	}
	return nil
}

func (c *Client) Signup(ctx context.Context, email, password string, role models.Role, affiliateCode string) (Session, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	resp, err := c.stub.Signup(ctx, &rpc.SignupRequest{
		Email:         email,
		Password:      password,
		Role:          string(role),
		AffiliateCode: affiliateCode,
	})
	if err != nil {
		return Session{}, mapError(err)
	}
	return sessionFromWire(resp), nil
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	resp, err := c.stub.Login(ctx, &rpc.LoginRequest{Email: email, Password: password})
	if err != nil {
		return Session{}, mapError(err)
	}
	return sessionFromWire(resp), nil
}

func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	return mapError(c.stub.Logout(ctx, &rpc.RefreshTokenRequest{RefreshToken: refreshToken}))
}

// Refresh rotates the refresh token and returns a new session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	resp, err := c.stub.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return Session{}, mapError(err)
	}
	return sessionFromWire(resp), nil
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	return mapError(c.stub.RequestPasswordReset(ctx, &rpc.PasswordResetRequest{Email: email}))
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	return mapError(c.stub.ResetPassword(ctx, &rpc.ResetPasswordRequest{Token: token, NewPassword: newPassword}))
}

func (c *Client) WhoAmI(ctx context.Context, accessToken string) (models.User, error) {
	ctx, cancel := c.authed(ctx, accessToken)
	defer cancel()

	resp, err := c.stub.WhoAmI(ctx)
	if err != nil {
		return models.User{}, mapError(err)
	}
	return userFromWire(resp), nil
}

func (c *Client) FetchLetters(ctx context.Context, accessToken string) ([]models.Letter, error) {
	ctx, cancel := c.authed(ctx, accessToken)
	defer cancel()

	resp, err := c.stub.FetchLetters(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return lettersFromWire(resp.Letters), nil
}

func (c *Client) CreateLetter(ctx context.Context, accessToken string, in models.LetterInput) (models.Letter, error) {
	ctx, cancel := c.authed(ctx, accessToken)
	defer cancel()

	resp, err := c.stub.CreateLetter(ctx, &rpc.CreateLetterRequest{
		Title:         in.Title,
		LetterType:    in.LetterType,
		Description:   in.Description,
		TemplateData:  in.TemplateData,
		RecipientInfo: in.RecipientInfo,
		SenderInfo:    in.SenderInfo,
		Status:        in.Status,
		Priority:      in.Priority,
		DueDate:       in.DueDate,
	})
	if err != nil {
		return models.Letter{}, mapError(err)
	}
	return letterFromWire(resp.Letter), nil
}

func (c *Client) UpdateLetter(ctx context.Context, accessToken string, l models.Letter) (models.Letter, error) {
	ctx, cancel := c.authed(ctx, accessToken)
	defer cancel()

	w := letterToWire(l)
	resp, err := c.stub.UpdateLetter(ctx, &w)
	if err != nil {
		return models.Letter{}, mapError(err)
	}
	return letterFromWire(resp.Letter), nil
}

func (c *Client) DeleteLetter(ctx context.Context, accessToken, id string) error {
	ctx, cancel := c.authed(ctx, accessToken)
	defer cancel()

	return mapError(c.stub.DeleteLetter(ctx, &rpc.DeleteLetterRequest{ID: id}))
}

func (c *Client) FetchAllLetters(ctx context.Context, accessToken string) ([]models.Letter, error) {
	ctx, cancel := c.authed(ctx, accessToken)
	defer cancel()

	resp, err := c.stub.FetchAllLetters(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return lettersFromWire(resp.Letters), nil
}

func (c *Client) FetchAllUsers(ctx context.Context, accessToken string) ([]models.User, error) {
	ctx, cancel := c.authed(ctx, accessToken)
	defer cancel()

	resp, err := c.stub.FetchAllUsers(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	users := make([]models.User, 0, len(resp.Users))
	for i := range resp.Users {
		users = append(users, userFromWire(&resp.Users[i]))
	}
	return users, nil
}

func (c *Client) GenerateDraft(ctx context.Context, accessToken string, r models.DraftRequest) (string, error) {
	ctx, cancel := c.authed(ctx, accessToken)
	defer cancel()

	resp, err := c.stub.GenerateDraft(ctx, &rpc.GenerateDraftRequest{
		Title:             r.Title,
		TemplateKey:       r.TemplateKey,
		TemplateBody:      r.TemplateBody,
		TemplateFields:    r.TemplateFields,
		AdditionalContext: r.AdditionalContext,
		Tone:              r.Tone,
		Length:            r.Length,
	})
	if err != nil {
		return "", mapError(err)
	}
	return resp.Text, nil
}

func (c *Client) AffiliateStats(ctx context.Context, accessToken string) (models.AffiliateStats, error) {
	ctx, cancel := c.authed(ctx, accessToken)
	defer cancel()

	resp, err := c.stub.AffiliateStats(ctx)
	if err != nil {
		return models.AffiliateStats{}, mapError(err)
	}
	return models.AffiliateStats{
		Code:          resp.Code,
		TotalSignups:  resp.TotalSignups,
		TotalEarnings: resp.TotalEarnings,
		TotalPoints:   resp.TotalPoints,
	}, nil
}

func (c *Client) ListTemplates(ctx context.Context) ([]models.Template, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	resp, err := c.stub.ListTemplates(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]models.Template, 0, len(resp.Templates))
	for _, t := range resp.Templates {
		out = append(out, models.Template{
			Key:            t.Key,
			Label:          t.Label,
			Description:    t.Description,
			RequiredFields: t.RequiredFields,
			Body:           t.Body,
		})
	}
	return out, nil
}
