package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// Client is a typed stub over a gRPC connection. Every call uses the JSON
// codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Ping(ctx context.Context, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, &Empty{}, opts)
}

func (c *Client) Signup(ctx context.Context, in *SignupRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, MethodSignup, in, opts)
}

func (c *Client) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *Client) Logout(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c.cc, MethodLogout, in, opts)
	return err
}

func (c *Client) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *Client) RequestPasswordReset(ctx context.Context, in *PasswordResetRequest, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c.cc, MethodRequestPasswordReset, in, opts)
	return err
}

func (c *Client) ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c.cc, MethodResetPassword, in, opts)
	return err
}

func (c *Client) WhoAmI(ctx context.Context, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, MethodWhoAmI, &Empty{}, opts)
}

func (c *Client) FetchLetters(ctx context.Context, opts ...grpc.CallOption) (*LettersResponse, error) {
	return invoke[LettersResponse](ctx, c.cc, MethodFetchLetters, &Empty{}, opts)
}

func (c *Client) CreateLetter(ctx context.Context, in *CreateLetterRequest, opts ...grpc.CallOption) (*LetterResponse, error) {
	return invoke[LetterResponse](ctx, c.cc, MethodCreateLetter, in, opts)
}

func (c *Client) UpdateLetter(ctx context.Context, in *Letter, opts ...grpc.CallOption) (*LetterResponse, error) {
	return invoke[LetterResponse](ctx, c.cc, MethodUpdateLetter, in, opts)
}

func (c *Client) DeleteLetter(ctx context.Context, in *DeleteLetterRequest, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c.cc, MethodDeleteLetter, in, opts)
	return err
}

func (c *Client) FetchAllLetters(ctx context.Context, opts ...grpc.CallOption) (*LettersResponse, error) {
	return invoke[LettersResponse](ctx, c.cc, MethodFetchAllLetters, &Empty{}, opts)
}

func (c *Client) FetchAllUsers(ctx context.Context, opts ...grpc.CallOption) (*UsersResponse, error) {
	return invoke[UsersResponse](ctx, c.cc, MethodFetchAllUsers, &Empty{}, opts)
}

func (c *Client) GenerateDraft(ctx context.Context, in *GenerateDraftRequest, opts ...grpc.CallOption) (*GenerateDraftResponse, error) {
	return invoke[GenerateDraftResponse](ctx, c.cc, MethodGenerateDraft, in, opts)
}

func (c *Client) AffiliateStats(ctx context.Context, opts ...grpc.CallOption) (*AffiliateStatsResponse, error) {
	return invoke[AffiliateStatsResponse](ctx, c.cc, MethodAffiliateStats, &Empty{}, opts)
}

func (c *Client) ListTemplates(ctx context.Context, opts ...grpc.CallOption) (*TemplatesResponse, error) {
	return invoke[TemplatesResponse](ctx, c.cc, MethodListTemplates, &Empty{}, opts)
}
