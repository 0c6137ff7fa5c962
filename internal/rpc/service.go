package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "letterdesk.v1.LetterDesk"

const (
	MethodPing                 = "Ping"
	MethodSignup               = "Signup"
	MethodLogin                = "Login"
	MethodLogout               = "Logout"
	MethodRefreshToken         = "RefreshToken"
	MethodRequestPasswordReset = "RequestPasswordReset"
	MethodResetPassword        = "ResetPassword"
	MethodWhoAmI               = "WhoAmI"
	MethodFetchLetters         = "FetchLetters"
	MethodCreateLetter         = "CreateLetter"
	MethodUpdateLetter         = "UpdateLetter"
	MethodDeleteLetter         = "DeleteLetter"
	MethodFetchAllLetters      = "FetchAllLetters"
	MethodFetchAllUsers        = "FetchAllUsers"
	MethodGenerateDraft        = "GenerateDraft"
	MethodAffiliateStats       = "AffiliateStats"
	MethodListTemplates        = "ListTemplates"
)

// FullMethod returns the gRPC path of a method, e.g. /letterdesk.v1.LetterDesk/Login.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// PublicMethods can be called without an access token.
var PublicMethods = map[string]bool{
	FullMethod(MethodPing):                 true,
	FullMethod(MethodSignup):               true,
	FullMethod(MethodLogin):                true,
	FullMethod(MethodRefreshToken):         true,
	FullMethod(MethodRequestPasswordReset): true,
	FullMethod(MethodResetPassword):        true,
	FullMethod(MethodListTemplates):        true,
}

// Server is implemented by the letterdesk gRPC handler.
type Server interface {
	Ping(context.Context, *Empty) (*PingResponse, error)
	Signup(context.Context, *SignupRequest) (*SessionResponse, error)
	Login(context.Context, *LoginRequest) (*SessionResponse, error)
	Logout(context.Context, *RefreshTokenRequest) (*Empty, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*SessionResponse, error)
	RequestPasswordReset(context.Context, *PasswordResetRequest) (*Empty, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*Empty, error)
	WhoAmI(context.Context, *Empty) (*User, error)
	FetchLetters(context.Context, *Empty) (*LettersResponse, error)
	CreateLetter(context.Context, *CreateLetterRequest) (*LetterResponse, error)
	UpdateLetter(context.Context, *Letter) (*LetterResponse, error)
	DeleteLetter(context.Context, *DeleteLetterRequest) (*Empty, error)
	FetchAllLetters(context.Context, *Empty) (*LettersResponse, error)
	FetchAllUsers(context.Context, *Empty) (*UsersResponse, error)
	GenerateDraft(context.Context, *GenerateDraftRequest) (*GenerateDraftResponse, error)
	AffiliateStats(context.Context, *Empty) (*AffiliateStatsResponse, error)
	ListTemplates(context.Context, *Empty) (*TemplatesResponse, error)
}

func unary[Req, Resp any](name string, call func(Server, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(Server), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(Server), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc is registered with grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, Server.Ping),
		unary(MethodSignup, Server.Signup),
		unary(MethodLogin, Server.Login),
		unary(MethodLogout, Server.Logout),
		unary(MethodRefreshToken, Server.RefreshToken),
		unary(MethodRequestPasswordReset, Server.RequestPasswordReset),
		unary(MethodResetPassword, Server.ResetPassword),
		unary(MethodWhoAmI, Server.WhoAmI),
		unary(MethodFetchLetters, Server.FetchLetters),
		unary(MethodCreateLetter, Server.CreateLetter),
		unary(MethodUpdateLetter, Server.UpdateLetter),
		unary(MethodDeleteLetter, Server.DeleteLetter),
		unary(MethodFetchAllLetters, Server.FetchAllLetters),
		unary(MethodFetchAllUsers, Server.FetchAllUsers),
		unary(MethodGenerateDraft, Server.GenerateDraft),
		unary(MethodAffiliateStats, Server.AffiliateStats),
		unary(MethodListTemplates, Server.ListTemplates),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "letterdesk/v1",
}

func RegisterServer(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}
