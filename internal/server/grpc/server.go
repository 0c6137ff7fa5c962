// Package grpc exposes the letterdesk services over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/letterdesk/internal/logging"
	"github.com/dmitrijs2005/letterdesk/internal/rpc"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address   string
	users     userSvc
	letters   letterSvc
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, us userSvc, ls letterSvc, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		letters:   ls,
		jwtSecret: []byte(secretKey),
	}
}

// newServer builds the grpc.Server with the interceptor chain and the
// letterdesk service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.tracingInterceptor,
		s.metricsInterceptor,
		s.accessTokenInterceptor,
	))
	rpc.RegisterServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
