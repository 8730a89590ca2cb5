package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/printfleet/internal/logging"
	pb "github.com/dmitrijs2005/printfleet/internal/proto"
	"github.com/dmitrijs2005/printfleet/internal/server/auth"
	"github.com/dmitrijs2005/printfleet/internal/server/deployment"
	"github.com/dmitrijs2005/printfleet/internal/server/services"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address  string
	logger   logging.Logger
	auth     *auth.Service
	printers *services.PrinterService
	firmware *services.FirmwareService
	history  *services.HistoryService
	engine   *deployment.Engine
}

func NewGRPCServer(a string, l logging.Logger, as *auth.Service, ps *services.PrinterService,
	fs *services.FirmwareService, hs *services.HistoryService, e *deployment.Engine) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		auth:     as,
		printers: ps,
		firmware: fs,
		history:  hs,
		engine:   e,
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	pb.RegisterFleetControlServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
