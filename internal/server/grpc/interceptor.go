package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/printfleet/internal/common"
	pb "github.com/dmitrijs2005/printfleet/internal/proto"
	"github.com/dmitrijs2005/printfleet/internal/server/auth"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userKey ctxKey = "user"

var adminMethods = map[string]bool{
	pb.FullMethod(pb.MethodListFirmware):   true,
	pb.FullMethod(pb.MethodGetFirmware):    true,
	pb.FullMethod(pb.MethodDeployFirmware): true,
	pb.FullMethod(pb.MethodCancelFirmware): true,
}

// accessTokenInterceptor authenticates every call except Login.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if info.FullMethod == pb.FullMethod(pb.MethodLogin) {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	user, err := s.auth.Verify(accessToken)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, "token expired")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	if adminMethods[info.FullMethod] {
		if err := auth.Authorize(user, models.RoleAdmin); err != nil {
			return nil, status.Error(codes.PermissionDenied, "admin access required")
		}
	}

	return handler(context.WithValue(ctx, userKey, user), req)
}

func userFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}
