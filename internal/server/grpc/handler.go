package grpc

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/printfleet/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// toStatus maps service errors onto gRPC codes.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrInvalidState):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, common.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	default:
		s.logger.Error(ctx, err.Error())
		return status.Error(codes.Internal, "internal error")
	}
}

// toStruct converts v through its JSON form, so clients see the same
// field names as the REST API.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}

func items[T any](list []T) map[string]any {
	if list == nil {
		list = []T{}
	}
	return map[string]any{"items": list, "count": len(list)}
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	fields := req.GetFields()
	username := fields["username"].GetStringValue()
	password := []byte(fields["password"].GetStringValue())
	defer common.WipeByteArray(password)

	token, user, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Logged in", "username", user.Username)
	return toStruct(map[string]any{
		"access_token": token,
		"username":     user.Username,
		"role":         user.Role,
	})
}

func (s *GRPCServer) ListPrinters(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	list, err := s.printers.List(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toStruct(items(list))
}

func (s *GRPCServer) ListFirmware(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	list, err := s.firmware.List(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toStruct(items(list))
}

func (s *GRPCServer) GetFirmware(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	f, err := s.firmware.Get(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toStruct(f)
}

func (s *GRPCServer) DeployFirmware(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	f, err := s.engine.Deploy(ctx, req.GetValue(), userFromContext(ctx).Username)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toStruct(f)
}

func (s *GRPCServer) CancelFirmware(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	f, err := s.engine.Cancel(ctx, req.GetValue(), userFromContext(ctx).Username)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toStruct(f)
}

func (s *GRPCServer) HistoryStats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st, err := s.history.Stats(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toStruct(st)
}
