package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/printfleet/internal/common"
	pb "github.com/dmitrijs2005/printfleet/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// fleetAPI is the generated-style client surface; tests substitute a fake.
type fleetAPI interface {
	Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListPrinters(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListFirmware(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetFirmware(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	DeployFirmware(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	CancelFirmware(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	HistoryStats(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      fleetAPI

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if t := s.token(); t != "" && method != pb.FullMethod(pb.MethodLogin) {
		ctx = withAccessToken(ctx, t)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewFleetClient dials endpointURL lazily; the first call opens the connection.
func NewFleetClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	conn, err := grpc.NewClient(endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor))
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewFleetControlClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// LoggedIn reports whether an access token is held.
func (s *GRPCClient) LoggedIn() bool {
	return s.token() != ""
}

func (s *GRPCClient) Login(ctx context.Context, userName string, password []byte) (*Session, error) {
	req, err := structpb.NewStruct(map[string]any{
		"username": userName,
		"password": string(password),
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	fields := resp.GetFields()
	s.mu.Lock()
	s.accessToken = fields["access_token"].GetStringValue()
	s.mu.Unlock()

	return &Session{
		Username: fields["username"].GetStringValue(),
		Role:     fields["role"].GetStringValue(),
	}, nil
}

// Logout forgets the access token. Tokens are stateless on the server.
func (s *GRPCClient) Logout() {
	s.mu.Lock()
	s.accessToken = ""
	s.mu.Unlock()
}

type itemList[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func (s *GRPCClient) ListPrinters(ctx context.Context) ([]Printer, error) {
	resp, err := s.client.ListPrinters(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	var out itemList[Printer]
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (s *GRPCClient) ListFirmware(ctx context.Context) ([]Firmware, error) {
	resp, err := s.client.ListFirmware(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	var out itemList[Firmware]
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (s *GRPCClient) GetFirmware(ctx context.Context, id string) (*Firmware, error) {
	return s.firmwareCall(ctx, s.client.GetFirmware, id)
}

func (s *GRPCClient) Deploy(ctx context.Context, id string) (*Firmware, error) {
	return s.firmwareCall(ctx, s.client.DeployFirmware, id)
}

func (s *GRPCClient) Cancel(ctx context.Context, id string) (*Firmware, error) {
	return s.firmwareCall(ctx, s.client.CancelFirmware, id)
}

func (s *GRPCClient) firmwareCall(
	ctx context.Context,
	call func(context.Context, *wrapperspb.StringValue, ...grpc.CallOption) (*structpb.Struct, error),
	id string,
) (*Firmware, error) {
	resp, err := call(ctx, wrapperspb.String(id))
	if err != nil {
		return nil, s.mapError(err)
	}
	var f Firmware
	if err := decode(resp, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *GRPCClient) HistoryStats(ctx context.Context) (*HistoryStats, error) {
	resp, err := s.client.HistoryStats(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	var st HistoryStats
	if err := decode(resp, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// decode maps a Struct response onto a typed value through its JSON form.
func decode(in *structpb.Struct, out any) error {
	b, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, st.Message())
	case codes.InvalidArgument, codes.FailedPrecondition, codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
