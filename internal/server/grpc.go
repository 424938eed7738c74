package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	coregrpc "github.com/winterSteve25/props/pkg/core/grpc"
)

// Fully qualified service and method names
const (
	ServiceName  = "props.v1.Props"
	ParseMethod  = "/props.v1.Props/Parse"
	TokensMethod = "/props.v1.Props/Tokens"
)

// PropsServer is the server side of props.v1.Props. Requests and
// responses are protobuf Structs:
//
//	Parse  {source, name?} -> {id, ast, diagnostics, types}
//	Tokens {source}        -> {tokens}
type PropsServer interface {
	Parse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Tokens(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes props.v1.Props for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PropsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Parse", Handler: parseHandler},
		{MethodName: "Tokens", Handler: tokensHandler},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterPropsServer registers srv on s
func RegisterPropsServer(s grpc.ServiceRegistrar, srv PropsServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func parseHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PropsServer).Parse(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ParseMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PropsServer).Parse(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func tokensHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PropsServer).Tokens(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TokensMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PropsServer).Tokens(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// GRPCHandler adapts a Service to PropsServer
type GRPCHandler struct {
	service *Service
}

// NewGRPCHandler creates the gRPC handler for svc
func NewGRPCHandler(svc *Service) *GRPCHandler {
	return &GRPCHandler{service: svc}
}

// Parse runs the request source through the pipeline
func (h *GRPCHandler) Parse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	source, err := sourceField(req)
	if err != nil {
		return nil, err
	}
	name := req.GetFields()["name"].GetStringValue()

	unit, err := h.service.Parse(ctx, name, source)
	if err != nil {
		return nil, coregrpc.ToStatus(err)
	}

	resp, err := structpb.NewStruct(unit.Export())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode result: %v", err)
	}
	return resp, nil
}

// Tokens lexes the request source
func (h *GRPCHandler) Tokens(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	source, err := sourceField(req)
	if err != nil {
		return nil, err
	}

	items, err := h.service.Tokens(source)
	if err != nil {
		return nil, coregrpc.ToStatus(err)
	}

	resp, err := structpb.NewStruct(map[string]interface{}{"tokens": ExportTokens(items)})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode result: %v", err)
	}
	return resp, nil
}

func sourceField(req *structpb.Struct) (string, error) {
	v, ok := req.GetFields()["source"]
	if !ok {
		return "", status.Error(codes.InvalidArgument, "source is required")
	}
	if _, isString := v.GetKind().(*structpb.Value_StringValue); !isString {
		return "", status.Error(codes.InvalidArgument, "source must be a string")
	}
	return v.GetStringValue(), nil
}

// PropsClient calls props.v1.Props
type PropsClient struct {
	cc grpc.ClientConnInterface
}

// NewPropsClient creates a client on cc
func NewPropsClient(cc grpc.ClientConnInterface) *PropsClient {
	return &PropsClient{cc: cc}
}

// Parse sends source to the service and returns the exported unit
func (c *PropsClient) Parse(ctx context.Context, name, source string, opts ...grpc.CallOption) (map[string]interface{}, error) {
	req, err := structpb.NewStruct(map[string]interface{}{"source": source, "name": name})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ParseMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

// Tokens sends source to the service and returns the token list
func (c *PropsClient) Tokens(ctx context.Context, source string, opts ...grpc.CallOption) ([]interface{}, error) {
	req, err := structpb.NewStruct(map[string]interface{}{"source": source})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, TokensMethod, req, out, opts...); err != nil {
		return nil, err
	}
	tokens, _ := out.AsMap()["tokens"].([]interface{})
	return tokens, nil
}
