package grpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"goldshop/app/category"
	"goldshop/domain"
)

const CategoryServiceName = "goldshop.inventory.v1.CategoryService"

// CategoryServiceServer exposes the category tree read-only. Categories are
// returned as JSON-shaped structs, the same fields the REST API serves.
type CategoryServiceServer interface {
	GetTree(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
	GetCategory(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

var CategoryServiceDesc = grpc.ServiceDesc{
	ServiceName: CategoryServiceName,
	HandlerType: (*CategoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetTree", Handler: getTreeHandler},
		{MethodName: "GetCategory", Handler: getCategoryHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "goldshop/inventory/v1/category.proto",
}

func RegisterCategoryServiceServer(r grpc.ServiceRegistrar, srv CategoryServiceServer) {
	r.RegisterService(&CategoryServiceDesc, srv)
}

func getTreeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CategoryServiceServer).GetTree(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + CategoryServiceName + "/GetTree"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CategoryServiceServer).GetTree(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getCategoryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CategoryServiceServer).GetCategory(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + CategoryServiceName + "/GetCategory"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CategoryServiceServer).GetCategory(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

type categoryService struct {
	repository category.TreeReader
}

func NewCategoryServiceServer(repository category.TreeReader) CategoryServiceServer {
	return &categoryService{repository: repository}
}

func (s *categoryService) GetTree(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	forest, err := category.Forest(ctx, s.repository)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to load categories")
	}

	list := &structpb.ListValue{}
	if err := toProto(forest, list); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return list, nil
}

func (s *categoryService) GetCategory(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "category id is required")
	}

	forest, err := category.Forest(ctx, s.repository)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to load categories")
	}
	node, ok := domain.NewTree(forest).Node(req.GetValue())
	if !ok {
		return nil, status.Error(codes.NotFound, "category not found")
	}

	out := &structpb.Struct{}
	if err := toProto(node, out); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// toProto converts v through its JSON form into a structpb message.
func toProto(v any, msg proto.Message) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}
	return protojson.Unmarshal(raw, msg)
}

// CategoryServiceClient calls CategoryService over a client connection.
type CategoryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCategoryServiceClient(cc grpc.ClientConnInterface) *CategoryServiceClient {
	return &CategoryServiceClient{cc: cc}
}

func (c *CategoryServiceClient) GetTree(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, "/"+CategoryServiceName+"/GetTree", &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CategoryServiceClient) GetCategory(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+CategoryServiceName+"/GetCategory", wrapperspb.String(id), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
