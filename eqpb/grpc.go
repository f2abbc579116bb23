package eqpb

import (
	"context"

	"google.golang.org/grpc"
)

// InclusionServer is the interface service implementations satisfy.
type InclusionServer interface {
	GetKeccakInclusion(context.Context, *GetKeccakInclusionRequest) (*GetKeccakInclusionResponse, error)
}

// InclusionClient is the interface callers use.
type InclusionClient interface {
	GetKeccakInclusion(ctx context.Context, in *GetKeccakInclusionRequest, opts ...grpc.CallOption) (*GetKeccakInclusionResponse, error)
}

type inclusionClient struct {
	cc grpc.ClientConnInterface
}

// NewInclusionClient wraps a ClientConn as an InclusionClient.
func NewInclusionClient(cc grpc.ClientConnInterface) InclusionClient {
	return &inclusionClient{cc: cc}
}

func (c *inclusionClient) GetKeccakInclusion(ctx context.Context, in *GetKeccakInclusionRequest, opts ...grpc.CallOption) (*GetKeccakInclusionResponse, error) {
	out := new(GetKeccakInclusionResponse)
	err := c.cc.Invoke(ctx, "/eqservice.Inclusion/GetKeccakInclusion", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func handlerGetKeccakInclusion(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetKeccakInclusionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InclusionServer).GetKeccakInclusion(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/eqservice.Inclusion/GetKeccakInclusion"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InclusionServer).GetKeccakInclusion(ctx, req.(*GetKeccakInclusionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the grpc.ServiceDesc for the Inclusion service, built by
// hand in place of protoc-gen-go-grpc output.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "eqservice.Inclusion",
	HandlerType: (*InclusionServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetKeccakInclusion",
			Handler:    handlerGetKeccakInclusion,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "eqpb/eqservice.proto",
}

// RegisterInclusionServer registers srv on s using ServiceDesc.
func RegisterInclusionServer(s grpc.ServiceRegistrar, srv InclusionServer) {
	s.RegisterService(&ServiceDesc, srv)
}
