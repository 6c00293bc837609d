package grpc

import (
	"context"

	"github.com/dmitrijs2005/hugmood/internal/authrpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func (s *GRPCServer) ValidateToken(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	v, err := s.validator.ValidateToken(ctx, req.GetValue())
	if err != nil {
		s.logger.Error(ctx, "validate token failed", "error", err)
		return nil, status.Error(codes.Unavailable, "credential store unavailable")
	}

	out, err := authrpc.EncodeValidation(&authrpc.Validation{
		Valid:  v.Valid,
		User:   v.User,
		Reason: string(v.Reason),
	})
	if err != nil {
		s.logger.Error(ctx, "encode validation failed", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}
