package authrpc

import (
	"context"

	"github.com/dmitrijs2005/hugmood/internal/common"
	"github.com/dmitrijs2005/hugmood/internal/logging"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// ValidateToken asks the auth service whether token is a live access
// token. A definitive "no" comes back as Valid=false with a nil error;
// errors mean the service could not answer. The context's request id is
// forwarded as metadata.
func (c *Client) ValidateToken(ctx context.Context, token string) (*Validation, error) {
	if id := logging.RequestID(ctx); id != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, common.RequestIDHeader, id)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ValidateTokenMethod, wrapperspb.String(token), out); err != nil {
		return nil, err
	}
	return DecodeValidation(out)
}
