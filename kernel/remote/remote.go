// Package remote exposes a kernel.Invoker over Connect RPC, so property
// function evaluation can run in a separate process holding the compiled
// native library. The wire messages are well-known protobuf Struct/Value
// types: a request carries {"function": string, "args": [numbers]}, a
// response is a single number.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/fluid-props/helmholtz/kernel"
)

// Procedure is the Connect route for function invocation.
const Procedure = "/helmholtz.kernel.v1.PropertyKernel/Invoke"

const (
	fieldFunction = "function"
	fieldArgs     = "args"
)

// Client is a kernel.Invoker calling a remote function service.
type Client struct {
	inner *connect.Client[structpb.Struct, structpb.Value]
}

// NewClient creates a client for the service at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	return &Client{
		inner: connect.NewClient[structpb.Struct, structpb.Value](httpClient, baseURL+Procedure, opts...),
	}
}

// Invoke evaluates a named function on the remote service.
func (c *Client) Invoke(ctx context.Context, fn kernel.Func, args ...float64) (float64, error) {
	values := make([]*structpb.Value, len(args))
	for i, a := range args {
		values[i] = structpb.NewNumberValue(a)
	}
	req := connect.NewRequest(&structpb.Struct{Fields: map[string]*structpb.Value{
		fieldFunction: structpb.NewStringValue(string(fn)),
		fieldArgs:     structpb.NewListValue(&structpb.ListValue{Values: values}),
	}})

	res, err := c.inner.CallUnary(ctx, req)
	if err != nil {
		switch connect.CodeOf(err) {
		case connect.CodeNotFound:
			return 0, fmt.Errorf("%w: %s", kernel.ErrNotFound, fn)
		case connect.CodeUnavailable:
			return 0, fmt.Errorf("%w: %s", kernel.ErrUnavailable, fn)
		default:
			return 0, fmt.Errorf("remote invoke %s: %w", fn, err)
		}
	}
	if _, ok := res.Msg.GetKind().(*structpb.Value_NumberValue); !ok {
		return 0, fmt.Errorf("remote invoke %s: non-numeric response", fn)
	}
	return res.Msg.GetNumberValue(), nil
}

// NewHandler mounts an Invoker as a Connect service. The returned path and
// handler plug directly into an http.ServeMux.
func NewHandler(inv kernel.Invoker, opts ...connect.HandlerOption) (string, http.Handler) {
	h := connect.NewUnaryHandler(
		Procedure,
		func(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Value], error) {
			fn, args, err := decodeRequest(req.Msg)
			if err != nil {
				return nil, connect.NewError(connect.CodeInvalidArgument, err)
			}

			v, err := inv.Invoke(ctx, fn, args...)
			switch {
			case err == nil:
			case errors.Is(err, kernel.ErrNotFound):
				return nil, connect.NewError(connect.CodeNotFound, err)
			case errors.Is(err, kernel.ErrUnavailable):
				return nil, connect.NewError(connect.CodeUnavailable, err)
			default:
				return nil, connect.NewError(connect.CodeInternal, err)
			}
			return connect.NewResponse(structpb.NewNumberValue(v)), nil
		},
		opts...,
	)
	return Procedure, h
}

func decodeRequest(msg *structpb.Struct) (kernel.Func, []float64, error) {
	fields := msg.GetFields()
	name := fields[fieldFunction].GetStringValue()
	if name == "" {
		return "", nil, fmt.Errorf("missing %q field", fieldFunction)
	}

	list := fields[fieldArgs].GetListValue().GetValues()
	args := make([]float64, len(list))
	for i, v := range list {
		if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
			return "", nil, fmt.Errorf("operand %d is not a number", i)
		}
		args[i] = v.GetNumberValue()
	}
	return kernel.Func(name), args, nil
}
