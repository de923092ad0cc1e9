package redis

import (
	"fmt"

	"github.com/joomcode/errorx"
)

// Errors is the redis package's error namespace, sitting alongside
// resp.Errors as the command-surface half of the errorx-based taxonomy
// this module settled on (spec §7).
var Errors = errorx.NewNamespace("redis")

var (
	// ServerError wraps a RESP Error value returned by the peer. The
	// transport core never produces this — only command-surface
	// coercion does, since the core treats an Error reply as an
	// ordinary completed value (spec §6.3, §7).
	ServerError = Errors.NewType("server_error")
	// InvalidResponse is returned when a coercion helper receives a
	// resp.Value of a variant it did not expect.
	InvalidResponse = Errors.NewType("invalid_response")
	// ArgumentType is returned by Request.ToValue when an argument's Go
	// type has no wire representation.
	ArgumentType = Errors.NewType("argument_type")
	// RequestCancelled is returned by the context-aware Sync wrappers
	// when ctx is done before a response arrives.
	RequestCancelled = Errors.NewType("request_cancelled")
)

// PropResponse carries the offending resp.Value on an InvalidResponse error.
var PropResponse = errorx.RegisterProperty("response")

// PropArgument carries the offending argument on an ArgumentType error.
var PropArgument = errorx.RegisterProperty("argument")

func errArgumentType(arg interface{}) error {
	return ArgumentType.New(fmt.Sprintf("command argument of type %T is not supported", arg)).
		WithProperty(PropArgument, arg)
}

func errInvalidResponse(v interface{}) error {
	return InvalidResponse.New(fmt.Sprintf("unexpected response shape %#v", v)).
		WithProperty(PropResponse, v)
}

func errRequestCancelled() error {
	return RequestCancelled.New("request was cancelled before a response arrived")
}
