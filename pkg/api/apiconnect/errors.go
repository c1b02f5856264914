package apiconnect

import (
	"errors"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrorKindHeader carries the stable failure kind of an invalid_argument
// error, e.g. "PERCENT_SUM_MISMATCH".
const ErrorKindHeader = "Split-Error-Kind"

// NewInvalidArgument builds the invalid_argument error returned for a
// rejected request. The kind goes into ErrorKindHeader and, together with
// fields, into a google.protobuf.Struct error detail.
func NewInvalidArgument(err error, kind string, fields map[string]any) *connect.Error {
	cerr := connect.NewError(connect.CodeInvalidArgument, err)
	if kind == "" {
		return cerr
	}
	cerr.Meta().Set(ErrorKindHeader, kind)

	detail := map[string]any{"kind": kind}
	for k, v := range fields {
		detail[k] = v
	}
	s, serr := structpb.NewStruct(detail)
	if serr != nil {
		return cerr
	}
	if d, derr := connect.NewErrorDetail(s); derr == nil {
		cerr.AddDetail(d)
	}
	return cerr
}

// ErrorKind returns the failure kind of a Connect error, or "" if err is
// not an invalid_argument error with a kind.
func ErrorKind(err error) string {
	var cerr *connect.Error
	if !errors.As(err, &cerr) || cerr.Code() != connect.CodeInvalidArgument {
		return ""
	}
	if kind := cerr.Meta().Get(ErrorKindHeader); kind != "" {
		return kind
	}
	if kind, ok := ErrorDetail(err)["kind"].(string); ok {
		return kind
	}
	return ""
}

// ErrorDetail returns the fields of the first Struct detail attached to a
// Connect error, or nil if there is none.
func ErrorDetail(err error) map[string]any {
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		return nil
	}
	for _, d := range cerr.Details() {
		v, verr := d.Value()
		if verr != nil {
			continue
		}
		if s, ok := v.(*structpb.Struct); ok {
			return s.AsMap()
		}
	}
	return nil
}
