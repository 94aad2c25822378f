package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestInvalidResponseFormatWrapsOriginal(t *testing.T) {
	original := errors.New("unexpected end of JSON input")
	err := InvalidResponseFormatError(original)

	if !errors.Is(err, ErrInvalidResponseFormat) {
		t.Fatal("expected kind ErrInvalidResponseFormat")
	}
	if !errors.Is(err, original) {
		t.Fatal("expected the original parse error in the chain")
	}
	if !strings.Contains(err.Error(), InvalidResponseMessage) {
		t.Fatalf("message %q does not contain %q", err.Error(), InvalidResponseMessage)
	}
	if got := HTTPStatus(err); got != http.StatusInternalServerError {
		t.Fatalf("status = %d", got)
	}
}

func TestUpstreamDeadlineMapsTo504(t *testing.T) {
	err := UpstreamError("chat completion", fmt.Errorf("post: %w", context.DeadlineExceeded))
	if CodeOf(err) != codes.DeadlineExceeded {
		t.Fatalf("code = %v", CodeOf(err))
	}
	if got := HTTPStatus(err); got != http.StatusGatewayTimeout {
		t.Fatalf("status = %d", got)
	}

	other := UpstreamError("chat completion", errors.New("connection refused"))
	if CodeOf(other) != codes.Unavailable || HTTPStatus(other) != http.StatusInternalServerError {
		t.Fatalf("unexpected mapping for %v", other)
	}
	if !errors.Is(other, ErrUpstream) {
		t.Fatal("expected kind ErrUpstream")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"invalid argument", InvalidArgumentError("bad"), http.StatusBadRequest},
		{"wrapped invalid argument", fmt.Errorf("handler: %w", InvalidArgumentErrorf("bad %s", "id")), http.StatusBadRequest},
		{"not configured", NotConfiguredError("missing key"), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
		{"canceled", context.Canceled, 499},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Fatalf("HTTPStatus = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAppErrorGRPCStatus(t *testing.T) {
	err := InvalidArgumentError("image is empty")
	st, ok := status.FromError(err)
	if !ok {
		t.Fatal("expected status")
	}
	if st.Code() != codes.InvalidArgument || st.Message() != "image is empty" {
		t.Fatalf("unexpected status %v", st)
	}
}

func TestWrapError(t *testing.T) {
	if WrapError(nil, "x") != nil {
		t.Fatal("nil in, nil out")
	}
	base := errors.New("base")
	if err := WrapError(base, "ctx"); !errors.Is(err, base) || err.Error() != "ctx: base" {
		t.Fatalf("unexpected %v", err)
	}
}

func TestInternalError(t *testing.T) {
	cause := errors.New("disk gone")
	err := InternalError("read uploaded image", cause)
	if !errors.Is(err, ErrInternal) || !errors.Is(err, cause) {
		t.Fatalf("expected kind and cause in chain: %v", err)
	}
	if got := HTTPStatus(err); got != http.StatusInternalServerError {
		t.Fatalf("status = %d", got)
	}
	if status.Code(err) != codes.Internal {
		t.Fatalf("code = %v", status.Code(err))
	}
}
