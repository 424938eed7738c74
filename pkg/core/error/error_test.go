package error

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestNew(t *testing.T) {
	err := New("boom").WithCode(CodeParseFailed).WithOperation("parse").WithDetail("file", "a.props")

	if err.Error() != "boom" {
		t.Errorf("Expected message boom, got %s", err.Error())
	}
	if err.Code() != CodeParseFailed {
		t.Errorf("Expected code %s, got %s", CodeParseFailed, err.Code())
	}
	if err.Severity() != SeverityLow {
		t.Errorf("Expected severity low, got %s", err.Severity())
	}
	if err.Details()["file"] != "a.props" {
		t.Errorf("Expected file detail, got %v", err.Details())
	}
	if !strings.Contains(err.String(), "operation=parse") {
		t.Errorf("Expected operation in String(), got %s", err.String())
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}

	inner := New("disk").WithCode(CodeIOFailed).WithDetail("path", "/tmp/x")
	outer := Wrap(inner, "load")

	if outer.Error() != "load: disk" {
		t.Errorf("Expected 'load: disk', got %s", outer.Error())
	}
	if outer.Code() != CodeIOFailed {
		t.Errorf("Expected code carried over, got %s", outer.Code())
	}
	if outer.Details()["path"] != "/tmp/x" {
		t.Error("Expected details carried over")
	}
	if !errors.Is(outer, inner) {
		t.Error("Expected errors.Is to find the wrapped error")
	}

	plain := Wrap(io.EOF, "read")
	if RootCause(plain) != io.EOF {
		t.Errorf("Expected io.EOF root cause, got %v", RootCause(plain))
	}
}

func TestWrap_ChainTruncated(t *testing.T) {
	var err error = New("root")
	for i := 0; i < MaxErrorChainDepth+2; i++ {
		err = Wrap(err, "layer")
	}
	if chainDepth(err) > MaxErrorChainDepth+1 {
		t.Errorf("Expected chain to be truncated, depth %d", chainDepth(err))
	}
}

func TestHasCode(t *testing.T) {
	err := Wrap(New("x").WithCode(CodeFileNotFound), "open")
	if !HasCode(err, CodeFileNotFound) {
		t.Error("Expected HasCode to find FILE_NOT_FOUND")
	}
	if HasCode(err, CodeInternal) {
		t.Error("Did not expect INTERNAL")
	}
	if GetCode(io.EOF) != CodeUnknown {
		t.Error("Expected UNKNOWN for plain errors")
	}
}

func TestCode_GRPCCode(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeParseFailed, codes.InvalidArgument},
		{CodeFileNotFound, codes.NotFound},
		{CodeTooLarge, codes.ResourceExhausted},
		{CodeStoreFailed, codes.Unavailable},
		{CodeInternal, codes.Internal},
	}
	for _, tt := range tests {
		if got := tt.code.GRPCCode(); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.code, tt.want, got)
		}
	}
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(Wrap(io.EOF, "read").WithCode(CodeIOFailed))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out["code"] != "IO_FAILED" || out["cause"] != "EOF" {
		t.Errorf("Unexpected JSON: %s", data)
	}
}
