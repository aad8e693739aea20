package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{"hook order", CodeHookOrder, "Hook order changed between renders", CategoryHooks},
		{"host failure", CodeHostFailure, "Host adapter operation failed", CategoryHost},
		{"config", CodeInvalidConfig, "Invalid configuration", CategoryConfig},
		{"unknown error code", "E999", "Unknown error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := New(CodeHostFailure).Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !stderrors.Is(err, New(CodeHostFailure)) {
		t.Error("errors.Is should match by code")
	}
	if stderrors.Is(err, New(CodeHookOrder)) {
		t.Error("errors.Is should not match a different code")
	}
	if got := err.Error(); got != "E202: Host adapter operation failed: disk full" {
		t.Errorf("Error() = %q", got)
	}

	outer := fmt.Errorf("commit: %w", err)
	if Code(outer) != CodeHostFailure {
		t.Errorf("Code() = %q, want %q", Code(outer), CodeHostFailure)
	}
	if Code(cause) != "" {
		t.Errorf("Code(plain) = %q, want empty", Code(cause))
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, CodeFrame) != nil {
		t.Error("FromError(nil) should be nil")
	}

	existing := New(CodeHookOrder)
	if FromError(existing, CodeFrame) != existing {
		t.Error("FromError should keep an existing *Error")
	}

	plain := stderrors.New("boom")
	got := FromError(plain, CodeFrame)
	if got.Code != CodeFrame || got.Wrapped != plain {
		t.Errorf("FromError = %+v", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New(CodeUpdateStorm).Wrap(stderrors.New("limit 3"))
	out := err.Format()

	for _, want := range []string{"ERROR E303: Too many commits while flushing", "cause: limit 3", "Hint: "} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() should not contain colors when disabled")
	}
	if err.FormatCompact() != "E303: Too many commits while flushing" {
		t.Errorf("FormatCompact() = %q", err.FormatCompact())
	}
}

func TestPrint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Print(&buf, stderrors.New("plain"))
	if buf.String() != "ERROR plain\n" {
		t.Errorf("Print(plain) = %q", buf.String())
	}

	buf.Reset()
	Print(&buf, New(CodeUnmounted))
	if !strings.Contains(buf.String(), "E302") {
		t.Errorf("Print(*Error) = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line %q longer than 20", l)
		}
	}
	if got := wrapText("a\nb\n", 70); len(got) != 2 {
		t.Errorf("multi-line text = %v", got)
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should yield nil")
	}
}

func TestRegistry(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("registry is empty")
	}
	for _, code := range codes {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("template %s incomplete: %+v", code, tmpl)
		}
	}
}
