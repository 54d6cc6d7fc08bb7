package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
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
		{
			name:    "config error",
			code:    "E100",
			wantMsg: "Configuration file not found",
			wantCat: CategoryConfig,
		},
		{
			name:    "runtime error",
			code:    "E120",
			wantMsg: "Server failed",
			wantCat: CategoryRuntime,
		},
		{
			name:    "journal error",
			code:    "E141",
			wantMsg: "Journal upload failed",
			wantCat: CategoryJournal,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
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

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "flag %q is required", "addr")
	if err.Message != `flag "addr" is required` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestError_Error(t *testing.T) {
	if got, want := New("E102").Error(), "E102: Invalid configuration"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got := (&Error{Message: "test error"}).Error(); got != "test error" {
		t.Errorf("Error() = %q, want %q", got, "test error")
	}
	wrapped := New("E140").Wrap(fmt.Errorf("mkdir: %w", fs.ErrPermission))
	if got := wrapped.Error(); got != "E140: Cannot open journal: mkdir: permission denied" {
		t.Errorf("Error() = %q", got)
	}
}

func TestError_Wrap(t *testing.T) {
	err := New("E140").Wrap(fs.ErrPermission)
	if !stderrors.Is(err, fs.ErrPermission) {
		t.Error("wrapped error should match with errors.Is")
	}
}

func TestError_Builders(t *testing.T) {
	err := New("E101").WithDetail("line 3").WithSuggestion("fix it")
	if err.Detail != "line 3" || err.Suggestion != "fix it" {
		t.Errorf("builders did not set fields: %+v", err)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E120") != nil {
		t.Error("FromError(nil) should be nil")
	}

	coded := New("E102")
	if got := FromError(fmt.Errorf("load: %w", coded), "E120"); got != coded {
		t.Error("FromError should find a wrapped *Error")
	}

	plain := stderrors.New("boom")
	got := FromError(plain, "E120")
	if got.Code != "E120" || !stderrors.Is(got, plain) {
		t.Errorf("FromError(plain) = %+v", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E101").
		WithDetail("canopy.yaml: bad indent").
		WithSuggestion("Check the YAML").
		Wrap(stderrors.New("yaml: line 3"))
	out := err.Format()

	for _, want := range []string{"ERROR E101: Cannot parse configuration", "canopy.yaml: bad indent", "Cause: yaml: line 3", "Hint: Check the YAML"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	if got := New("E160").FormatCompact(); got != "E160: Invalid argument" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestFormatJSON(t *testing.T) {
	var out map[string]string
	if err := json.Unmarshal([]byte(New("E100").WithSuggestion("create one").FormatJSON()), &out); err != nil {
		t.Fatalf("FormatJSON is not valid JSON: %v", err)
	}
	if out["code"] != "E100" || out["category"] != "config" || out["suggestion"] != "create one" {
		t.Errorf("FormatJSON = %v", out)
	}
	if _, ok := out["cause"]; ok {
		t.Error("cause should be omitted when nothing is wrapped")
	}
}

func TestCodes(t *testing.T) {
	codes := Codes()
	found := false
	for _, code := range codes {
		if code == "E100" {
			found = true
		}
		if _, ok := Lookup(code); !ok {
			t.Errorf("code %s has no template", code)
		}
	}
	if !found {
		t.Error("E100 should be in the codes list")
	}
	if _, ok := Lookup("E999"); ok {
		t.Error("E999 should not exist")
	}
}

func TestRegister(t *testing.T) {
	Register("E999", Template{
		Category: CategoryRuntime,
		Message:  "Custom test error",
	})
	defer delete(registry, "E999")

	if err := New("E999"); err.Message != "Custom test error" {
		t.Errorf("Message = %q, want %q", err.Message, "Custom test error")
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	if got = wrapText("", 10); len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestPrintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	PrintError(&buf, fmt.Errorf("serve: %w", New("E120")))
	if !strings.Contains(buf.String(), "ERROR E120: Server failed") {
		t.Errorf("coded error output = %q", buf.String())
	}

	buf.Reset()
	PrintError(&buf, stderrors.New("plain"))
	if !strings.Contains(buf.String(), "ERROR: plain") {
		t.Errorf("plain error output = %q", buf.String())
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if !strings.Contains(red("test"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}

	DisableColors()
	if strings.Contains(red("test"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	EnableColors()
}
