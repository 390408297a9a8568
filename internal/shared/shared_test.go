package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLogLevel(t *testing.T) {
	tc := []struct {
		name    string
		in      string
		want    log.Level
		wantErr bool
	}{
		{name: "empty defaults to info", in: "", want: log.InfoLevel},
		{name: "debug", in: "debug", want: log.DebugLevel},
		{name: "mixed case and spaces", in: "  WARN ", want: log.WarnLevel},
		{name: "error", in: "error", want: log.ErrorLevel},
		{name: "unknown", in: "chatty", want: log.InfoLevel, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	t.Run("MarshalJSON compact", func(t *testing.T) {
		data, err := MarshalJSON(map[string]int{"a": 1}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `{"a":1}` {
			t.Errorf("got %s", data)
		}
	})

	t.Run("MarshalJSON pretty", func(t *testing.T) {
		data, err := MarshalJSON(map[string]int{"a": 1}, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(data), "\n  \"a\": 1") {
			t.Errorf("expected indented output, got %s", data)
		}
	})

	t.Run("MarshalJSON unsupported value", func(t *testing.T) {
		if _, err := MarshalJSON(make(chan int), false); err == nil {
			t.Error("expected error for channel value")
		}
	})

	t.Run("ValidateJSON", func(t *testing.T) {
		if err := ValidateJSON([]byte(`{"url":"https://example.com"}`)); err != nil {
			t.Errorf("expected valid JSON, got %v", err)
		}
		if err := ValidateJSON([]byte(`{url:`)); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "swatch.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	logger.Info("hello from test")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from test") {
		t.Errorf("expected log line in file, got %q", content)
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string, got %q", a)
	}
}

func TestOpenBrowser(t *testing.T) {
	t.Run("rejects non-http schemes", func(t *testing.T) {
		for _, target := range []string{"file:///etc/passwd", "javascript:alert(1)", "::bad"} {
			if err := OpenBrowser(target); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("OpenBrowser(%q) = %v, want ErrInvalidArgument", target, err)
			}
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		orig := getRuntime
		defer func() { getRuntime = orig }()
		getRuntime = func() string { return "plan9" }

		err := OpenBrowser("https://example.com")
		if err == nil || !strings.Contains(err.Error(), "unsupported platform") {
			t.Errorf("expected unsupported platform error, got %v", err)
		}
	})

	t.Run("browserCommand", func(t *testing.T) {
		tc := map[string]string{"darwin": "open", "linux": "xdg-open", "windows": "cmd"}
		for goos, want := range tc {
			cmd, err := browserCommand(goos, "https://example.com")
			if err != nil {
				t.Fatalf("browserCommand(%s) error = %v", goos, err)
			}
			if filepath.Base(cmd.Path) != want && cmd.Args[0] != want {
				t.Errorf("browserCommand(%s) = %v, want %s", goos, cmd.Args, want)
			}
		}
	})
}
