package command

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestValidateSessionName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid name", "demo", false},
		{"valid with suffix", "demo-2", false},
		{"valid with underscore and dot", "api_v1.2", false},
		{"valid uppercase", "Demo", false},
		{"empty name", "", true},
		{"colon", "demo:1", true},
		{"space", "my demo", true},
		{"starts with hyphen", "-demo", true},
		{"starts with dot", ".demo", true},
		{"prefixed remux name", "remux-" + strings.Repeat("a", 64), false},
		{"too long", strings.Repeat("a", MaxSessionNameLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSessionName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateSessionName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateWorkingDir(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"absolute path", "/home/dev/project", false},
		{"path with spaces", "/home/dev/my project", false},
		{"relative path", "project", true},
		{"empty path", "", true},
		{"nul byte", "/tmp/\x00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateWorkingDir(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateWorkingDir(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestSafeBuilder_Build(t *testing.T) {
	sb := NewSafeBuilder()
	ctx := context.Background()

	t.Run("valid command", func(t *testing.T) {
		cmd, err := sb.Build(ctx, "echo", "hello")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer cmd.Close()
		if cmd.name != "echo" {
			t.Errorf("expected command name 'echo', got %q", cmd.name)
		}
		if len(cmd.args) != 1 || cmd.args[0] != "hello" {
			t.Errorf("expected args ['hello'], got %v", cmd.args)
		}
		if cmd.timeout != DefaultTimeout {
			t.Errorf("expected default timeout, got %v", cmd.timeout)
		}
		if cmd.String() != "echo hello" {
			t.Errorf("String() = %q", cmd.String())
		}
	})

	t.Run("empty command name", func(t *testing.T) {
		_, err := sb.Build(ctx, "")
		if err == nil {
			t.Error("expected error for empty command name")
		}
	})

	t.Run("shell metacharacters in binary", func(t *testing.T) {
		_, err := sb.Build(ctx, "tmux;rm")
		if err == nil {
			t.Error("expected error for invalid binary name")
		}
	})

	t.Run("interactive has no timeout", func(t *testing.T) {
		cmd, err := sb.BuildInteractive(ctx, "tmux", "attach-session")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := cmd.ctx.Deadline(); ok {
			t.Error("interactive command should not carry a deadline")
		}
	})
}

func TestSafeBuilder_Validate(t *testing.T) {
	sb := NewSafeBuilder()

	t.Run("valid window label", func(t *testing.T) {
		if err := sb.Validate("windowLabel", "tunnel"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("invalid window label", func(t *testing.T) {
		if err := sb.Validate("windowLabel", "Tunnel Window"); err == nil {
			t.Error("expected error for invalid window label")
		}
	})

	t.Run("unknown validator type", func(t *testing.T) {
		if err := sb.Validate("unknownType", "value"); err == nil {
			t.Error("expected error for unknown validator type")
		}
	})
}

func TestCommand_WithTimeout(t *testing.T) {
	sb := NewSafeBuilder()
	ctx := context.Background()

	cmd, err := sb.Build(ctx, "sleep", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cmd.Close()

	t.Run("custom timeout", func(t *testing.T) {
		customTimeout := 1 * time.Second
		cmd = cmd.WithTimeout(customTimeout)
		if cmd.timeout != customTimeout {
			t.Errorf("expected timeout %v, got %v", customTimeout, cmd.timeout)
		}
		if cmd.ctx.Err() != nil {
			t.Error("re-applying a timeout must not cancel the new context")
		}
	})

	t.Run("exceeds max timeout", func(t *testing.T) {
		cmd = cmd.WithTimeout(20 * time.Minute)
		if cmd.timeout != MaxTimeout {
			t.Errorf("expected timeout to be capped at %v, got %v", MaxTimeout, cmd.timeout)
		}
	})
}

func TestCommandTimeout(t *testing.T) {
	sb := NewSafeBuilder()
	ctx := context.Background()

	// Create a command that will timeout
	cmd, err := sb.Build(ctx, "sleep", "10")
	if err != nil {
		t.Fatal(err)
	}

	// Set a short timeout
	cmd = cmd.WithTimeout(100 * time.Millisecond)

	start := time.Now()
	_, err = cmd.CombinedOutput()
	duration := time.Since(start)

	if err == nil {
		t.Error("expected timeout error")
	}

	// Allow some margin for execution overhead
	if duration > 500*time.Millisecond {
		t.Errorf("command took too long to timeout: %v", duration)
	}
}
