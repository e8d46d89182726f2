package console

import (
	"strings"
	"testing"
)

func TestReadString_RepromptsOnBlank(t *testing.T) {
	var out strings.Builder
	in := NewInput(strings.NewReader("\n  \nalice\n"), &out)

	value, err := in.ReadString("Username: ")
	if err != nil {
		t.Fatalf("ReadString returned error: %v", err)
	}
	if value != "alice" {
		t.Fatalf("expected %q, got %q", "alice", value)
	}
	if !strings.Contains(out.String(), "A value is required.") {
		t.Fatal("expected a re-prompt message for blank input")
	}
}

func TestReadString_LastLineWithoutNewline(t *testing.T) {
	var out strings.Builder
	in := NewInput(strings.NewReader("alice"), &out)

	value, err := in.ReadString("Username: ")
	if err != nil {
		t.Fatalf("ReadString returned error: %v", err)
	}
	if value != "alice" {
		t.Fatalf("expected %q, got %q", "alice", value)
	}
}

func TestReadOptional_BlankKeepsCurrent(t *testing.T) {
	var out strings.Builder
	in := NewInput(strings.NewReader("\n"), &out)

	value, err := in.ReadOptional("Email", "alice@example.com")
	if err != nil {
		t.Fatalf("ReadOptional returned error: %v", err)
	}
	if value != "alice@example.com" {
		t.Fatalf("expected current value kept, got %q", value)
	}
}

func TestReadOptional_AnswerReplacesCurrent(t *testing.T) {
	var out strings.Builder
	in := NewInput(strings.NewReader("bob@example.com\n"), &out)

	value, err := in.ReadOptional("Email", "alice@example.com")
	if err != nil {
		t.Fatalf("ReadOptional returned error: %v", err)
	}
	if value != "bob@example.com" {
		t.Fatalf("expected new value, got %q", value)
	}
}

func TestReadInt64_RepromptsOnGarbage(t *testing.T) {
	var out strings.Builder
	in := NewInput(strings.NewReader("abc\n3.5\n42\n"), &out)

	value, err := in.ReadInt64("Id: ")
	if err != nil {
		t.Fatalf("ReadInt64 returned error: %v", err)
	}
	if value != 42 {
		t.Fatalf("expected 42, got %d", value)
	}
	if strings.Count(out.String(), "Enter a whole number.") != 2 {
		t.Fatalf("expected two re-prompts, output: %q", out.String())
	}
}

func TestReadBool_Answers(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"yes\n", true},
		{"si\n", true},
		{"N\n", false},
		{"maybe\nn\n", false},
	}

	for _, tc := range cases {
		var out strings.Builder
		in := NewInput(strings.NewReader(tc.input), &out)

		value, err := in.ReadBool("Confirm")
		if err != nil {
			t.Fatalf("ReadBool(%q) returned error: %v", tc.input, err)
		}
		if value != tc.want {
			t.Fatalf("ReadBool(%q) = %v, want %v", tc.input, value, tc.want)
		}
	}
}

func TestReadSecret_FallsBackWithoutTerminal(t *testing.T) {
	var out strings.Builder
	in := NewInput(strings.NewReader("hunter2\n"), &out)

	value, err := in.ReadSecret("Password hash: ")
	if err != nil {
		t.Fatalf("ReadSecret returned error: %v", err)
	}
	if value != "hunter2" {
		t.Fatalf("expected %q, got %q", "hunter2", value)
	}
}
