package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Input reads line-oriented answers from the operator. Prompts re-ask until a
// usable value arrives; only I/O errors propagate.
type Input struct {
	reader *bufio.Reader
	out    io.Writer
	stdin  *os.File
}

// NewInput wraps the supplied reader. When the reader is a terminal, secret
// prompts disable echo.
func NewInput(in io.Reader, out io.Writer) *Input {
	input := &Input{
		reader: bufio.NewReader(in),
		out:    out,
	}
	if f, ok := in.(*os.File); ok {
		input.stdin = f
	}
	return input
}

func (i *Input) readLine(prompt string) (string, error) {
	fmt.Fprint(i.out, prompt)
	line, err := i.reader.ReadString('\n')
	if err != nil && (line == "" || err != io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadString prompts until a non-empty line arrives.
func (i *Input) ReadString(prompt string) (string, error) {
	for {
		line, err := i.readLine(prompt)
		if err != nil {
			return "", err
		}
		if line != "" {
			return line, nil
		}
		fmt.Fprintln(i.out, "A value is required.")
	}
}

// ReadOptional prompts once; a blank answer keeps the current value.
func (i *Input) ReadOptional(prompt, current string) (string, error) {
	line, err := i.readLine(fmt.Sprintf("%s [%s]: ", prompt, current))
	if err != nil {
		return "", err
	}
	if line == "" {
		return current, nil
	}
	return line, nil
}

// ReadInt64 prompts until a valid integer arrives.
func (i *Input) ReadInt64(prompt string) (int64, error) {
	for {
		line, err := i.readLine(prompt)
		if err != nil {
			return 0, err
		}
		value, convErr := strconv.ParseInt(line, 10, 64)
		if convErr == nil {
			return value, nil
		}
		fmt.Fprintln(i.out, "Enter a whole number.")
	}
}

// ReadBool prompts until a yes/no answer arrives.
func (i *Input) ReadBool(prompt string) (bool, error) {
	for {
		line, err := i.readLine(prompt + " (y/n): ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "y", "yes", "s", "si":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(i.out, "Answer y or n.")
	}
}

// ReadSecret reads a value without echoing it when attached to a terminal.
// Hash and salt material should not land in scrollback.
func (i *Input) ReadSecret(prompt string) (string, error) {
	if i.stdin != nil && term.IsTerminal(int(i.stdin.Fd())) {
		fmt.Fprint(i.out, prompt)
		raw, err := term.ReadPassword(int(i.stdin.Fd()))
		fmt.Fprintln(i.out)
		if err != nil {
			return "", err
		}
		value := strings.TrimSpace(string(raw))
		if value != "" {
			return value, nil
		}
		fmt.Fprintln(i.out, "A value is required.")
		return i.ReadSecret(prompt)
	}
	return i.ReadString(prompt)
}

// Pause waits for the operator before returning to the menu.
func (i *Input) Pause() {
	fmt.Fprint(i.out, "\nPress Enter to continue...")
	_, _ = i.reader.ReadString('\n')
}
