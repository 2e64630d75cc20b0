package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/jinja/lang"
	"github.com/ardnew/jinja/log"
)

const defaultEditor = "vi"

// editVarsCommand implements [tea.ExecCommand]. It writes the session
// variables as YAML to a temporary file, opens $EDITOR on it and decodes the
// result. On a decode error the user may edit again; declining returns
// [ErrEditDeclined].
type editVarsCommand struct {
	vars    *lang.Object
	ctxFunc func() context.Context
	logger  log.Logger
	result  *lang.Object
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

func (c *editVarsCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editVarsCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editVarsCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-decode-retry loop. An empty file leaves result nil.
func (c *editVarsCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := lang.EncodeYAML(c.vars, 2)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", "jinja-repl-*.yaml")
	if err != nil {
		return err
	}

	path := f.Name()
	f.Close()

	defer os.Remove(path)

	for {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return err
		}

		data, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path)
		if err != nil {
			return err
		}

		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}

		vars, decodeErr := decodeVars(data)

		c.logger.TraceContext(ctx, "editor decode attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", decodeErr == nil),
		)

		if decodeErr == nil {
			c.result = vars

			return nil
		}

		fmt.Fprintf(c.stderr, "\nDecode error: %s\n", decodeErr)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		s := bufio.NewScanner(c.stdin)
		if !s.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(s.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}

		content = string(data)
	}
}

// decodeVars parses a YAML mapping, keeping its key order.
func decodeVars(data []byte) (*lang.Object, error) {
	var native any
	if err := yaml.UnmarshalWithOptions(data, &native, yaml.UseOrderedMap()); err != nil {
		return nil, err
	}

	v, err := lang.ValueOf(native)
	if err != nil {
		return nil, err
	}

	switch v := v.(type) {
	case *lang.Object:
		return v, nil
	case lang.Null:
		return lang.NewObject(0), nil
	}

	return nil, ErrNotMapping
}

// runEditor opens $EDITOR (or vi) on path and returns the saved content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) ([]byte, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}
