package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formguard/internal/tui"
	"github.com/goliatone/go-formguard/pkg/testsupport"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--no-color", "--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCheckCmd_BlockedReportsFields(t *testing.T) {
	page := testsupport.FixturePath(testsupport.SignupPage)
	annotated := filepath.Join(t.TempDir(), "annotated.html")

	out, err := run(t, "check", page, "--set", "name=Ada", "--set", "email=ada@", "-o", annotated)
	require.ErrorIs(t, err, ErrBlocked)

	assert.Contains(t, out, "ok    name")
	assert.Contains(t, out, "FAIL  email     Enter a valid email address.")
	assert.Contains(t, out, "FAIL  phone     This field is required.")
	assert.Contains(t, out, "FAIL  topics[]  This field is required.")
	assert.Contains(t, out, "submission blocked (4 fields, 3 invalid")

	written, err := os.ReadFile(annotated)
	require.NoError(t, err)
	assert.Contains(t, string(written), `data-error-for="email"`)
}

func TestCheckCmd_Allowed(t *testing.T) {
	page := testsupport.FixturePath(testsupport.SignupPage)

	out, err := run(t, "check", page,
		"--set", "name=Ada",
		"--set", "email=ada@example.com",
		"--set", "phone=13800138000",
		"--set", "topics[]=go",
		"--set", "topics[]=data",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "submission allowed (4 fields, 0 invalid")
}

func TestCheckCmd_LocaleFromConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "formguard.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("validation:\n  locale: zh-CN\n"), 0o644))

	out, err := run(t, "--config", configPath, "check", testsupport.FixturePath(testsupport.SignupPage), "--set", "name=Ada")
	require.ErrorIs(t, err, ErrBlocked)
	assert.Contains(t, out, "此字段为必填项")
}

func TestCheckCmd_RejectsMalformedSet(t *testing.T) {
	_, err := run(t, "check", testsupport.FixturePath(testsupport.SignupPage), "--set", "novalue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name=value")
}

const openapiDoc = `openapi: 3.0.3
info: {title: demo, version: "1"}
paths:
  /rsvp:
    post:
      operationId: rsvp
      summary: RSVP
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [email]
              properties:
                email: {type: string, format: email}
      responses:
        "200": {description: ok}
`

func TestRenderCmd_PrintsPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.yaml")
	require.NoError(t, os.WriteFile(path, []byte(openapiDoc), 0o644))

	out, err := run(t, "render", "--openapi", path)
	require.NoError(t, err)
	assert.Contains(t, out, `class="public-form"`)
	assert.Contains(t, out, `type="email"`)

	_, err = run(t, "render", "--openapi", path, "--operation", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rsvp")
}

type scriptedDriver struct {
	inputs []string
	multi  [][]int
	texts  []string
}

func (s *scriptedDriver) Input(_ context.Context, cfg tui.InputConfig) (string, error) {
	for len(s.inputs) > 0 {
		value := s.inputs[0]
		s.inputs = s.inputs[1:]
		if cfg.Validator == nil || cfg.Validator(value) == nil {
			return value, nil
		}
	}
	return "", tui.ErrAborted
}

func (s *scriptedDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) { return false, nil }
func (s *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error)    { return 0, nil }

func (s *scriptedDriver) MultiSelect(context.Context, tui.SelectConfig) ([]int, error) {
	if len(s.multi) == 0 {
		return nil, tui.ErrAborted
	}
	picked := s.multi[0]
	s.multi = s.multi[1:]
	return picked, nil
}

func (s *scriptedDriver) TextArea(context.Context, tui.TextAreaConfig) (string, error) {
	if len(s.texts) == 0 {
		return "", nil
	}
	text := s.texts[0]
	s.texts = s.texts[1:]
	return text, nil
}

func (s *scriptedDriver) Info(context.Context, string) error { return nil }

func TestFillCmd_SubmitsAnswers(t *testing.T) {
	original := newDriver
	t.Cleanup(func() { newDriver = original })
	newDriver = func() tui.PromptDriver {
		return &scriptedDriver{
			inputs: []string{"Ada", "ada@example.com", "13800138000", ""},
			multi:  [][]int{{1}},
		}
	}

	out, err := run(t, "fill", testsupport.FixturePath(testsupport.SignupPage))
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "submission allowed"), out)
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "formguard version dev (commit: unknown, built: unknown)\n", out)
}
