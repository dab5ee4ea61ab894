package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oasgen "github.com/LukeHagar/openapi-definition-generator"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	err := cmd.Execute()
	return out.String(), err
}

func TestInfer_StdinToYAML(t *testing.T) {
	out, err := run(t, `{"a":1}`, "infer")
	require.NoError(t, err)
	assert.Equal(t, "type: object\nproperties:\n  a:\n    type: integer\n    format: int32\n    example: 1\n", out)
}

func TestInfer_YAMLFileToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.yml")
	require.NoError(t, os.WriteFile(path, []byte("when: 1999-12-31\n"), 0o644))

	out, err := run(t, "", "infer", path, "-o", "json", "--include-examples=false")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","properties":{"when":{"type":"string","format":"date"}}}`, out)
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestInfer_EnvironmentOverrides(t *testing.T) {
	t.Setenv("OASGEN_ALLOW_ONE_OF", "true")
	t.Setenv("OASGEN_OUTPUT", "json")

	out, err := run(t, `[1,"x"]`, "infer", "--include-examples=false")
	require.NoError(t, err)

	s, err := oasgen.ParseSchemaJSON([]byte(out))
	require.NoError(t, err)
	assert.Len(t, s.(*oasgen.ArraySchema).Items.OneOf, 2)
}

func TestInfer_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oasgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("null_type: integer\noutput: json\n"), 0o644))

	out, err := run(t, `null`, "infer", "--config", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"integer","format":"nullable"}`, out)
}

func TestInfer_EnvFile(t *testing.T) {
	t.Setenv("OASGEN_OUTPUT", "")
	require.NoError(t, os.Unsetenv("OASGEN_OUTPUT"))
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("OASGEN_OUTPUT=json\n"), 0o644))

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(`true`))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"infer", "--env-file", path})
	require.NoError(t, cmd.Execute())
	assert.JSONEq(t, `{"type":"boolean","example":true}`, out.String())
}

func TestInfer_Errors(t *testing.T) {
	_, err := run(t, `{}`, "infer", "--null-type", "date")
	assert.Error(t, err)

	_, err = run(t, `{"a":1,"a":2}`, "infer", "--duplicate-keys", "error")
	assert.ErrorIs(t, err, oasgen.ErrInvalidJSON)

	_, err = run(t, `{`, "infer")
	assert.ErrorIs(t, err, oasgen.ErrInvalidJSON)

	_, err = run(t, `{}`, "infer", "-o", "xml")
	assert.Error(t, err)

	_, err = run(t, ``, "infer", filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExample(t *testing.T) {
	out, err := run(t, "", "example", "-o", "json", "--allow-one-of")
	require.NoError(t, err)

	s, err := oasgen.ParseSchemaJSON([]byte(out))
	require.NoError(t, err)
	names := s.(*oasgen.ObjectSchema).Properties.Names()
	assert.Equal(t, []string{"numbersMock", "stringsMock", "objectsMock", "listMock", "matrixMock", "mixedArrayMock"}, names)

	sample, err := run(t, "", "example", "--sample")
	require.NoError(t, err)
	assert.Equal(t, oasgen.ExampleJSON+"\n", sample)
}

func TestResolve_Defaults(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"example", "--env-file", ""})
	cmd.SetOut(&bytes.Buffer{})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "yaml", cmd.PersistentFlags().Lookup("output").DefValue)
	assert.Equal(t, "string", cmd.PersistentFlags().Lookup("null-type").DefValue)
}
