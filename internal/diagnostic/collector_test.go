package diagnostic

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/mvp-joe/autofix/internal/language"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// mockRunner implements Runner for testing.
type mockRunner struct {
	result *RunResult
	err    error
	argv   []string
	dir    string
	onRun  func(argv []string)
}

func (m *mockRunner) Run(ctx context.Context, argv []string, dir string) (*RunResult, error) {
	m.argv = argv
	m.dir = dir
	if m.onRun != nil {
		m.onRun(argv)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func cppcheckCommand() language.Command {
	cpp, err := language.DefaultRegistry().Resolve("cpp")
	if err != nil {
		panic(err)
	}
	return *cpp.Linter
}

func gppCommand() language.Command {
	cpp, err := language.DefaultRegistry().Resolve("cpp")
	if err != nil {
		panic(err)
	}
	return cpp.Compiler
}

func TestCollector_Collect_Linter(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{result: &RunResult{
		Stderr: []byte(`<results version="2"><errors>
<error id="nullPointer" severity="error" msg="Null pointer dereference"><location file="/src/test.cpp" line="10"/></error>
<error id="missingInclude" severity="information" msg="Cppcheck cannot find all the include files"/>
<error id="unusedVariable" severity="style" msg="Unused variable: x"><location file="/src/test.cpp" line="4"/></error>
</errors></results>`),
	}}

	c := NewCollector(runner, nil)
	diags, err := c.Collect(context.Background(), "/src/test.cpp", cppcheckCommand())
	require.NoError(t, err)

	assert.Equal(t, []string{"cppcheck", "--xml", "--enable=all", "/src/test.cpp"}, runner.argv)
	assert.Equal(t, "/src", runner.dir)

	require.Len(t, diags, 2)
	assert.Equal(t, 10, diags[0].Line)
	assert.Equal(t, "Null pointer dereference", diags[0].Message)
	assert.Equal(t, 4, diags[1].Line)
	assert.Equal(t, SeverityStyle, diags[1].Severity)
}

func TestCollector_Collect_LinterMalformedOutputIsLogged(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	runner := &mockRunner{result: &RunResult{Stderr: []byte("Segmentation fault (core dumped)"), ExitCode: 139}}

	c := NewCollector(runner, zap.New(core))
	diags, err := c.Collect(context.Background(), "/src/test.cpp", cppcheckCommand())
	require.NoError(t, err)
	assert.NotNil(t, diags)
	assert.Empty(t, diags)

	entries := logs.FilterMessage("malformed diagnostic output, treating as no findings").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "cppcheck", entries[0].ContextMap()["tool"])
}

func TestCollector_Collect_Compiler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		result   *RunResult
		wantDiag bool
		validate func(t *testing.T, d Diagnostic)
	}{
		{
			name:   "clean compile",
			result: &RunResult{ExitCode: 0},
		},
		{
			name:   "warnings with exit 0 are not findings",
			result: &RunResult{ExitCode: 0, Stderr: []byte("test.cpp:3:9: warning: unused variable 'x'\n")},
		},
		{
			name: "failed compile becomes one unanchored diagnostic",
			result: &RunResult{
				ExitCode: 1,
				Stderr:   []byte("\ntest.cpp: In function 'int main()':\ntest.cpp:1:25: error: expected ';' before '}' token\n"),
			},
			wantDiag: true,
			validate: func(t *testing.T, d Diagnostic) {
				assert.False(t, d.HasLine())
				assert.Equal(t, SeverityError, d.Severity)
				assert.Equal(t, "test.cpp: In function 'int main()':", d.Message)
				assert.Contains(t, d.RawToolOutput, "expected ';' before '}' token")
			},
		},
		{
			name:     "failure with empty stderr falls back to stdout",
			result:   &RunResult{ExitCode: 2, Stdout: []byte("SyntaxError: bad input\n")},
			wantDiag: true,
			validate: func(t *testing.T, d Diagnostic) {
				assert.Equal(t, "SyntaxError: bad input", d.Message)
				assert.Equal(t, "SyntaxError: bad input\n", d.RawToolOutput)
			},
		},
		{
			name:     "failure with no output at all",
			result:   &RunResult{ExitCode: 3},
			wantDiag: true,
			validate: func(t *testing.T, d Diagnostic) {
				assert.Equal(t, "checker exited with status 3", d.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewCollector(&mockRunner{result: tt.result}, nil)
			diags, err := c.Collect(context.Background(), "/src/test.cpp", gppCommand())
			require.NoError(t, err)

			if !tt.wantDiag {
				assert.Empty(t, diags)
				return
			}
			require.Len(t, diags, 1)
			tt.validate(t, diags[0])
		})
	}
}

func TestCollector_Collect_CheckerUnavailable(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{err: fmt.Errorf("%w: cppcheck: not found", ErrCheckerUnavailable)}
	c := NewCollector(runner, nil)

	diags, err := c.Collect(context.Background(), "/src/test.cpp", cppcheckCommand())
	require.Error(t, err)
	assert.Nil(t, diags, "unavailable checker must not look like a clean result")
	assert.ErrorIs(t, err, ErrCheckerUnavailable)
}

func TestCollector_Collect_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	c := NewCollector(&mockRunner{result: &RunResult{}}, nil)
	_, err := c.Collect(context.Background(), "/x.cpp", language.Command{Binary: "x", Format: "sarif"})
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestCollector_Collect_OutputDirIsPrivateAndRemoved(t *testing.T) {
	t.Parallel()

	java, err := language.DefaultRegistry().Resolve("java")
	require.NoError(t, err)

	srcDir := t.TempDir()
	tmpDir := t.TempDir()
	src := filepath.Join(srcDir, "Main.java")

	var outDir string
	runner := &mockRunner{
		result: &RunResult{ExitCode: 0},
		onRun: func(argv []string) {
			outDir = argv[2]
			info, err := os.Stat(outDir)
			require.NoError(t, err, "output directory must exist while the checker runs")
			assert.True(t, info.IsDir())
			// what javac would leave behind
			require.NoError(t, os.WriteFile(filepath.Join(outDir, "Main.class"), []byte{0xCA, 0xFE}, 0o644))
		},
	}
	c := NewCollector(runner, nil)
	c.TempDir = tmpDir

	diags, err := c.Collect(context.Background(), src, java.Compiler)
	require.NoError(t, err)
	assert.Empty(t, diags)

	assert.Equal(t, []string{"javac", "-d", outDir, src}, runner.argv)
	assert.Equal(t, tmpDir, filepath.Dir(outDir))
	assert.NoDirExists(t, outDir)
	assert.Empty(t, dirEntries(t, tmpDir))
	assert.Empty(t, dirEntries(t, srcDir))
}

func TestCollector_Collect_OutputDirRemovedOnRunnerError(t *testing.T) {
	t.Parallel()

	python, err := language.DefaultRegistry().Resolve("python")
	require.NoError(t, err)

	tmpDir := t.TempDir()
	runner := &mockRunner{err: fmt.Errorf("%w: python3: not found", ErrCheckerUnavailable)}
	c := NewCollector(runner, nil)
	c.TempDir = tmpDir

	_, err = c.Collect(context.Background(), "/src/a.py", python.Compiler)
	require.ErrorIs(t, err, ErrCheckerUnavailable)
	assert.Empty(t, dirEntries(t, tmpDir))
}

func TestCollector_Collect_NoOutputDirForCompilersWithoutOutput(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	runner := &mockRunner{result: &RunResult{ExitCode: 0}}
	c := NewCollector(runner, nil)
	c.TempDir = tmpDir

	_, err := c.Collect(context.Background(), "/src/test.cpp", gppCommand())
	require.NoError(t, err)
	assert.Equal(t, []string{"g++", "-fsyntax-only", "/src/test.cpp"}, runner.argv)
	assert.Empty(t, dirEntries(t, tmpDir))
}

// Runs the real python3 when available: a clean check must not leave a
// __pycache__ beside the source.
func TestCollector_Collect_PythonLeavesSourceDirUnchanged(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not installed")
	}

	python, err := language.DefaultRegistry().Resolve("python")
	require.NoError(t, err)

	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "ok.py")
	require.NoError(t, os.WriteFile(src, []byte("print(1)\n"), 0o644))

	c := NewCollector(NewExecRunner(0), nil)
	c.TempDir = t.TempDir()

	diags, err := c.Collect(context.Background(), src, python.Compiler)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, []string{"ok.py"}, dirEntries(t, srcDir))

	// A syntax error is still reported through the redirected cache
	require.NoError(t, os.WriteFile(src, []byte("print(1\n"), 0o644))
	diags, err = c.Collect(context.Background(), src, python.Compiler)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].RawToolOutput, "ok.py")
	assert.Equal(t, []string{"ok.py"}, dirEntries(t, srcDir))
}
