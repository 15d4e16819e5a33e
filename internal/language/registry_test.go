package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Resolve(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()

	tests := []struct {
		input string
		want  Name
	}{
		{"cpp", CPP},
		{"C++", CPP},
		{"  CPP ", CPP},
		{"c", C},
		{"python", Python},
		{"py", Python},
		{"java", Java},
		{"js", JavaScript},
		{"javascript", JavaScript},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			p, err := r.Resolve(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name)
		})
	}
}

func TestRegistry_Resolve_Unsupported(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()

	for _, name := range []string{"", "cobol", "rust", "go"} {
		_, err := r.Resolve(name)
		require.Error(t, err, name)
		assert.ErrorIs(t, err, ErrUnsupportedLanguage)
		assert.Contains(t, err.Error(), "supported: cpp, c, python, java, javascript")
	}
}

func TestRegistry_Detect(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()

	tests := []struct {
		path string
		want Name
	}{
		{"src/main.cpp", CPP},
		{"/tmp/Widget.HPP", CPP},
		{"lib/util.cc", CPP},
		{"test.c", C},
		{"include/api.h", C},
		{"scripts/run.py", Python},
		{"Main.java", Java},
		{"web/app.mjs", JavaScript},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			p, err := r.Detect(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name)
		})
	}

	_, err := r.Detect("README.md")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestNewRegistry_Validation(t *testing.T) {
	t.Parallel()

	base := Profile{Name: "x", Compiler: Command{Binary: "x"}}

	_, err := NewRegistry(base, base)
	assert.ErrorContains(t, err, "duplicate profile")

	_, err = NewRegistry(Profile{Compiler: Command{Binary: "x"}})
	assert.ErrorContains(t, err, "name is required")

	_, err = NewRegistry(Profile{Name: "y"})
	assert.ErrorContains(t, err, "compiler binary is required")
}

func TestRegistry_Profiles_Order(t *testing.T) {
	t.Parallel()

	profiles := DefaultRegistry().Profiles()
	require.Len(t, profiles, 5)
	assert.Equal(t, CPP, profiles[0].Name)
	assert.True(t, profiles[0].HasLinter())
	assert.True(t, profiles[1].HasLinter())
	assert.False(t, profiles[2].HasLinter())
}

func TestCommand_Argv(t *testing.T) {
	t.Parallel()

	cpp, err := DefaultRegistry().Resolve("cpp")
	require.NoError(t, err)

	assert.Equal(t, []string{"cppcheck", "--xml", "--enable=all", "/work/test.cpp"}, cpp.Linter.Argv("/work/test.cpp", ""))
	assert.Equal(t, []string{"g++", "-fsyntax-only", "/work/test.cpp"}, cpp.Compiler.Argv("/work/test.cpp", ""))
	assert.False(t, cpp.Compiler.NeedsOutDir())

	java, err := DefaultRegistry().Resolve("java")
	require.NoError(t, err)
	assert.Equal(t, []string{"javac", "-d", "/tmp/out", "/src/Main.java"}, java.Compiler.Argv("/src/Main.java", "/tmp/out"))
	assert.True(t, java.Compiler.NeedsOutDir())
	assert.Equal(t, "javac -d {out} {file}", java.Compiler.String())

	python, err := DefaultRegistry().Resolve("python")
	require.NoError(t, err)
	assert.Equal(t, []string{"python3", "-X", "pycache_prefix=/tmp/out", "-m", "py_compile", "/src/a.py"}, python.Compiler.Argv("/src/a.py", "/tmp/out"))
	assert.True(t, python.Compiler.NeedsOutDir())
}
