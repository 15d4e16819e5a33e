package language

import "strings"

// Name identifies a supported language profile.
type Name string

const (
	CPP        Name = "cpp"
	C          Name = "c"
	Python     Name = "python"
	Java       Name = "java"
	JavaScript Name = "javascript"
)

// OutputFormat describes how a checker reports its findings.
type OutputFormat string

const (
	// FormatCppcheckXML is cppcheck's --xml report: one <error> per finding.
	FormatCppcheckXML OutputFormat = "cppcheck-xml"

	// FormatText is free compiler text. A non-zero exit is treated as a
	// single undifferentiated failure.
	FormatText OutputFormat = "text"
)

// Stream selects which process stream carries the diagnostics.
type Stream string

const (
	StreamStderr   Stream = "stderr"
	StreamStdout   Stream = "stdout"
	StreamCombined Stream = "combined" // stderr followed by stdout
)

// Placeholders substituted by Command.Argv.
const (
	FilePlaceholder = "{file}"

	// OutPlaceholder is a private directory for build output (class files,
	// bytecode caches). It is created for one run and removed afterwards.
	OutPlaceholder = "{out}"
)

// Command is a checker invocation template: <binary> <fixed flags> <file>.
type Command struct {
	Tool   string       `json:"tool"`   // Short tool name for logs and prompts (e.g. "cppcheck")
	Binary string       `json:"binary"` // Executable looked up on PATH
	Args   []string     `json:"args"`   // Fixed flags, may contain {file} and {out}
	Output Stream       `json:"output"` // Stream holding the diagnostics
	Format OutputFormat `json:"format"` // How the stream is parsed
}

// Argv expands the template for the given source file and output
// directory. The returned slice starts with the binary.
func (c Command) Argv(filePath, outDir string) []string {
	argv := make([]string, 0, len(c.Args)+1)
	argv = append(argv, c.Binary)
	for _, arg := range c.Args {
		arg = strings.ReplaceAll(arg, FilePlaceholder, filePath)
		arg = strings.ReplaceAll(arg, OutPlaceholder, outDir)
		argv = append(argv, arg)
	}
	return argv
}

// NeedsOutDir reports whether the command writes build output to {out}.
func (c Command) NeedsOutDir() bool {
	for _, arg := range c.Args {
		if strings.Contains(arg, OutPlaceholder) {
			return true
		}
	}
	return false
}

// String renders the command line for display.
func (c Command) String() string {
	return strings.Join(c.Argv(FilePlaceholder, OutPlaceholder), " ")
}

// FilenameRule derives the on-disk filename a language requires for the
// submitted code. It returns an empty string when no rule applies.
type FilenameRule func(code string) string

// Profile is the static description of one language. Profiles are never
// mutated after registration.
type Profile struct {
	Name Name `json:"name"`

	// DisplayName is the human name used in prompts ("C++").
	DisplayName string `json:"display_name"`

	// Extension has a leading dot (".cpp").
	Extension string `json:"file_extension"`

	// FileGlob matches source filenames for detection.
	FileGlob string `json:"file_glob"`

	// Compiler is the pass/fail syntax check.
	Compiler Command `json:"compiler"`

	// Linter is the per-line static analyser, nil when the language has none.
	Linter *Command `json:"linter,omitempty"`

	Filename FilenameRule `json:"-"`
}

// HasLinter reports whether the profile has a per-line static analyser.
func (p Profile) HasLinter() bool {
	return p.Linter != nil
}

// SourceFilename returns the filename the submitted code must be saved
// under, or fallback + extension when the language imposes no rule.
func (p Profile) SourceFilename(code, fallback string) string {
	if p.Filename != nil {
		if name := p.Filename(code); name != "" {
			return name
		}
	}
	return fallback + p.Extension
}

// defaultProfiles is the fixed supported set.
func defaultProfiles() []Profile {
	cppcheck := func() *Command {
		return &Command{
			Tool:   "cppcheck",
			Binary: "cppcheck",
			Args:   []string{"--xml", "--enable=all", FilePlaceholder},
			Output: StreamStderr,
			Format: FormatCppcheckXML,
		}
	}

	return []Profile{
		{
			Name:        CPP,
			DisplayName: "C++",
			Extension:   ".cpp",
			FileGlob:    "*.{cpp,cc,cxx,c++,hpp,hh,hxx}",
			Compiler: Command{
				Tool:   "g++",
				Binary: "g++",
				Args:   []string{"-fsyntax-only", FilePlaceholder},
				Output: StreamStderr,
				Format: FormatText,
			},
			Linter: cppcheck(),
		},
		{
			Name:        C,
			DisplayName: "C",
			Extension:   ".c",
			FileGlob:    "*.{c,h}",
			Compiler: Command{
				Tool:   "gcc",
				Binary: "gcc",
				Args:   []string{"-fsyntax-only", FilePlaceholder},
				Output: StreamStderr,
				Format: FormatText,
			},
			Linter: cppcheck(),
		},
		{
			Name:        Python,
			DisplayName: "Python",
			Extension:   ".py",
			FileGlob:    "*.{py,pyw}",
			Compiler: Command{
				Tool:   "python3",
				Binary: "python3",
				// bytecode goes to {out} instead of __pycache__ beside the source
				Args:   []string{"-X", "pycache_prefix=" + OutPlaceholder, "-m", "py_compile", FilePlaceholder},
				Output: StreamStderr,
				Format: FormatText,
			},
		},
		{
			Name:        Java,
			DisplayName: "Java",
			Extension:   ".java",
			FileGlob:    "*.java",
			Compiler: Command{
				Tool:   "javac",
				Binary: "javac",
				Args:   []string{"-d", OutPlaceholder, FilePlaceholder},
				Output: StreamStderr,
				Format: FormatText,
			},
			Filename: JavaFilename,
		},
		{
			Name:        JavaScript,
			DisplayName: "JavaScript",
			Extension:   ".js",
			FileGlob:    "*.{js,mjs,cjs}",
			Compiler: Command{
				Tool:   "node",
				Binary: "node",
				Args:   []string{"--check", FilePlaceholder},
				Output: StreamStderr,
				Format: FormatText,
			},
		},
	}
}
