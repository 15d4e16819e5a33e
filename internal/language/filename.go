package language

import "regexp"

// DefaultJavaClass is used when no public type declaration is found.
const DefaultJavaClass = "Main"

var javaPublicTypeRe = regexp.MustCompile(
	`(?m)^\s*public\s+(?:(?:final|abstract|sealed|strictfp)\s+)*(?:class|interface|enum|record)\s+([A-Za-z_$][A-Za-z0-9_$]*)`)

// JavaClassName returns the name of the first public top-level type in code,
// or an empty string when there is none.
func JavaClassName(code string) string {
	m := javaPublicTypeRe.FindStringSubmatch(code)
	if m == nil {
		return ""
	}
	return m[1]
}

// JavaFilename returns the filename javac requires for code: the public
// type name plus ".java", or Main.java when no public type is declared.
func JavaFilename(code string) string {
	name := JavaClassName(code)
	if name == "" {
		name = DefaultJavaClass
	}
	return name + ".java"
}
