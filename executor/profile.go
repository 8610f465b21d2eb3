package executor

import (
	"time"
)

// Language identifier constants
const (
	LanguagePython     = "python"
	LanguageJavaScript = "javascript"
	LanguageBash       = "bash"
)

// DefaultLanguage is assigned when detection finds no clear winner.
const DefaultLanguage = LanguagePython

// Profile describes how to invoke one language runtime. Profiles are
// built once at service construction and never mutated afterwards.
type Profile struct {
	// Language is the identifier callers use ("python", "javascript", "bash").
	Language string

	// Command is the launch command. For inline profiles the code text is
	// appended as the final argument; for file profiles the path of the
	// temp script file is appended instead.
	Command []string

	// Inline selects between passing code as an argument (python3 -c)
	// and writing it to a script file first.
	Inline bool

	// Extension is the script file extension, including the dot.
	Extension string

	// DefaultTimeout applies when the request carries no timeout.
	DefaultTimeout time.Duration

	// MaxTimeout is the hard ceiling; requested timeouts above it are clamped.
	MaxTimeout time.Duration

	// CheckCommand, when set, parses code without executing it
	// (e.g. "bash -n"). The file path is appended as the final argument.
	// Used only by Validate.
	CheckCommand []string
}

// DefaultProfiles returns the built-in language table.
func DefaultProfiles() map[string]Profile {
	return map[string]Profile{
		LanguagePython: {
			Language:       LanguagePython,
			Command:        []string{"python3", "-c"},
			Inline:         true,
			Extension:      ".py",
			DefaultTimeout: 30 * time.Second,
			MaxTimeout:     60 * time.Second,
			CheckCommand:   []string{"python3", "-m", "py_compile"},
		},
		LanguageJavaScript: {
			Language:       LanguageJavaScript,
			Command:        []string{"node"},
			Inline:         false,
			Extension:      ".js",
			DefaultTimeout: 30 * time.Second,
			MaxTimeout:     60 * time.Second,
			CheckCommand:   []string{"node", "--check"},
		},
		LanguageBash: {
			Language:       LanguageBash,
			Command:        []string{"bash"},
			Inline:         false,
			Extension:      ".sh",
			DefaultTimeout: 30 * time.Second,
			MaxTimeout:     60 * time.Second,
			CheckCommand:   []string{"bash", "-n"},
		},
	}
}

// EffectiveTimeout resolves the deadline for one request: the language
// default when nothing was requested, otherwise min(requested, ceiling).
func (p Profile) EffectiveTimeout(requested time.Duration) time.Duration {
	if requested <= 0 {
		return p.DefaultTimeout
	}
	if requested > p.MaxTimeout {
		return p.MaxTimeout
	}
	return requested
}
