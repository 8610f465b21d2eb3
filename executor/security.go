package executor

import (
	"fmt"
	"regexp"
	"strings"
)

// Screening is a best-effort deny-list filter, not a security boundary.
// Pattern matching on source text is trivially bypassable (string
// concatenation, encodings, aliasing); it exists to stop accidental and
// low-effort misuse before a process is ever spawned. Callers must not
// treat a Safe verdict as proof the code is harmless.

// Violation categories.
const (
	CategoryFileAccess     = "file_access"
	CategoryProcessControl = "process_control"
	CategoryNetwork        = "network"
	CategoryShellCommand   = "shell_command"
	CategoryCodeSize       = "code_size"
)

// Violation records one denylist hit: the category and the pattern
// that matched.
type Violation struct {
	Category string `json:"category"`
	Pattern  string `json:"pattern"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Category, v.Pattern)
}

// Verdict is the outcome of screening one piece of code.
type Verdict struct {
	Safe       bool        `json:"safe"`
	Violations []Violation `json:"violations,omitempty"`
}

// screenRule is one denylist entry. The scan records the first matching
// rule per category.
type screenRule struct {
	category string
	label    string
	pattern  *regexp.Regexp
}

var screenRules = []screenRule{
	// Filesystem access
	{CategoryFileAccess, "open(", regexp.MustCompile(`\bopen\s*\(`)},
	{CategoryFileAccess, "file(", regexp.MustCompile(`\bfile\s*\(`)},
	{CategoryFileAccess, "shutil.rmtree", regexp.MustCompile(`\bshutil\.rmtree`)},
	{CategoryFileAccess, "os.remove", regexp.MustCompile(`\bos\.(remove|rmdir|unlink)`)},
	{CategoryFileAccess, "fs.", regexp.MustCompile(`\bfs\.(unlink|rm|write)`)},

	// Process / system invocation
	{CategoryProcessControl, "exec(", regexp.MustCompile(`\bexec\s*\(`)},
	{CategoryProcessControl, "eval(", regexp.MustCompile(`\beval\s*\(`)},
	{CategoryProcessControl, "os.system", regexp.MustCompile(`\bos\.system`)},
	{CategoryProcessControl, "subprocess", regexp.MustCompile(`\bsubprocess\b`)},
	{CategoryProcessControl, "__import__", regexp.MustCompile(`\b__import__\s*\(`)},
	{CategoryProcessControl, "child_process", regexp.MustCompile(`\bchild_process\b`)},

	// Network access
	{CategoryNetwork, "socket.", regexp.MustCompile(`\bsocket\.`)},
	{CategoryNetwork, "requests.", regexp.MustCompile(`\brequests\.`)},
	{CategoryNetwork, "urllib", regexp.MustCompile(`\burllib\b`)},
	{CategoryNetwork, "fetch(", regexp.MustCompile(`\bfetch\s*\(`)},
	{CategoryNetwork, "axios", regexp.MustCompile(`\baxios\b`)},
	{CategoryNetwork, "XMLHttpRequest", regexp.MustCompile(`\bxmlhttprequest\b`)},

	// Destructive or privilege-escalating shell commands
	{CategoryShellCommand, "rm -rf", regexp.MustCompile(`\brm\s+-[a-z]*f`)},
	{CategoryShellCommand, "chmod", regexp.MustCompile(`\bchmod\s+`)},
	{CategoryShellCommand, "chown", regexp.MustCompile(`\bchown\s+`)},
	{CategoryShellCommand, "sudo", regexp.MustCompile(`\bsudo\s+`)},
	{CategoryShellCommand, "curl", regexp.MustCompile(`\bcurl\s+`)},
	{CategoryShellCommand, "wget", regexp.MustCompile(`\bwget\s+`)},
	{CategoryShellCommand, "dd", regexp.MustCompile(`\bdd\s+if=`)},
	{CategoryShellCommand, "mkfs", regexp.MustCompile(`\bmkfs\b`)},
	{CategoryShellCommand, "pip install", regexp.MustCompile(`\bpip3?\s+install`)},
	{CategoryShellCommand, "npm install", regexp.MustCompile(`\bnpm\s+install`)},
	{CategoryShellCommand, "git clone", regexp.MustCompile(`\bgit\s+clone`)},
}

// Screener scans code text against the denylist. It never executes or
// even parses the code.
type Screener struct {
	maxCodeBytes int
}

// NewScreener returns a Screener that also rejects code longer than
// maxCodeBytes (0 disables the size ceiling).
func NewScreener(maxCodeBytes int) *Screener {
	return &Screener{maxCodeBytes: maxCodeBytes}
}

// Screen produces a Verdict for the given code. Matching is
// case-insensitive; within each category only the first matching rule
// is recorded. A Verdict with Safe=false must short-circuit execution
// before any subprocess is created.
func (s *Screener) Screen(code string) Verdict {
	var violations []Violation

	if s.maxCodeBytes > 0 && len(code) > s.maxCodeBytes {
		violations = append(violations, Violation{
			Category: CategoryCodeSize,
			Pattern:  fmt.Sprintf("code exceeds %d bytes", s.maxCodeBytes),
		})
	}

	lower := strings.ToLower(code)
	seen := map[string]bool{}
	for _, rule := range screenRules {
		if seen[rule.category] {
			continue
		}
		if rule.pattern.MatchString(lower) {
			violations = append(violations, Violation{Category: rule.category, Pattern: rule.label})
			seen[rule.category] = true
		}
	}

	return Verdict{Safe: len(violations) == 0, Violations: violations}
}
