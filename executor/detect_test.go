package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"PythonPrint", `print("hi")`, LanguagePython},
		{"PythonImport", "import json\nprint(json.dumps([]))", LanguagePython},
		{"PythonDef", "def add(a, b):\n    return a + b", LanguagePython},
		{"PythonMainGuard", `if __name__ == "__main__":` + "\n    pass", LanguagePython},
		{"JavaScriptConsoleLog", `console.log("hi")`, LanguageJavaScript},
		{"JavaScriptFunction", "function greet(name) { return name }", LanguageJavaScript},
		{"JavaScriptConst", "const x = 42;\nconsole.log(x)", LanguageJavaScript},
		{"JavaScriptRequire", `const fs = require("path")`, LanguageJavaScript},
		{"BashEcho", "echo hi", LanguageBash},
		{"BashShebang", "#!/bin/bash\nls -la", LanguageBash},
		{"BashExportAndVar", "export NAME=world\necho $NAME", LanguageBash},
		{"EmptyDefaultsToPython", "", LanguagePython},
		{"AmbiguousDefaultsToPython", "x = 1", LanguagePython},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.code))
		})
	}
}

func TestDetectLanguageTieGoesToDefault(t *testing.T) {
	// One javascript hint and one bash hint, no strict winner.
	code := "console.log($HOME)"
	assert.Equal(t, DefaultLanguage, DetectLanguage(code))
}

func TestDetectLanguageHighestScoreWins(t *testing.T) {
	// Two bash hints against one javascript hint.
	code := "echo start\nexport MODE=fast\nconsole.log(1)"
	assert.Equal(t, LanguageBash, DetectLanguage(code))
}
