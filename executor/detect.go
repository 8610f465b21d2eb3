package executor

import "regexp"

// detectRule scores one syntactic hint toward one language. Rules are
// data, not control flow, so adding a language means appending rules.
type detectRule struct {
	pattern  *regexp.Regexp
	language string
	weight   int
}

var detectRules = []detectRule{
	// Python
	{regexp.MustCompile(`(?m)\bimport\s+\w+`), LanguagePython, 1},
	{regexp.MustCompile(`(?m)\bfrom\s+\w+\s+import`), LanguagePython, 1},
	{regexp.MustCompile(`(?m)\bdef\s+\w+\s*\(`), LanguagePython, 1},
	{regexp.MustCompile(`(?m)\bclass\s+\w+\s*[(:]`), LanguagePython, 1},
	{regexp.MustCompile(`(?m)\bif\s+__name__\s*==\s*["']__main__["']`), LanguagePython, 1},
	{regexp.MustCompile(`(?m)\bprint\s*\(`), LanguagePython, 1},

	// JavaScript
	{regexp.MustCompile(`(?m)\bconsole\.log\s*\(`), LanguageJavaScript, 1},
	{regexp.MustCompile(`(?m)\bfunction\s+\w+\s*\(`), LanguageJavaScript, 1},
	{regexp.MustCompile(`(?m)\bconst\s+\w+\s*=`), LanguageJavaScript, 1},
	{regexp.MustCompile(`(?m)\blet\s+\w+\s*=`), LanguageJavaScript, 1},
	{regexp.MustCompile(`(?m)\bvar\s+\w+\s*=`), LanguageJavaScript, 1},
	{regexp.MustCompile(`(?m)\brequire\s*\(`), LanguageJavaScript, 1},

	// Bash
	{regexp.MustCompile(`(?m)^\s*#!/bin/(ba)?sh`), LanguageBash, 1},
	{regexp.MustCompile(`(?m)\becho\s+`), LanguageBash, 1},
	{regexp.MustCompile(`(?m)\bexport\s+\w+`), LanguageBash, 1},
	{regexp.MustCompile(`\$\w+`), LanguageBash, 1},
}

// DetectLanguage guesses the language of a code snippet by scoring it
// against the rule table. The language with the strictly highest score
// wins; ties and a zero total fall back to DefaultLanguage. Detection
// is advisory only and never fails.
func DetectLanguage(code string) string {
	scores := map[string]int{}
	for _, rule := range detectRules {
		if rule.pattern.MatchString(code) {
			scores[rule.language] += rule.weight
		}
	}

	best := DefaultLanguage
	bestScore := 0
	tied := false
	for _, lang := range []string{LanguagePython, LanguageJavaScript, LanguageBash} {
		switch {
		case scores[lang] > bestScore:
			best, bestScore, tied = lang, scores[lang], false
		case scores[lang] == bestScore && scores[lang] > 0:
			tied = true
		}
	}
	if bestScore == 0 || tied {
		return DefaultLanguage
	}
	return best
}
