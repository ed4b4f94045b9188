package query

import (
	"testing"
)

func FuzzQueryParser(f *testing.F) {
	f.Add("tag:一教")
	f.Add("tag:立技 AND tag:呼吸法")
	f.Add(`title:"kokyu ho" date:2024-05-01`)
	f.Add("")
	f.Add("tag:a AND tag:a AND tag:a")
	f.Add("((((tag:x))))")
	f.Add("tag:x OR tag:y")
	f.Add(`title:"unterminated`)

	f.Fuzz(func(t *testing.T, input string) {
		// Should never panic, regardless of input
		_, _ = Parse(input)
	})
}
