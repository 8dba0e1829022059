package recodec

import (
	"errors"
	"strings"
	"testing"
)

func TestIssuesError_SummarizesFirstThree(t *testing.T) {
	iss := Issues{
		{Path: "/a", Code: CodeRequired},
		{Path: "/b", Code: CodeInvalidType},
		{Path: "/c", Code: CodeTooSmall},
		{Path: "/d", Code: CodePattern},
	}
	msg := iss.Error()
	if !strings.Contains(msg, "required at /a") || !strings.Contains(msg, "too_small at /c") {
		t.Fatalf("unexpected summary: %q", msg)
	}
	if strings.Contains(msg, "/d") {
		t.Fatalf("summary should cut off after three entries: %q", msg)
	}
	if !strings.Contains(msg, "total 4") {
		t.Fatalf("summary should carry the total: %q", msg)
	}
}

func TestIssuesAt(t *testing.T) {
	iss := Issues{
		{Path: "/x", Code: CodeRequired},
		{Path: "/x/0", Code: CodeInvalidType},
		{Path: "/x", Code: CodeTooBig},
	}
	got := iss.At("/x")
	if len(got) != 2 || got[1].Code != CodeTooBig {
		t.Fatalf("At should match exact paths only: %#v", got)
	}
	if len(iss.At("/missing")) != 0 {
		t.Fatalf("unmatched path should yield nothing")
	}
}

func TestRebase(t *testing.T) {
	iss := Issues{
		{Path: "/", Code: CodeInvalidType},
		{Path: "/inner", Code: CodeRequired},
		{Path: "relative", Code: CodePattern},
	}
	out := Rebase("/field", iss)
	if out[0].Path != "/field" {
		t.Fatalf("root path should collapse onto base: %q", out[0].Path)
	}
	if out[1].Path != "/field/inner" {
		t.Fatalf("absolute child path: %q", out[1].Path)
	}
	if out[2].Path != "/field/relative" {
		t.Fatalf("relative path: %q", out[2].Path)
	}
	// input untouched
	if iss[0].Path != "/" {
		t.Fatalf("rebase must not mutate its input")
	}
	if Rebase("/field", nil) != nil {
		t.Fatalf("empty input stays nil")
	}
}

func TestAsIssues(t *testing.T) {
	inner := Issues{{Path: "/", Code: CodeParseError}}
	wrapped := errorsJoin(inner)
	if got, ok := AsIssues(wrapped); !ok || got[0].Code != CodeParseError {
		t.Fatalf("AsIssues should unwrap: %v %v", got, ok)
	}
	if _, ok := AsIssues(errors.New("plain")); ok {
		t.Fatalf("plain errors are not Issues")
	}
	if _, ok := AsIssues(nil); ok {
		t.Fatalf("nil is not Issues")
	}
}

func errorsJoin(err error) error { return wrapErr{err} }

type wrapErr struct{ err error }

func (w wrapErr) Error() string { return "wrapped: " + w.err.Error() }
func (w wrapErr) Unwrap() error { return w.err }

func TestIssuesFromErr(t *testing.T) {
	plain := errors.New("boom")
	iss := IssuesFromErr("/at", plain)
	if iss[0].Code != CodeParseError || iss[0].Path != "/at" || !errors.Is(iss[0].Cause, plain) {
		t.Fatalf("plain error should wrap as parse_error: %#v", iss[0])
	}
	orig := Issues{{Path: "/x", Code: CodeTooLong}}
	if got := IssuesFromErr("/ignored", orig); got[0].Path != "/x" {
		t.Fatalf("existing issues pass through unchanged: %#v", got)
	}
	if IssuesFromErr("/", nil) != nil {
		t.Fatalf("nil error yields nil")
	}
}
