package compile_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/recodec/recodec"
	"github.com/recodec/recodec/check"
	"github.com/recodec/recodec/compile"
	"github.com/recodec/recodec/introspect"
	"github.com/recodec/recodec/typeexpr"
)

func TestAlias_StacksConstraintsWithUseSite(t *testing.T) {
	ctx := context.Background()
	c := newCompiler()
	if err := c.RegisterAlias("ShortName", typeexpr.String(), check.MinLen(3)); err != nil {
		t.Fatalf("register: %v", err)
	}

	urlCheck := func(ctx context.Context, v any) error {
		s, ok := v.(string)
		if !ok {
			return nil
		}
		if u, err := url.Parse(s); err != nil || u.Scheme == "" {
			return recodec.Issues{{Path: "/", Code: recodec.CodePattern, Message: "not an absolute URL"}}
		}
		return nil
	}
	fd := mustResolve(t, c, typeexpr.Alias("ShortName"),
		recodec.Meta{Constraints: []recodec.Constraint{urlCheck}})

	// "ab" violates the alias minimum length before the URL check matters.
	_, err := fd.Load(ctx, "ab")
	iss, ok := recodec.AsIssues(err)
	if !ok || iss[0].Code != recodec.CodeTooShort {
		t.Fatalf("expected too_short from the alias constraint, got %v", err)
	}
	// "abc" passes the alias but fails the use-site URL check.
	_, err = fd.Load(ctx, "abc")
	iss, ok = recodec.AsIssues(err)
	if !ok || iss[0].Code != recodec.CodePattern {
		t.Fatalf("expected pattern from the use-site constraint, got %v", err)
	}
	if _, err := fd.Load(ctx, "https://example.com"); err != nil {
		t.Fatalf("valid value rejected: %v", err)
	}
	if fd.TypeName != "ShortName" {
		t.Fatalf("alias should name the descriptor, got %q", fd.TypeName)
	}
}

func TestAlias_NestedAliasAccumulates(t *testing.T) {
	ctx := context.Background()
	c := newCompiler()
	if err := c.RegisterAlias("Name", typeexpr.String(), check.MinLen(2)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := c.RegisterAlias("TrimmedName", typeexpr.Alias("Name"), check.MaxLen(5)); err != nil {
		t.Fatalf("register: %v", err)
	}
	fd := mustResolve(t, c, typeexpr.Alias("TrimmedName"), recodec.Meta{})
	if _, err := fd.Load(ctx, "x"); err == nil {
		t.Fatalf("inner alias constraint must still apply")
	}
	if _, err := fd.Load(ctx, "toolong!"); err == nil {
		t.Fatalf("outer alias constraint must apply")
	}
	if _, err := fd.Load(ctx, "fine"); err != nil {
		t.Fatalf("valid value rejected: %v", err)
	}
}

func TestAlias_CustomConstructor(t *testing.T) {
	ctx := context.Background()
	c := newCompiler()
	ctor := func(meta recodec.Meta) (*recodec.FieldDescriptor, error) {
		return &recodec.FieldDescriptor{
			LoadFunc: func(ctx context.Context, v any) (any, error) {
				s, ok := v.(string)
				if !ok {
					return nil, recodec.Issues{{Path: "/", Code: recodec.CodeInvalidType, Message: "expected string"}}
				}
				return "custom:" + s, nil
			},
			DumpFunc:    func(ctx context.Context, v any) (any, error) { return v, nil },
			AcceptsFunc: func(v any) bool { _, ok := v.(string); return ok },
		}, nil
	}
	if err := c.RegisterAliasCtor("Tagged", ctor); err != nil {
		t.Fatalf("register: %v", err)
	}
	fd := mustResolve(t, c, typeexpr.Alias("Tagged"), recodec.Meta{})
	got, err := fd.Load(ctx, "v")
	if err != nil || got != "custom:v" {
		t.Fatalf("custom constructor not used: %v %v", got, err)
	}
}

func TestAlias_DuplicateRegistrationFails(t *testing.T) {
	c := newCompiler()
	if err := c.RegisterAlias("A", typeexpr.String()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := c.RegisterAlias("A", typeexpr.Int()); !errors.Is(err, compile.ErrAliasExists) {
		t.Fatalf("expected ErrAliasExists, got %v", err)
	}
}

func TestAlias_RegistryFreezesOnFirstCompile(t *testing.T) {
	set := introspect.NewSet()
	set.Declare("R").Field("v", typeexpr.String(), recodec.Meta{})
	c := compile.New(set)
	if err := c.RegisterAlias("Early", typeexpr.String()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := c.Compile("R", nil); err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := c.RegisterAlias("Late", typeexpr.String()); !errors.Is(err, compile.ErrRegistryFrozen) {
		t.Fatalf("expected ErrRegistryFrozen, got %v", err)
	}
}
