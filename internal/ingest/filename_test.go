package ingest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hyan/noteflow/internal/model"
	"github.com/hyan/noteflow/internal/vault"
)

func newTestVault(t *testing.T) *vault.FS {
	t.Helper()
	v, err := vault.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("creating test vault: %v", err)
	}
	return v
}

func fixedResolver(v *vault.FS, at time.Time) *Resolver {
	r := NewResolver(v)
	r.now = func() time.Time { return at }
	return r
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "meeting notes", "meetingnotes"},
		{"allowed specials", "a+b-c_d.e@f|g", "a+b-c_d.e@f|g"},
		{"cjk", "会议记录2024", "会议记录2024"},
		{"path chars stripped", "a/b\\c^d:e", "abcde"},
		{"nothing survives", "???!!!", "undefined"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeTitle(tt.in); got != tt.want {
				t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveRules(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.Local)
	created := time.Date(2023, 1, 2, 0, 0, 0, 0, time.Local)
	r := fixedResolver(newTestVault(t), now)

	tests := []struct {
		name    string
		cfg     model.NamingConfig
		content string
		want    string
	}{
		{
			name: "date ymd uses filing time",
			cfg:  model.NamingConfig{Rule: model.RuleDateYMD, ConflictPolicy: model.ConflictAppend},
			want: "2024-06-15.md",
		},
		{
			name: "date md uses filing time",
			cfg:  model.NamingConfig{Rule: model.RuleDateMD, ConflictPolicy: model.ConflictAppend},
			want: "06-15.md",
		},
		{
			name:    "content first line",
			cfg:     model.NamingConfig{Rule: model.RuleContent, ConflictPolicy: model.ConflictAppend},
			content: "shopping list\nmilk\neggs",
			want:    "shoppinglist.md",
		},
		{
			name:    "content first line truncated to 20 runes",
			cfg:     model.NamingConfig{Rule: model.RuleContent, ConflictPolicy: model.ConflictAppend},
			content: strings.Repeat("a", 30),
			want:    strings.Repeat("a", 20) + ".md",
		},
		{
			name:    "content empty first line falls to whole content",
			cfg:     model.NamingConfig{Rule: model.RuleContent, ConflictPolicy: model.ConflictAppend},
			content: "\nsecondline",
			want:    "secondline.md",
		},
		{
			name: "fixed pattern uses createdAt",
			cfg:  model.NamingConfig{Rule: model.RuleFixed, FixedPattern: "inbox-yyyy-mm-dd", ConflictPolicy: model.ConflictAppend},
			want: "inbox-2023-01-02.md",
		},
		{
			name: "empty fixed pattern falls back to current date",
			cfg:  model.NamingConfig{Rule: model.RuleFixed, ConflictPolicy: model.ConflictAppend},
			want: "2024-06-15.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.cfg, tt.content, created, "")
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveExplicitTitleWins(t *testing.T) {
	r := fixedResolver(newTestVault(t), time.Now())
	cfg := model.NamingConfig{Rule: model.RuleDateYMD, ConflictPolicy: model.ConflictAppend}

	got, err := r.Resolve(cfg, "body", time.Now(), "my title!")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "mytitle.md" {
		t.Errorf("Resolve = %q, want %q", got, "mytitle.md")
	}
}

func TestResolveAlwaysEndsInMD(t *testing.T) {
	r := fixedResolver(newTestVault(t), time.Now())
	for _, rule := range []model.NamingRule{model.RuleDateYMD, model.RuleDateMD, model.RuleContent, model.RuleFixed} {
		cfg := model.NamingConfig{Rule: rule, ConflictPolicy: model.ConflictAppend}
		got, err := r.Resolve(cfg, "some content", time.Now(), "")
		if err != nil {
			t.Fatalf("Resolve(%s): %v", rule, err)
		}
		if !strings.HasSuffix(got, ".md") {
			t.Errorf("Resolve(%s) = %q, want .md suffix", rule, got)
		}
	}
}

func TestResolveCollisionProbing(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()
	r := fixedResolver(v, time.Now())
	cfg := model.NamingConfig{Rule: model.RuleContent, ConflictPolicy: model.ConflictNew, SaveFolder: "Inbox"}

	// No collision: plain name.
	got, err := r.Resolve(cfg, "todo", time.Now(), "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "todo.md" {
		t.Errorf("Resolve = %q, want todo.md", got)
	}

	// Pre-create the base name and variants 0..N-1; resolution must
	// return variant N.
	const n = 3
	if err := v.Create(ctx, "Inbox/todo.md", "x"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		if err := v.Create(ctx, fmt.Sprintf("Inbox/todo(%d).md", i), "x"); err != nil {
			t.Fatal(err)
		}
	}

	got, err = r.Resolve(cfg, "todo", time.Now(), "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := fmt.Sprintf("todo(%d).md", n); got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveAppendSkipsProbing(t *testing.T) {
	v := newTestVault(t)
	r := fixedResolver(v, time.Now())
	cfg := model.NamingConfig{Rule: model.RuleContent, ConflictPolicy: model.ConflictAppend}

	if err := v.Create(context.Background(), "todo.md", "x"); err != nil {
		t.Fatal(err)
	}

	// Append mode intentionally reuses the existing name.
	got, err := r.Resolve(cfg, "todo", time.Now(), "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "todo.md" {
		t.Errorf("Resolve = %q, want todo.md", got)
	}
}

func TestResolveNameExhausted(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()
	r := fixedResolver(v, time.Now())
	cfg := model.NamingConfig{Rule: model.RuleContent, ConflictPolicy: model.ConflictNew}

	if err := v.Create(ctx, "x.md", "x"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i <= maxCollisionProbes; i++ {
		if err := v.Create(ctx, fmt.Sprintf("x(%d).md", i), "x"); err != nil {
			t.Fatal(err)
		}
	}

	_, err := r.Resolve(cfg, "x", time.Now(), "")
	if !IsNameExhausted(err) {
		t.Fatalf("Resolve error = %v, want NameExhaustedError", err)
	}
}
