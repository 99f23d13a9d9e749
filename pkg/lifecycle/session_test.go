package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/scopekit/pkg/domain"
)

// registerNested registers the global / group 1 / group 2 / group 3 layout
// with one ignored test per level except group 2.
func registerNested(s *Session, j *journal) {
	j.hooks(s, "global")
	_ = s.Test("1", j.body("1"))
	_ = s.Ignore("2", j.body("2"))
	_ = s.Test("3", j.body("3"))

	s.Group("group 1", func() {
		j.hooks(s, "group 1")
		_ = s.Test("1", j.body("1"))
		_ = s.TestDef(Definition{Name: "2", Fn: j.body("2"), Ignore: true})
		_ = s.Test("3", j.body("3"))
	})

	s.Group("group 2", func() {
		j.hooks(s, "group 2")
		_ = s.Test("1", j.body("1"))

		s.Group("group 3", func() {
			j.hooks(s, "group 3")
			_ = s.Test("1", j.body("1"))
			_ = s.Ignore("2", j.body("2"))
			_ = s.Test("3", j.body("3"))
		})

		_ = s.Test("3", j.body("3"))
	})
}

func TestSession_NestedLifecycle(t *testing.T) {
	rec := &recorder{}
	j := &journal{}
	s := NewSession(rec)
	registerNested(s, j)
	s.Seal()

	errs := rec.runAll(context.Background())
	require.Empty(t, errs)

	want := []string{
		"before all global", "before each global", "1", "after each global",
		"before each global", "3", "after each global",

		"before each global", "before all group 1", "before each group 1", "1",
		"after each group 1", "after each global",
		"before each global", "before each group 1", "3",
		"after each group 1", "after all group 1", "after each global",

		"before each global", "before all group 2", "before each group 2", "1",
		"after each group 2", "after each global",
		"before each global", "before each group 2", "before all group 3", "before each group 3", "1",
		"after each group 3", "after each group 2", "after each global",
		"before each global", "before each group 2", "before each group 3", "3",
		"after each group 3", "after all group 3", "after each group 2", "after each global",
		"before each global", "before each group 2", "3",
		"after each group 2", "after all group 2", "after each global", "after all global",
	}
	assert.Equal(t, want, j.events)
}

func TestSession_ExpectedCounts(t *testing.T) {
	t.Run("should count every non-ignored test on the root", func(t *testing.T) {
		rec := &recorder{}
		s := NewSession(rec)
		registerNested(s, &journal{})

		outline := s.Outline()
		assert.Equal(t, 8, s.Root().Expected)
		assert.Equal(t, outline.CountActive(), s.Root().Expected)
		assert.Equal(t, 11, outline.CountTests())
		assert.Len(t, rec.regs, 11)
	})

	t.Run("should not count ignored tests toward their group", func(t *testing.T) {
		rec := &recorder{}
		j := &journal{}
		s := NewSession(rec)
		s.Group("g", func() {
			s.AfterAll(j.hook("after all g"))
			_ = s.Test("a", j.body("a"))
			_ = s.TestDef(Definition{Name: "x", Fn: j.body("x"), Ignore: true})
		})
		s.Seal()

		x := rec.find("g > x")
		assert.True(t, x.Ignore)

		a := rec.find("g > a")
		require.NoError(t, a.Fn(context.Background()))
		assert.Equal(t, []string{"a", "after all g"}, j.events)
		assert.Equal(t, Counts{Expected: 1, Completed: 1}, s.Root())
	})

	t.Run("should leave counters untouched when an ignored body runs anyway", func(t *testing.T) {
		rec := &recorder{}
		j := &journal{}
		s := NewSession(rec)
		s.BeforeAll(j.hook("before all"))
		_ = s.Ignore("x", j.body("x"))
		s.Seal()

		require.NoError(t, rec.regs[0].Fn(context.Background()))
		assert.Equal(t, []string{"x"}, j.events)
		assert.Equal(t, Counts{}, s.Root())
	})
}

func TestSession_GroupSetupTeardown(t *testing.T) {
	rec := &recorder{}
	j := &journal{}
	s := NewSession(rec)
	s.Group("g", func() {
		s.BeforeAll(j.hook("before all g"))
		s.AfterAll(j.hook("after all g"))
		_ = s.Test("a", j.body("a"))
		_ = s.Test("b", j.body("b"))
	})
	s.Seal()

	ctx := context.Background()
	require.NoError(t, rec.find("g > b").Fn(ctx))
	require.NoError(t, rec.find("g > a").Fn(ctx))

	assert.Equal(t, []string{"before all g", "b", "a", "after all g"}, j.events)
}

func TestSession_ThreeDeep(t *testing.T) {
	rec := &recorder{}
	j := &journal{}
	s := NewSession(rec)
	s.Group("a", func() {
		j.hooks(s, "a")
		_ = s.Test("a1", j.body("a1"))
		s.Group("b", func() {
			j.hooks(s, "b")
			_ = s.Test("b1", j.body("b1"))
			s.Group("c", func() {
				j.hooks(s, "c")
				_ = s.Test("c1", j.body("c1"))
			})
		})
	})
	s.Seal()

	require.Empty(t, rec.runAll(context.Background()))

	for _, scope := range []string{"a", "b", "c"} {
		assert.Equal(t, 1, j.count("before all "+scope), scope)
		assert.Equal(t, 1, j.count("after all "+scope), scope)
	}

	afterAll := j.filter(func(e string) bool { return strings.HasPrefix(e, "after all") })
	assert.Equal(t, []string{"after all c", "after all b", "after all a"}, afterAll)
}

func TestSession_AnyExecutionOrder(t *testing.T) {
	orders := map[string][]int{
		"should fire once in registration order": {0, 1, 2, 3},
		"should fire once in reverse order":      {3, 2, 1, 0},
		"should fire once interleaved":           {2, 0, 3, 1},
	}

	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			rec := &recorder{}
			j := &journal{}
			s := NewSession(rec)
			s.Group("g", func() {
				s.BeforeAll(j.hook("before all"))
				s.AfterAll(j.hook("after all"))
				for _, n := range []string{"t0", "t1", "t2", "t3"} {
					_ = s.Test(n, j.body(n))
				}
			})
			s.Seal()

			for _, i := range order {
				require.NoError(t, rec.regs[i].Fn(context.Background()))
			}

			assert.Equal(t, 1, j.count("before all"))
			assert.Equal(t, 1, j.count("after all"))
			assert.Equal(t, "before all", j.events[0])
			assert.Equal(t, "after all", j.events[len(j.events)-1])
		})
	}
}

func TestSession_EachHookOrder(t *testing.T) {
	rec := &recorder{}
	j := &journal{}
	s := NewSession(rec)
	s.BeforeEach(j.hook("be root"))
	s.AfterEach(j.hook("ae root"))
	s.Group("outer", func() {
		s.BeforeEach(j.hook("be outer"))
		s.AfterEach(j.hook("ae outer"))
		s.Group("inner", func() {
			s.BeforeEach(j.hook("be inner"))
			s.AfterEach(j.hook("ae inner"))
			_ = s.Test("deep", j.body("deep"))
		})
		_ = s.Test("shallow", j.body("shallow"))
	})
	s.Seal()

	require.Empty(t, rec.runAll(context.Background()))

	want := []string{
		"be root", "be outer", "be inner", "deep", "ae inner", "ae outer", "ae root",
		"be root", "be outer", "shallow", "ae outer", "ae root",
	}
	assert.Equal(t, want, j.events)
}

func TestSession_HookLastWriterWins(t *testing.T) {
	rec := &recorder{}
	j := &journal{}
	s := NewSession(rec)
	s.BeforeEach(j.hook("first"))
	s.BeforeEach(j.hook("second"))
	_ = s.Test("t", j.body("t"))
	s.Seal()

	require.Empty(t, rec.runAll(context.Background()))
	assert.Equal(t, []string{"second", "t"}, j.events)
	assert.Equal(t, []string{domain.HookBeforeEach}, s.Outline().Hooks)
}

func TestSession_InvalidDefinition(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
	}{
		{name: "should reject missing function", def: Definition{Name: "x"}},
		{name: "should reject missing name", def: Definition{Fn: func(context.Context) error { return nil }}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			s := NewSession(rec)

			err := s.TestDef(tt.def)

			assert.ErrorIs(t, err, ErrInvalidDefinition)
			assert.Empty(t, rec.regs)
			assert.Equal(t, Counts{}, s.Root())
		})
	}

	t.Run("should reject bare name without body", func(t *testing.T) {
		s := NewSession(&recorder{})
		assert.ErrorIs(t, s.Test("x", nil), ErrInvalidDefinition)
	})
}

func TestSession_Sealed(t *testing.T) {
	rec := &recorder{}
	j := &journal{}
	s := NewSession(rec)
	s.Seal()
	s.Seal()

	assert.True(t, s.Sealed())
	assert.ErrorIs(t, s.Test("late", j.body("late")), ErrSealed)

	s.Group("late group", func() {
		t.Error("group body should not run after seal")
	})
	s.BeforeAll(j.hook("late hook"))

	assert.Empty(t, rec.regs)
	assert.Empty(t, s.Outline().Hooks)
	assert.Empty(t, s.Outline().Suites)
}

func TestSession_Naming(t *testing.T) {
	t.Run("should prefix same leaf name with its scopes", func(t *testing.T) {
		rec := &recorder{}
		s := NewSession(rec)
		fn := func(context.Context) error { return nil }
		s.Group("g1", func() { _ = s.Test("same", fn) })
		s.Group("g2", func() { _ = s.Test("same", fn) })

		require.Len(t, rec.regs, 2)
		assert.Equal(t, "g1 > same", rec.regs[0].Name)
		assert.Equal(t, "g2 > same", rec.regs[1].Name)
		assert.Equal(t, []string{"g1", "same"}, rec.regs[0].Path)
		assert.NotEqual(t, rec.regs[0].Name, rec.regs[1].Name)
	})

	t.Run("should use configured separator", func(t *testing.T) {
		rec := &recorder{}
		s := NewSession(rec, WithSeparator("/"))
		s.Group("a", func() {
			s.Group("b", func() { _ = s.Test("c", func(context.Context) error { return nil }) })
		})

		assert.Equal(t, "a/b/c", rec.regs[0].Name)
	})

	t.Run("should emit group headers once per group", func(t *testing.T) {
		rec := &recorder{}
		s := NewSession(rec, WithNamer(HierarchicalNamer{}))
		fn := func(context.Context) error { return nil }
		s.Group("g1", func() {
			s.Group("g2", func() { _ = s.Test("t", fn) })
			_ = s.Test("u", fn)
		})
		s.Group("g1", func() { _ = s.Test("v", fn) })

		require.Len(t, rec.regs, 3)
		assert.Equal(t, strings.Repeat("\b", 12)+"g1\n    g2\n        t", rec.regs[0].Name)
		assert.Equal(t, strings.Repeat("\b", 15)+"    u", rec.regs[1].Name)
		assert.Equal(t, strings.Repeat("\b", 12)+"g1\n    v", rec.regs[2].Name)
	})
}

func TestSession_Only(t *testing.T) {
	rec := &recorder{}
	j := &journal{}
	s := NewSession(rec)
	s.AfterAll(j.hook("after all root"))
	s.Group("g", func() {
		s.BeforeAll(j.hook("before all g"))
		s.AfterAll(j.hook("after all g"))
		_ = s.TestDef(Definition{Name: "a", Fn: j.body("a"), Only: true})
		_ = s.Test("b", j.body("b"))
		_ = s.Test("c", j.body("c"))
	})
	s.Seal()

	assert.Equal(t, Counts{Expected: 3, ExpectedOnly: 1}, s.Root())

	focused := rec.find("g > a")
	assert.True(t, focused.Only)
	require.NoError(t, focused.Fn(context.Background()))

	assert.Equal(t, []string{"before all g", "a", "after all g", "after all root"}, j.events)
	assert.Equal(t, domain.TestStatusFocused, s.Outline().Suites[0].Tests[0].Status)
}

func TestSession_OnlyThenRemaining(t *testing.T) {
	rec := &recorder{}
	j := &journal{}
	s := NewSession(rec)
	s.AfterAll(j.hook("after all root"))
	s.Group("g", func() {
		s.BeforeAll(j.hook("before all g"))
		s.AfterAll(j.hook("after all g"))
		_ = s.TestDef(Definition{Name: "a", Fn: j.body("a"), Only: true})
		_ = s.Test("b", j.body("b"))
		_ = s.Test("c", j.body("c"))
	})
	s.Seal()

	assert.Empty(t, rec.runAll(context.Background()))

	assert.Equal(t, []string{
		"before all g", "a", "after all g", "after all root",
		"b", "c",
	}, j.events)
	assert.Equal(t, 1, j.count("after all g"))
	assert.Equal(t, 1, j.count("after all root"))
	assert.Equal(t, Counts{Expected: 3, Completed: 3, ExpectedOnly: 1, CompletedOnly: 1}, s.Root())
}

func TestSession_Patterns(t *testing.T) {
	t.Run("should register unmatched tests as ignored", func(t *testing.T) {
		rec := &recorder{}
		j := &journal{}
		s := NewSession(rec, WithPatterns("g/a*"))
		s.Group("g", func() {
			s.AfterAll(j.hook("after all g"))
			_ = s.Test("alpha", j.body("alpha"))
			_ = s.Test("beta", j.body("beta"))
		})
		_ = s.Test("top", j.body("top"))
		s.Seal()

		require.NoError(t, s.Validate())
		assert.False(t, rec.find("g > alpha").Ignore)
		assert.True(t, rec.find("g > beta").Ignore)
		assert.True(t, rec.find("top").Ignore)
		assert.Equal(t, 1, s.Root().Expected)

		require.Empty(t, rec.runAll(context.Background()))
		assert.Equal(t, []string{"alpha", "after all g"}, j.events)
	})

	t.Run("should match across groups with double star", func(t *testing.T) {
		rec := &recorder{}
		s := NewSession(rec, WithPatterns("outer/**/leaf"))
		fn := func(context.Context) error { return nil }
		s.Group("outer", func() {
			s.Group("mid", func() { _ = s.Test("leaf", fn) })
			_ = s.Test("leaf2", fn)
		})

		assert.False(t, rec.regs[0].Ignore)
		assert.True(t, rec.regs[1].Ignore)
	})

	t.Run("should report malformed patterns", func(t *testing.T) {
		s := NewSession(&recorder{}, WithPatterns("[unclosed"))
		assert.ErrorIs(t, s.Validate(), doublestar.ErrBadPattern)
	})
}

func TestSession_Failures(t *testing.T) {
	t.Run("should run teardown when setup fails", func(t *testing.T) {
		rec := &recorder{}
		j := &journal{}
		boom := errors.New("boom")
		s := NewSession(rec)
		s.AfterEach(j.hook("after each root"))
		s.Group("g", func() {
			s.BeforeAll(func(context.Context) error { return boom })
			s.AfterEach(j.hook("after each g"))
			s.AfterAll(j.hook("after all g"))
			_ = s.Test("a", j.body("a"))
		})
		s.Seal()

		err := rec.regs[0].Fn(context.Background())

		require.ErrorIs(t, err, boom)
		var hookErr *HookError
		require.ErrorAs(t, err, &hookErr)
		assert.Equal(t, HookBeforeAll, hookErr.Kind)
		assert.Equal(t, "g", hookErr.Scope)
		assert.Equal(t, []string{"after each g", "after all g", "after each root"}, j.events)
		assert.Equal(t, 1, s.Root().Completed)
	})

	t.Run("should skip after each for scopes never entered", func(t *testing.T) {
		rec := &recorder{}
		j := &journal{}
		s := NewSession(rec)
		s.BeforeEach(func(context.Context) error { return errors.New("root setup") })
		s.AfterEach(j.hook("after each root"))
		s.Group("g", func() {
			s.AfterEach(j.hook("after each g"))
			s.AfterAll(j.hook("after all g"))
			_ = s.Test("a", j.body("a"))
		})
		s.Seal()

		require.Error(t, rec.regs[0].Fn(context.Background()))
		assert.Equal(t, []string{"after all g", "after each root"}, j.events)
	})

	t.Run("should run before all for the first test that reaches the scope", func(t *testing.T) {
		rec := &recorder{}
		j := &journal{}
		transient := errors.New("transient")
		failed := false
		s := NewSession(rec)
		s.BeforeEach(func(context.Context) error {
			if !failed {
				failed = true
				return transient
			}
			return nil
		})
		s.Group("g", func() {
			s.BeforeAll(j.hook("before all g"))
			s.AfterAll(j.hook("after all g"))
			_ = s.Test("a", j.body("a"))
			_ = s.Test("b", j.body("b"))
		})
		s.Seal()

		errs := rec.runAll(context.Background())

		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], transient)
		assert.Equal(t, []string{"before all g", "b", "after all g"}, j.events)
	})

	t.Run("should surface body error before teardown errors", func(t *testing.T) {
		rec := &recorder{}
		bodyErr := errors.New("body")
		teardownErr := errors.New("teardown")
		s := NewSession(rec)
		s.AfterAll(func(context.Context) error { return teardownErr })
		_ = s.Test("a", func(context.Context) error { return bodyErr })
		s.Seal()

		err := rec.regs[0].Fn(context.Background())

		assert.ErrorIs(t, err, bodyErr)
		assert.ErrorIs(t, err, teardownErr)
		assert.True(t, strings.HasPrefix(err.Error(), "body"))
	})

	t.Run("should recover panicking body and still tear down", func(t *testing.T) {
		rec := &recorder{}
		j := &journal{}
		s := NewSession(rec)
		s.AfterAll(j.hook("after all root"))
		_ = s.Test("a", func(context.Context) error { panic("kaboom") })
		s.Seal()

		err := rec.regs[0].Fn(context.Background())

		assert.ErrorIs(t, err, ErrPanic)
		assert.Contains(t, err.Error(), "kaboom")
		assert.Equal(t, []string{"after all root"}, j.events)
	})

	t.Run("should not retry before all after a failure", func(t *testing.T) {
		rec := &recorder{}
		var calls int
		s := NewSession(rec)
		s.BeforeAll(func(context.Context) error {
			calls++
			return errors.New("once")
		})
		_ = s.Test("a", func(context.Context) error { return nil })
		_ = s.Test("b", func(context.Context) error { return nil })
		s.Seal()

		errs := rec.runAll(context.Background())

		assert.Len(t, errs, 1)
		assert.Equal(t, 1, calls)
	})
}

type ctxKey struct{}

func TestSession_ContextPropagation(t *testing.T) {
	rec := &recorder{}
	var seen []any
	capture := func(ctx context.Context) error {
		seen = append(seen, ctx.Value(ctxKey{}))
		return nil
	}
	s := NewSession(rec)
	s.BeforeAll(capture)
	s.AfterEach(capture)
	_ = s.Test("a", capture)
	s.Seal()

	ctx := context.WithValue(context.Background(), ctxKey{}, "v")
	require.NoError(t, rec.regs[0].Fn(ctx))
	assert.Equal(t, []any{"v", "v", "v"}, seen)
}

func TestSession_ConcurrentExecution(t *testing.T) {
	rec := &recorder{}
	var beforeAll, afterAll atomic.Int32
	var running, afterAllEarly atomic.Int32
	s := NewSession(rec)
	s.Group("g", func() {
		s.BeforeAll(func(context.Context) error {
			beforeAll.Add(1)
			return nil
		})
		s.AfterAll(func(context.Context) error {
			afterAll.Add(1)
			if running.Load() != 0 {
				afterAllEarly.Add(1)
			}
			return nil
		})
		for i := 0; i < 32; i++ {
			_ = s.Test(string(rune('a'+i)), func(context.Context) error {
				running.Add(1)
				defer running.Add(-1)
				return nil
			})
		}
	})
	s.Seal()

	var wg sync.WaitGroup
	for _, reg := range rec.regs {
		wg.Add(1)
		go func(fn Func) {
			defer wg.Done()
			assert.NoError(t, fn(context.Background()))
		}(reg.Fn)
	}
	wg.Wait()

	assert.Equal(t, int32(1), beforeAll.Load())
	assert.Equal(t, int32(1), afterAll.Load())
	assert.Equal(t, int32(0), afterAllEarly.Load())
	assert.Equal(t, Counts{Expected: 32, Completed: 32}, s.Root())
}

func TestSession_Outline(t *testing.T) {
	s := NewSession(&recorder{})
	registerNested(s, &journal{})

	outline := s.Outline()

	assert.Equal(t, []string{"beforeAll", "beforeEach", "afterEach", "afterAll"}, outline.Hooks)
	require.Len(t, outline.Tests, 3)
	assert.Equal(t, domain.TestStatusSkipped, outline.Tests[1].Status)
	require.Len(t, outline.Suites, 2)

	group2 := outline.Suites[1]
	assert.Equal(t, "group 2", group2.Name)
	assert.Equal(t, []string{"1", "3"}, []string{group2.Tests[0].Name, group2.Tests[1].Name})

	group3 := group2.Find("group 3")
	require.NotNil(t, group3)
	assert.Equal(t, 3, group3.CountTests())
	assert.Equal(t, 2, group3.CountActive())
}

func TestSession_DebugRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rec := &recorder{}
	s := NewSession(rec, WithLogger(logger))
	s.Group("g", func() {
		s.BeforeAll(func(context.Context) error { return nil })
		_ = s.Test("a", func(context.Context) error { return nil })
	})
	s.Seal()

	require.Empty(t, rec.runAll(context.Background()))

	out := buf.String()
	assert.Contains(t, out, `msg="test registered" name="g > a"`)
	assert.Contains(t, out, `msg="scope entered" scope=g`)
	assert.Contains(t, out, `msg="hook fired" scope=g hook=beforeAll`)
	assert.Contains(t, out, `msg="teardown-once fired" scope=g`)
}
