package outline

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/scopekit/pkg/domain"
)

const (
	nodeCallExpression           = "call_expression"
	nodeComment                  = "comment"
	nodeCompositeLiteral         = "composite_literal"
	nodeFuncLiteral              = "func_literal"
	nodeInterpretedStringLiteral = "interpreted_string_literal"
	nodeKeyedElement             = "keyed_element"
	nodeLiteralElement           = "literal_element"
	nodeRawStringLiteral         = "raw_string_literal"
	nodeSelectorExpression       = "selector_expression"
	nodeUnaryExpression          = "unary_expression"

	methodGroup   = "Group"
	methodIgnore  = "Ignore"
	methodTest    = "Test"
	methodTestDef = "TestDef"

	fieldIgnore = "Ignore"
	fieldName   = "Name"
	fieldOnly   = "Only"

	packageQuery = `(package_clause (package_identifier) @name)`
)

var hookMethods = map[string]string{
	"BeforeAll":  domain.HookBeforeAll,
	"BeforeEach": domain.HookBeforeEach,
	"AfterEach":  domain.HookAfterEach,
	"AfterAll":   domain.HookAfterAll,
}

var hookOrder = []string{
	domain.HookBeforeAll,
	domain.HookBeforeEach,
	domain.HookAfterEach,
	domain.HookAfterAll,
}

// ParseFile outlines the groups, tests and hooks that Go source registers on a
// session. Calls are recognized by method name and arity on any receiver.
// Names that are not string literals are reported as their source expression.
// It returns nil when the source registers nothing.
func ParseFile(ctx context.Context, source []byte, filename string) (*domain.TestFile, error) {
	tree, err := parse(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("outline: failed to parse %s: %w", filename, err)
	}
	defer tree.Close()
	root := tree.RootNode()

	e := &extractor{source: source, filename: filename}
	top := newBuilder("", domain.Location{})
	e.visit(root, top)
	if e.calls == 0 {
		return nil, nil
	}

	pkg, err := e.packageName(root)
	if err != nil {
		return nil, fmt.Errorf("outline: %s: %w", filename, err)
	}

	suite := top.build()
	return &domain.TestFile{
		Hooks:   suite.Hooks,
		Package: pkg,
		Path:    filename,
		Suites:  suite.Suites,
		Tests:   suite.Tests,
	}, nil
}

type builder struct {
	hooks    map[string]bool
	location domain.Location
	name     string
	suites   []*builder
	tests    []domain.Test
}

func newBuilder(name string, loc domain.Location) *builder {
	return &builder{hooks: make(map[string]bool), location: loc, name: name}
}

func (b *builder) build() domain.TestSuite {
	suite := domain.TestSuite{
		Location: b.location,
		Name:     b.name,
		Tests:    b.tests,
	}
	for _, h := range hookOrder {
		if b.hooks[h] {
			suite.Hooks = append(suite.Hooks, h)
		}
	}
	for _, sub := range b.suites {
		suite.Suites = append(suite.Suites, sub.build())
	}
	return suite
}

type extractor struct {
	calls    int
	filename string
	source   []byte
}

func (e *extractor) visit(node *sitter.Node, into *builder) {
	walk(node, func(n *sitter.Node) bool {
		if n.Type() != nodeCallExpression {
			return true
		}
		method := e.method(n)
		args := n.ChildByFieldName("arguments")
		if method == "" || args == nil {
			return true
		}
		argv := namedChildren(args)

		switch {
		case method == methodGroup && len(argv) == 2:
			e.calls++
			group := newBuilder(e.name(argv[0]), location(n, e.filename))
			into.suites = append(into.suites, group)
			if argv[1].Type() == nodeFuncLiteral {
				e.visit(argv[1].ChildByFieldName("body"), group)
			}
			return false

		case (method == methodTest || method == methodIgnore) && len(argv) == 2:
			e.calls++
			into.tests = append(into.tests, domain.Test{
				Location: location(n, e.filename),
				Name:     e.name(argv[0]),
				Status:   statusOf(method == methodIgnore, false),
			})
			return false

		case method == methodTestDef && len(argv) == 1:
			test, ok := e.definition(argv[0])
			if !ok {
				return true
			}
			e.calls++
			test.Location = location(n, e.filename)
			into.tests = append(into.tests, test)
			return false
		}

		if hook, ok := hookMethods[method]; ok && len(argv) == 1 {
			e.calls++
			into.hooks[hook] = true
			return false
		}
		return true
	}, 0)
}

// method returns the selector field of a method call, or "".
func (e *extractor) method(call *sitter.Node) string {
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != nodeSelectorExpression {
		return ""
	}
	return nodeText(fn.ChildByFieldName("field"), e.source)
}

func (e *extractor) name(node *sitter.Node) string {
	switch node.Type() {
	case nodeInterpretedStringLiteral, nodeRawStringLiteral:
		return unquote(nodeText(node, e.source))
	default:
		return nodeText(node, e.source)
	}
}

// definition reads Name, Ignore and Only from a Definition composite literal.
func (e *extractor) definition(node *sitter.Node) (domain.Test, bool) {
	if node.Type() == nodeUnaryExpression {
		node = node.ChildByFieldName("operand")
	}
	if node == nil || node.Type() != nodeCompositeLiteral {
		return domain.Test{}, false
	}
	body := node.ChildByFieldName("body")
	if body == nil {
		return domain.Test{}, false
	}

	var test domain.Test
	var ignore, only bool
	for _, el := range namedChildren(body) {
		if el.Type() != nodeKeyedElement {
			continue
		}
		parts := namedChildren(el)
		if len(parts) < 2 {
			continue
		}
		key := literalElement(parts[0])
		value := literalElement(parts[len(parts)-1])

		switch nodeText(key, e.source) {
		case fieldName:
			test.Name = e.name(value)
		case fieldIgnore:
			ignore = nodeText(value, e.source) == "true"
		case fieldOnly:
			only = nodeText(value, e.source) == "true"
		}
	}
	test.Status = statusOf(ignore, only)
	return test, true
}

func (e *extractor) packageName(root *sitter.Node) (string, error) {
	matches, err := captures(root, packageQuery)
	if err != nil {
		return "", err
	}
	for _, m := range matches {
		if n, ok := m["name"]; ok {
			return nodeText(n, e.source), nil
		}
	}
	return "", nil
}

// literalElement unwraps the literal_element wrapper newer grammars put
// around keyed element parts.
func literalElement(node *sitter.Node) *sitter.Node {
	if node.Type() == nodeLiteralElement && node.NamedChildCount() > 0 {
		return node.NamedChild(0)
	}
	return node
}

func statusOf(ignore, only bool) domain.TestStatus {
	switch {
	case ignore:
		return domain.TestStatusSkipped
	case only:
		return domain.TestStatusFocused
	default:
		return domain.TestStatusActive
	}
}
