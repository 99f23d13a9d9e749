package outline

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/specvital/scopekit/pkg/domain"
)

// MaxTreeDepth is the maximum recursion depth when walking syntax trees.
const MaxTreeDepth = 1000

var (
	goLang   *sitter.Language
	langOnce sync.Once
)

func language() *sitter.Language {
	langOnce.Do(func() {
		goLang = golang.GetLanguage()
	})
	return goLang
}

// parse parses Go source with a fresh parser. Parsers are not reused because
// a cancelled ParseCtx leaves the parser's cancel flag set.
// Caller MUST call tree.Close().
func parse(ctx context.Context, source []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(language())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse go source: %w", err)
	}
	return tree, nil
}

type cachedQuery struct {
	once  sync.Once
	query *sitter.Query
	err   error
}

var queryCache sync.Map

func compiledQuery(pattern string) (*sitter.Query, error) {
	val, _ := queryCache.LoadOrStore(pattern, &cachedQuery{})
	cached := val.(*cachedQuery)
	cached.once.Do(func() {
		cached.query, cached.err = sitter.NewQuery([]byte(pattern), language())
	})
	return cached.query, cached.err
}

// captures runs a cached query and returns the captured nodes of every match,
// keyed by capture name.
func captures(root *sitter.Node, pattern string) ([]map[string]*sitter.Node, error) {
	query, err := compiledQuery(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(query, root)

	var matches []map[string]*sitter.Node
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		caps := make(map[string]*sitter.Node, len(match.Captures))
		for _, c := range match.Captures {
			caps[query.CaptureNameForId(c.Index)] = c.Node
		}
		matches = append(matches, caps)
	}
	return matches, nil
}

// nodeText returns the source text of node, or "" if its byte range is
// outside source.
func nodeText(node *sitter.Node, source []byte) (text string) {
	if node == nil {
		return ""
	}
	n := uint32(len(source))
	if node.StartByte() > n || node.EndByte() > n {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()
	return node.Content(source)
}

// location converts a node position to a 1-based domain.Location.
func location(node *sitter.Node, filename string) domain.Location {
	start := node.StartPoint()
	end := node.EndPoint()

	return domain.Location{
		File:      filename,
		StartLine: int(start.Row) + 1,
		EndLine:   int(end.Row) + 1,
		StartCol:  int(start.Column),
		EndCol:    int(end.Column),
	}
}

// namedChildren returns the named children of node, without comments.
func namedChildren(node *sitter.Node) []*sitter.Node {
	children := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == nodeComment {
			continue
		}
		children = append(children, child)
	}
	return children
}

func walk(node *sitter.Node, visitor func(*sitter.Node) bool, depth int) {
	if node == nil || depth > MaxTreeDepth {
		return
	}
	if !visitor(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), visitor, depth+1)
	}
}

func unquote(s string) string {
	if unquoted, err := strconv.Unquote(s); err == nil {
		return unquoted
	}
	// Invalid literals, e.g. from incomplete code.
	if len(s) >= 2 && s[0] == s[len(s)-1] && (s[0] == '"' || s[0] == '`') {
		return s[1 : len(s)-1]
	}
	return s
}
