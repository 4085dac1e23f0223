// # internal/parser/parser.go
package parser

import (
	"os"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/LordOfPolls/BlackDwarf/internal/errors"
)

type Parser struct {
	language *sitter.Language
}

func NewParser() *Parser {
	return &Parser{
		language: sitter.NewLanguage(tree_sitter_python.Language()),
	}
}

// ParseFile reads path from disk and parses it.
func (p *Parser) ParseFile(path string) (*SourceFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeInternal, "read file"), errors.CtxPath, path)
	}
	return p.Parse(path, content)
}

// Parse parses Python source held in memory. The returned SourceFile owns no
// tree-sitter state: imports, usage and the export surface are extracted here
// and the tree is released before returning.
func (p *Parser) Parse(path string, content []byte) (*SourceFile, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(p.language); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "load python grammar")
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, errors.AddContext(
			errors.New(errors.CodeParseFailure, "parse produced no tree"), errors.CtxPath, path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, errors.AddContext(
			errors.New(errors.CodeParseFailure, "file does not parse as Python"), errors.CtxPath, path)
	}

	file := &SourceFile{
		Path:     path,
		Source:   content,
		Imports:  extractImports(root, content),
		ParsedAt: time.Now(),
	}
	file.Usage = collectUsage(root, content, path)
	file.surface = collectSurface(root, content)
	return file, nil
}

func nodeText(n *sitter.Node, source []byte) string {
	return string(source[n.StartByte():n.EndByte()])
}

func spanOf(n *sitter.Node) Span {
	return Span{
		StartByte: n.StartByte(),
		EndByte:   n.EndByte(),
		StartLine: int(n.StartPosition().Row) + 1,
		EndLine:   int(n.EndPosition().Row) + 1,
	}
}
