// # internal/parser/parser.go
package parser

import (
	"path/filepath"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"docref/internal/errors"
	"docref/internal/shared/observability"
)

type Parser struct {
	loader     *GrammarLoader
	extractors map[string]Extractor // language -> extractor
}

type Extractor interface {
	Extract(root *sitter.Node, source []byte, filePath string) (*RawModule, error)
}

func NewParser(loader *GrammarLoader) *Parser {
	return &Parser{
		loader:     loader,
		extractors: make(map[string]Extractor),
	}
}

func (p *Parser) RegisterExtractor(lang string, e Extractor) {
	p.extractors[lang] = e
}

func (p *Parser) ParseFile(path string, content []byte) (*RawModule, error) {
	start := time.Now()

	lang := p.detectLanguage(path)
	if lang == "" {
		return nil, errors.New(errors.CodeValidationError, "unsupported language").WithContext(errors.CtxPath, path)
	}

	grammar := p.loader.Language(lang)
	if grammar == nil {
		return nil, errors.Newf(errors.CodeInternal, "grammar not loaded: %s", lang)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree := parser.Parse(content, nil)
	if tree == nil {
		observability.ParsingDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, errors.New(errors.CodeParseError, "parse failed").WithContext(errors.CtxPath, path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		observability.ParsingDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, errors.Newf(errors.CodeParseError, "syntax error in %s", path)
	}

	extractor := p.extractors[lang]
	if extractor == nil {
		return nil, errors.Newf(errors.CodeInternal, "no extractor for: %s", lang)
	}

	mod, err := extractor.Extract(root, content, path)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	observability.ParsingDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	return mod, err
}

func (p *Parser) detectLanguage(path string) string {
	if filepath.Ext(path) == ".py" {
		return "python"
	}
	return ""
}
