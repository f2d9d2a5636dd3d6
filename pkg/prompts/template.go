package prompts

import (
	"fmt"
	"strings"
	"text/template"
	"text/template/parse"

	"github.com/shouni/go-imagify-kit/pkg/domain"
)

// テンプレートで使えるプレースホルダ名なのだ。
const (
	FieldCaption         = "caption"
	FieldCaptionShort    = "caption_short"
	FieldCaptionPhrase   = "caption_phrase"
	FieldCaptionSentence = "caption_sentence"
	FieldSubject         = "subject"
)

// TemplateData はテンプレートに渡すプレースホルダの値です。
type TemplateData map[string]string

// NewTemplateData は生のキャプションと正規化済みの派生形からテンプレート用データを組み立てるのだ。
func NewTemplateData(raw string, forms domain.NormalizedForms) TemplateData {
	return TemplateData{
		FieldCaption:         raw,
		FieldCaptionShort:    forms.Short,
		FieldCaptionPhrase:   forms.Short,
		FieldCaptionSentence: forms.Sentence,
		FieldSubject:         forms.Subject,
	}
}

// Template は解析済みの物語テンプレート1件です。
type Template struct {
	Source string
	tmpl   *template.Template
	fields map[string]bool
}

// NewTemplate はテンプレート文字列を解析します。
// 存在しないプレースホルダは実行時にエラーになるよう missingkey=error を指定しているのだ。
func NewTemplate(name, source string) (*Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(source)
	if err != nil {
		return nil, fmt.Errorf("テンプレート '%s' の解析に失敗: %w", name, err)
	}

	fields := make(map[string]bool)
	if tmpl.Tree != nil {
		collectFields(tmpl.Tree.Root, fields)
	}

	return &Template{
		Source: source,
		tmpl:   tmpl,
		fields: fields,
	}, nil
}

// Render はプレースホルダを置換した文字列を返します。
func (t *Template) Render(data TemplateData) (string, error) {
	var sb strings.Builder
	if err := t.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("テンプレートの実行に失敗しました: %w", err)
	}
	return sb.String(), nil
}

// References はテンプレートが指定のプレースホルダを参照しているかを返すのだ。
func (t *Template) References(field string) bool {
	return t.fields[field]
}

// collectFields は構文木をたどって {{.name}} 形式の参照を集めるのだ。
func collectFields(node parse.Node, fields map[string]bool) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			collectFields(child, fields)
		}
	case *parse.ActionNode:
		collectFields(n.Pipe, fields)
	case *parse.PipeNode:
		if n == nil {
			return
		}
		for _, cmd := range n.Cmds {
			collectFields(cmd, fields)
		}
	case *parse.CommandNode:
		for _, arg := range n.Args {
			collectFields(arg, fields)
		}
	case *parse.FieldNode:
		if len(n.Ident) > 0 {
			fields[n.Ident[0]] = true
		}
	case *parse.IfNode:
		collectBranch(&n.BranchNode, fields)
	case *parse.RangeNode:
		collectBranch(&n.BranchNode, fields)
	case *parse.WithNode:
		collectBranch(&n.BranchNode, fields)
	}
}

func collectBranch(b *parse.BranchNode, fields map[string]bool) {
	collectFields(b.Pipe, fields)
	collectFields(b.List, fields)
	if b.ElseList != nil {
		collectFields(b.ElseList, fields)
	}
}
