package vdom

// createElement creates a new Element with the given tag and arguments.
// Arguments can be: nil, string, Node, []Node, Attr, []Attr, Listener,
// []Listener, Hook, []Hook. A string becomes a text child; nil values and
// empty attributes are skipped so conditional arguments stay terse.
func createElement(tag string, args []any) *Element {
	el := &Element{Tag: tag}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue

		case string:
			el.Children = append(el.Children, &TextNode{Value: v})

		case Attr:
			if !v.IsEmpty() {
				el.Attrs = append(el.Attrs, v)
			}

		case []Attr:
			for _, a := range v {
				if !a.IsEmpty() {
					el.Attrs = append(el.Attrs, a)
				}
			}

		case Listener:
			el.Listeners = append(el.Listeners, v)

		case []Listener:
			el.Listeners = append(el.Listeners, v...)

		case Hook:
			el.Hooks = append(el.Hooks, v)

		case []Hook:
			el.Hooks = append(el.Hooks, v...)

		case *Element:
			if v != nil {
				el.Children = append(el.Children, v)
			}

		case *TextNode:
			if v != nil {
				el.Children = append(el.Children, v)
			}

		case *EmptyNode:
			if v != nil {
				el.Children = append(el.Children, v)
			}

		case []Node:
			for _, child := range v {
				if child != nil {
					el.Children = append(el.Children, child)
				}
			}

		case []*Element:
			for _, child := range v {
				if child != nil {
					el.Children = append(el.Children, child)
				}
			}
		}
	}

	return el
}

// El creates an element with an arbitrary tag.
func El(tag string, args ...any) *Element { return createElement(tag, args) }

// Sectioning and text

func Div(args ...any) *Element     { return createElement("div", args) }
func Span(args ...any) *Element    { return createElement("span", args) }
func P(args ...any) *Element       { return createElement("p", args) }
func A(args ...any) *Element       { return createElement("a", args) }
func H1(args ...any) *Element      { return createElement("h1", args) }
func H2(args ...any) *Element      { return createElement("h2", args) }
func H3(args ...any) *Element      { return createElement("h3", args) }
func Section(args ...any) *Element { return createElement("section", args) }
func Header(args ...any) *Element  { return createElement("header", args) }
func Footer(args ...any) *Element  { return createElement("footer", args) }
func Main(args ...any) *Element    { return createElement("main", args) }
func Nav(args ...any) *Element     { return createElement("nav", args) }
func Strong(args ...any) *Element  { return createElement("strong", args) }
func Em(args ...any) *Element      { return createElement("em", args) }
func Pre(args ...any) *Element     { return createElement("pre", args) }
func Code(args ...any) *Element    { return createElement("code", args) }
func Br(args ...any) *Element      { return createElement("br", args) }
func Img(args ...any) *Element     { return createElement("img", args) }

// Lists

func Ul(args ...any) *Element { return createElement("ul", args) }
func Ol(args ...any) *Element { return createElement("ol", args) }
func Li(args ...any) *Element { return createElement("li", args) }

// Forms

func Form(args ...any) *Element     { return createElement("form", args) }
func Label(args ...any) *Element    { return createElement("label", args) }
func Input(args ...any) *Element    { return createElement("input", args) }
func Button(args ...any) *Element   { return createElement("button", args) }
func Textarea(args ...any) *Element { return createElement("textarea", args) }
func Select(args ...any) *Element   { return createElement("select", args) }
func Option(args ...any) *Element   { return createElement("option", args) }
