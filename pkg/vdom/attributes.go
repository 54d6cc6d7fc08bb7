package vdom

import "strings"

// Attribute creates an Attr with the given name and value.
func Attribute(name, value string) Attr { return Attr{Name: name, Value: value} }

// Bool creates a boolean attribute. A false value yields no attribute at
// all, which removes it from the live node on the next render.
func Bool(name string, on bool) Attr {
	if !on {
		return Attr{}
	}
	return Attr{Name: name}
}

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return Attribute("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return Attribute("class", strings.Join(classes, " ")) }

// StyleAttr sets the style attribute.
func StyleAttr(style string) Attr { return Attribute("style", style) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return Attribute("data-"+key, value) }

// Links and media

func Href(url string) Attr   { return Attribute("href", url) }
func Src(url string) Attr    { return Attribute("src", url) }
func Alt(text string) Attr   { return Attribute("alt", text) }
func Title(text string) Attr { return Attribute("title", text) }

// Forms

func Type(t string) Attr              { return Attribute("type", t) }
func Name(n string) Attr              { return Attribute("name", n) }
func Value(v string) Attr             { return Attribute("value", v) }
func Placeholder(text string) Attr    { return Attribute("placeholder", text) }
func For(id string) Attr              { return Attribute("for", id) }
func Disabled(disabled bool) Attr     { return Bool("disabled", disabled) }
func Checked(checked bool) Attr       { return Bool("checked", checked) }
func Selected(selected bool) Attr     { return Bool("selected", selected) }
func Readonly(readonly bool) Attr     { return Bool("readonly", readonly) }
func AriaLabel(label string) Attr     { return Attribute("aria-label", label) }
func Role(role string) Attr           { return Attribute("role", role) }
func TabIndex(index string) Attr      { return Attribute("tabindex", index) }
func AriaHidden(hidden bool) Attr     { return Attribute("aria-hidden", boolString(hidden)) }
func AriaExpanded(expanded bool) Attr { return Attribute("aria-expanded", boolString(expanded)) }

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
