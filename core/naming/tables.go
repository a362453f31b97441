package naming

// preferredAliases covers modules whose last segment is ambiguous or too
// generic to stand alone as a parameter name.
var preferredAliases = map[string]string{
	"dojo/_base/array":       "array",
	"dojo/_base/lang":        "lang",
	"dojo/_base/declare":     "declare",
	"dojo/_base/fx":          "baseFx",
	"dojo/_base/Color":       "Color",
	"dojo/_base/event":       "baseEvent",
	"dojo/_base/window":      "win",
	"dojo/dom-attr":          "domAttr",
	"dojo/fx":                "coreFx",
	"dojo/has":               "has",
	"dojo/json":              "dojoJson",
	"dojo/on":                "on",
	"dojo/query":             "query",
	"dojo/request":           "request",
	"dojo/string":            "dojoString",
	"dojo/text":              "text",
	"dojo/topic":             "topic",
	"dojo/window":            "win",
	"esri/basemaps":          "esriBasemaps",
	"esri/config":            "esriConfig",
	"esri/lang":              "esriLang",
	"esri/request":           "esriRequest",
	"esri/styles/choropleth": "esriStylesChoropleth",
	"esri/units":             "esriUnits",
}

// reservedWords cannot be used as parameter names, either because the
// language forbids them or because they shadow browser globals.
var reservedWords = map[string]struct{}{}

func init() {
	for _, word := range []string{
		// keywords
		"break", "case", "catch", "class", "const", "continue", "debugger",
		"default", "delete", "do", "else", "enum", "export", "extends", "false",
		"finally", "for", "function", "if", "implements", "import", "in",
		"instanceof", "interface", "let", "new", "null", "package", "private",
		"protected", "public", "return", "static", "super", "switch", "this",
		"throw", "true", "try", "typeof", "var", "void", "while", "with", "yield",
		"await", "arguments", "eval", "undefined", "NaN", "Infinity",
		// globals and built-in constructors
		"window", "document", "navigator", "location", "history", "screen",
		"console", "event", "string", "number", "boolean", "object", "array",
		"date", "math", "json", "error", "String", "Number", "Boolean",
		"Object", "Array", "Date", "Math", "JSON", "Error", "Function",
		"RegExp", "Promise", "Map", "Set", "Symbol",
	} {
		reservedWords[word] = struct{}{}
	}
}

// IsReserved reports whether word cannot be used as a parameter name.
func IsReserved(word string) bool {
	_, ok := reservedWords[word]
	return ok
}
