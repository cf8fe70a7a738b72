package render

import (
	"strings"
	"text/template"
)

func funcs() template.FuncMap {
	return template.FuncMap{
		"q":      quote,
		"qcols":  quoteColumns,
		"qalias": quoteAliased,
		"joinOn": joinOn,
		"sep":    separator,
		"join":   strings.Join,
	}
}

// quote bracket-quotes each name and joins them with dots: [orders].[Order].
// A closing bracket inside a name is doubled.
func quote(names ...string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "[" + strings.ReplaceAll(n, "]", "]]") + "]"
	}
	return strings.Join(quoted, ".")
}

// quoteColumns renders a column list: [a], [b].
func quoteColumns(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	return strings.Join(quoted, ", ")
}

// quoteAliased renders a column list qualified by a table alias: [x].[a], [x].[b].
func quoteAliased(alias string, names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(alias, n)
	}
	return strings.Join(quoted, ", ")
}

// joinOn renders an equality join over names: [l].[a] = [r].[a] AND ...
func joinOn(left, right string, names []string) string {
	conds := make([]string, len(names))
	for i, n := range names {
		conds[i] = quote(left, n) + " = " + quote(right, n)
	}
	return strings.Join(conds, " AND ")
}

// separator returns the list separator for the i-th element of a list
// written one element per line.
func separator(i int) string {
	if i == 0 {
		return "  "
	}
	return ", "
}
