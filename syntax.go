package dispatch

import "strings"

// renderSyntax renders a component chain in canonical form: literals bare,
// required arguments in angle brackets, optional ones in square brackets,
// flags last.
func renderSyntax[C any](components []Component[C], flags []FlagDefinition[C]) string {
	var sb strings.Builder
	for i, comp := range components {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(renderComponent(comp))
	}
	for _, f := range flags {
		sb.WriteByte(' ')
		sb.WriteString("[--")
		sb.WriteString(f.Name)
		if f.Parser != nil {
			sb.WriteString(" <")
			sb.WriteString(f.Name)
			sb.WriteString(">")
		}
		sb.WriteByte(']')
	}
	return sb.String()
}

func renderComponent[C any](comp Component[C]) string {
	switch comp.Kind() {
	case KindLiteral:
		return comp.Name()
	case KindRequiredVariable:
		return "<" + comp.Name() + ">"
	case KindOptionalVariable:
		return "[" + comp.Name() + "]"
	case KindFlag:
		return "[flags]"
	default:
		return comp.Name()
	}
}

// nodeSyntax renders the path from the root to a node followed by the
// alternatives its children accept, for "invalid syntax" diagnostics such
// as "ban <player> [reason]".
func nodeSyntax[C any](node *treeNode[C]) string {
	var path []string
	for n := node; n != nil && n.component != nil; n = n.parent {
		path = append([]string{renderComponent(*n.component)}, path...)
	}
	var alternatives []string
	for _, child := range node.children {
		alternatives = append(alternatives, renderComponent(*child.component))
	}
	if len(alternatives) > 0 {
		path = append(path, strings.Join(alternatives, "|"))
	}
	return strings.Join(path, " ")
}
