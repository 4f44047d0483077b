package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// renderNode writes a node back out as expression text, used for error
// messages that quote the offending sub-expression.
func renderNode(n Node) string {
	switch x := n.(type) {
	case *LiteralNode:
		switch x.Kind {
		case LitInt:
			return strconv.FormatInt(x.IntVal, 10)
		case LitFloat:
			return strconv.FormatFloat(x.FloatVal, 'g', -1, 64)
		case LitBool:
			return strconv.FormatBool(x.BoolVal)
		default:
			return strconv.Quote(x.StrVal)
		}
	case *IdentNode:
		return x.Name
	case *MemberNode:
		return renderNode(x.Recv) + "." + x.Name
	case *UnaryNode:
		if x.Op == "not" {
			return "not " + renderNode(x.X)
		}
		return x.Op + renderNode(x.X)
	case *BinaryNode:
		return fmt.Sprintf("%s %s %s", renderNode(x.L), x.Op, renderNode(x.R))
	case *ConditionalNode:
		return fmt.Sprintf("%s ? %s : %s", renderNode(x.Cond), renderNode(x.Then), renderNode(x.Else))
	case *CallNode:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = renderNode(a)
		}
		call := x.Name + "(" + strings.Join(args, ", ") + ")"
		if x.Recv != nil {
			return renderNode(x.Recv) + "." + call
		}
		return call
	}
	return ""
}
