package templates

import (
	"strconv"
	"strings"

	"github.com/delaneyj/tracked/signals"
	"github.com/dustin/go-humanize"
)

func nodeRef(id signals.NodeID) string {
	return "n" + strconv.FormatUint(uint64(id), 10)
}

func nodeShape(kind signals.NodeKind) string {
	if kind == signals.KindState {
		return "box"
	}
	return "ellipse"
}

func nodeLabel(n signals.NodeInfo) string {
	var sb strings.Builder
	if n.Name != "" {
		sb.WriteString(n.Name)
	} else {
		sb.WriteString(nodeRef(n.ID))
	}
	if n.Kind == signals.KindComputed {
		sb.WriteString("\n")
		sb.WriteString(humanize.Comma(int64(n.Recomputes)))
		sb.WriteString(" recomputes")
	}
	if n.Effects > 0 {
		sb.WriteString("\n")
		sb.WriteString(strconv.Itoa(n.Effects))
		sb.WriteString(" effects")
	}
	return sb.String()
}
