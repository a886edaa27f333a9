package tree

import (
	"fmt"
	"strconv"

	"github.com/awalterschulze/gographviz"
)

const graphName = "decision_tree"

var shapes = map[Kind]string{
	Decision: "box",
	Chance:   "ellipse",
	Terminal: "plaintext",
}

// DOT renders the tree left to right. Decision nodes are boxes, chance
// nodes ellipses; the branch each decision selects is drawn bold.
func DOT(root *Node) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(graphName); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}
	if err := g.AddAttr(graphName, "rankdir", "LR"); err != nil {
		return "", err
	}

	var werr error
	root.Walk(func(parent, n *Node) {
		if werr != nil {
			return
		}
		label := n.Label
		if n.Kind != Terminal {
			label = fmt.Sprintf("%s\nEMV=%s", label, money(n.EMV))
		}
		attrs := map[string]string{
			"label": strconv.Quote(label),
			"shape": shapes[n.Kind],
		}
		if werr = g.AddNode(graphName, n.ID, attrs); werr != nil {
			return
		}
		if parent == nil {
			return
		}
		edge := map[string]string{}
		if n.EdgeLabel != "" {
			edge["label"] = strconv.Quote(n.EdgeLabel)
		}
		if n.Chosen {
			edge["style"] = "bold"
		}
		werr = g.AddEdge(parent.ID, n.ID, true, edge)
	})
	if werr != nil {
		return "", werr
	}
	return g.String(), nil
}
