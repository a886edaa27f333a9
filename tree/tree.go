// Package tree lays out the land deal as a decision tree annotated with the
// solver's values, and renders it as Graphviz DOT.
package tree

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/domino14/wildcat/bayes"
	"github.com/domino14/wildcat/emv"
)

type Kind int

const (
	Decision Kind = iota
	Chance
	Terminal
)

func (k Kind) String() string {
	switch k {
	case Decision:
		return "decision"
	case Chance:
		return "chance"
	}
	return "terminal"
}

// Node is one point of the tree. Edge fields describe the branch leading
// into the node from its parent.
type Node struct {
	ID    string
	Label string
	Kind  Kind
	EMV   float64

	// EdgeLabel is a probability for children of chance nodes, empty for
	// children of decision nodes.
	EdgeLabel string
	// Chosen marks the branch a decision node selects.
	Chosen bool

	Children []*Node
}

func (n *Node) add(c *Node) *Node {
	n.Children = append(n.Children, c)
	return c
}

// Walk visits n and its descendants depth-first, parents first.
func (n *Node) Walk(fn func(parent, n *Node)) {
	var walk func(parent, n *Node)
	walk = func(parent, n *Node) {
		fn(parent, n)
		for _, c := range n.Children {
			walk(n, c)
		}
	}
	walk(nil, n)
}

// Find returns the node with the given ID, or nil.
func (n *Node) Find(id string) *Node {
	var found *Node
	n.Walk(func(_, c *Node) {
		if found == nil && c.ID == id {
			found = c
		}
	})
	return found
}

var printer = message.NewPrinter(language.English)

// money groups digits: $1,620,000.
func money(v float64) string {
	if v < 0 {
		return printer.Sprintf("-$%.0f", -v)
	}
	return printer.Sprintf("$%.0f", v)
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", 100*v)
}

func drillBranch(parent *Node, id string, d emv.DrillDecision, sc emv.Scenario) {
	pred := parent.add(&Node{
		ID:        id,
		Label:     fmt.Sprintf("Predict: %s\nP(oil)=%.4f", predLabel(d.Prediction), d.OilProbability),
		Kind:      Decision,
		EMV:       d.EMV,
		EdgeLabel: pct(d.Probability),
	})
	drill := pred.add(&Node{
		ID:     id + "_Drill",
		Label:  "Drill",
		Kind:   Chance,
		EMV:    d.DrillEMV,
		Chosen: d.Drill,
	})
	drill.add(&Node{
		ID: id + "_Drill_Oil", Label: "Oil\n" + money(sc.NetProfit()), Kind: Terminal,
		EMV: sc.NetProfit(), EdgeLabel: pct(d.OilProbability),
	})
	drill.add(&Node{
		ID: id + "_Drill_Dry", Label: "Dry\n" + money(-sc.LandCost), Kind: Terminal,
		EMV: -sc.LandCost, EdgeLabel: pct(1 - d.OilProbability),
	})
	pred.add(&Node{
		ID: id + "_NoDrill", Label: "Don't Drill\n" + money(d.Floor), Kind: Terminal,
		EMV: d.Floor, Chosen: !d.Drill,
	})
}

func predLabel(p bayes.Prediction) string {
	if p == bayes.PredictOil {
		return "Oil"
	}
	return "No Oil"
}

// Build assembles the tree for one solved expert.
func Build(b emv.Breakdown, sc emv.Scenario, w emv.Weights) *Node {
	root := &Node{ID: "Start", Label: "Start", Kind: Chance, EMV: b.Total}
	root.add(&Node{
		ID: "DoNothing", Label: "Do Nothing\n$0", Kind: Terminal,
		EdgeLabel: pct(w.DoNothing),
	})
	buyKind := Decision
	if w.HireMode == emv.HireChance {
		buyKind = Chance
	}
	buy := root.add(&Node{
		ID:        "Buy",
		Label:     "Buy Land\nCost=" + money(sc.LandCost),
		Kind:      buyKind,
		EMV:       b.Buy,
		EdgeLabel: pct(w.Buy),
	})

	notHire := &Node{
		ID:     "NoExpert",
		Label:  fmt.Sprintf("Don't Hire Expert\nP(oil)=%.2f", sc.PriorOil),
		Kind:   Chance,
		EMV:    b.NotHire,
		Chosen: !b.HireExpert,
	}
	notHire.add(&Node{
		ID: "NoExpert_Oil", Label: "Oil\n" + money(sc.NetProfit()), Kind: Terminal,
		EMV: sc.NetProfit(), EdgeLabel: pct(sc.PriorOil),
	})
	notHire.add(&Node{
		ID: "NoExpert_Dry", Label: "Dry\n" + money(-sc.LandCost), Kind: Terminal,
		EMV: -sc.LandCost, EdgeLabel: pct(1 - sc.PriorOil),
	})

	hire := &Node{
		ID:     "Expert",
		Label:  fmt.Sprintf("Hire Expert\np=%.3f q=%.3f", b.Reliability.P, b.Reliability.Q),
		Kind:   Chance,
		EMV:    b.Hire,
		Chosen: b.HireExpert,
	}
	drillBranch(hire, "PredictOil", b.OnPredictOil, sc)
	drillBranch(hire, "PredictNoOil", b.OnPredictNoOil, sc)

	if w.HireMode == emv.HireChance {
		hire.EdgeLabel = pct(w.Hire)
		notHire.EdgeLabel = pct(1 - w.Hire)
		hire.Chosen, notHire.Chosen = false, false
	}
	buy.add(notHire)
	buy.add(hire)
	return root
}
