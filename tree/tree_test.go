package tree

import (
	"strings"
	"testing"

	"github.com/awalterschulze/gographviz"
	"github.com/matryer/is"

	"github.com/domino14/wildcat/bayes"
	"github.com/domino14/wildcat/emv"
)

func buildDefault(t *testing.T, w emv.Weights) (*Node, emv.Breakdown) {
	solver, err := emv.NewSolver(emv.DefaultScenario(), w)
	if err != nil {
		t.Fatal(err)
	}
	b, err := solver.Solve(bayes.Reliability{P: 0.7, Q: 0.7})
	if err != nil {
		t.Fatal(err)
	}
	return Build(b, solver.Scenario(), w), b
}

func TestBuild(t *testing.T) {
	is := is.New(t)
	root, b := buildDefault(t, emv.DefaultWeights())

	is.Equal(root.EMV, b.Total)
	is.Equal(root.Find("Buy").EMV, b.Buy)
	is.Equal(root.Find("Expert").EMV, b.Hire)
	is.Equal(root.Find("NoExpert").EMV, b.NotHire)
	is.Equal(root.Find("PredictOil").EMV, b.OnPredictOil.EMV)
	is.Equal(root.Find("PredictNoOil_Drill").EMV, b.OnPredictNoOil.DrillEMV)
	is.Equal(root.Find("DoNothing").EdgeLabel, "40.0%")
	is.Equal(root.Find("PredictOil").EdgeLabel, "58.0%")
	is.True(root.Find("nope") == nil)

	// exactly one of hire / don't hire is chosen
	is.True(root.Find("Expert").Chosen != root.Find("NoExpert").Chosen)

	count := 0
	terminals := 0
	root.Walk(func(parent, n *Node) {
		count++
		if n.Kind == Terminal {
			terminals++
			is.Equal(len(n.Children), 0)
		}
		if parent == nil {
			is.Equal(n, root)
		}
	})
	// start, do nothing, buy, no expert (+2 outcomes), expert,
	// and per prediction: node, drill (+2 outcomes), don't drill
	is.Equal(count, 17)
	is.Equal(terminals, 9)
}

func TestMoney(t *testing.T) {
	is := is.New(t)
	is.Equal(money(1620000), "$1,620,000")
	is.Equal(money(-180000), "-$180,000")
	is.Equal(money(0), "$0")
}

func TestBuildChanceMode(t *testing.T) {
	is := is.New(t)
	w := emv.DefaultWeights()
	w.HireMode = emv.HireChance
	root, _ := buildDefault(t, w)
	buy := root.Find("Buy")
	is.Equal(buy.Kind, Chance)
	is.Equal(root.Find("Expert").EdgeLabel, "50.0%")
	is.True(!root.Find("Expert").Chosen)
}

func TestDOT(t *testing.T) {
	is := is.New(t)
	root, _ := buildDefault(t, emv.DefaultWeights())
	out, err := DOT(root)
	is.NoErr(err)
	is.True(strings.Contains(out, "rankdir=LR"))
	is.True(strings.Contains(out, "Start->Buy"))
	is.True(strings.Contains(out, "PredictNoOil->PredictNoOil_NoDrill"))

	// The output parses back into the same node set.
	ast, err := gographviz.ParseString(out)
	is.NoErr(err)
	g := gographviz.NewGraph()
	is.NoErr(gographviz.Analyse(ast, g))
	root.Walk(func(_, n *Node) {
		is.True(g.IsNode(n.ID))
	})
	is.Equal(len(g.Edges.Edges), 16)
}
