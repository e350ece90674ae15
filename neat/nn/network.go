// Package nn provides a phenotype: an immutable, slice-indexed snapshot of
// a Genome's enabled subgraph optimized for repeated Forward evaluation,
// separating the genotype that mutates from the network that gets
// activated many times per fitness evaluation.
package nn

import (
	"fmt"
	"sort"

	"github.com/fenwick-labs/neat/neat"
)

// inputConnection is one incoming, weighted edge into a node, addressed by
// slice index rather than node id.
type inputConnection struct {
	sourceIndex int
	weight      float64
}

type neuralNode struct {
	bias        float64
	response    float64
	activation  neat.ActivationFunc
	aggregation neat.AggregationFunc
	inputs      []inputConnection
}

// Network is a runnable feed-forward phenotype built from a Genome's
// enabled connections at the time of Build. It does not observe later
// mutations to the source genome; build a fresh Network after mutating.
type Network struct {
	inputIndices  []int
	outputIndices []int
	evalOrder     []int
	nodes         []neuralNode
}

// Build snapshots g's enabled subgraph into a Network. It does not require
// g.Activate to have been called first; Build performs its own topological
// sort and returns an error if the enabled subgraph contains a cycle, which
// should never occur for a genome produced through the mutation operators
// in package neat.
func Build(g *neat.Genome) (*Network, error) {
	allKeys := make(map[int]struct{})
	inputSet := make(map[int]struct{}, len(g.Config.InputKeys))
	outputSet := make(map[int]struct{}, len(g.Config.OutputKeys))

	for _, k := range g.Config.InputKeys {
		allKeys[k] = struct{}{}
		inputSet[k] = struct{}{}
	}
	for _, k := range g.Config.OutputKeys {
		allKeys[k] = struct{}{}
		outputSet[k] = struct{}{}
	}
	for k := range g.Nodes {
		allKeys[k] = struct{}{}
	}

	type edge struct {
		in, out int
		weight  float64
	}
	var edges []edge
	for key, conn := range g.Connections {
		if !conn.Enabled() {
			continue
		}
		allKeys[key.InNodeID] = struct{}{}
		allKeys[key.OutNodeID] = struct{}{}
		edges = append(edges, edge{in: key.InNodeID, out: key.OutNodeID, weight: conn.Weight()})
	}

	keys := make([]int, 0, len(allKeys))
	for k := range allKeys {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	indexOf := make(map[int]int, len(keys))
	for i, k := range keys {
		indexOf[k] = i
	}

	identity := neat.ActivationFunc(func(x float64) float64 { return x })
	nodes := make([]neuralNode, len(keys))
	for i, k := range keys {
		if gn, ok := g.Nodes[k]; ok {
			actFn, err := neat.GetActivation(gn.Activation())
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", k, err)
			}
			aggFn, err := neat.GetAggregation(gn.Aggregation())
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", k, err)
			}
			nodes[i] = neuralNode{bias: gn.Bias(), response: gn.Response(), activation: actFn, aggregation: aggFn}
			continue
		}
		// Pure input node or an output/hidden key with no NodeGene of its
		// own: pass the value through unchanged.
		nodes[i] = neuralNode{response: 1.0, activation: identity, aggregation: neat.Sum}
	}

	inDegree := make([]int, len(keys))
	adjacency := make([][]int, len(keys))
	for _, e := range edges {
		src, dst := indexOf[e.in], indexOf[e.out]
		nodes[dst].inputs = append(nodes[dst].inputs, inputConnection{sourceIndex: src, weight: e.weight})
		adjacency[src] = append(adjacency[src], dst)
		inDegree[dst]++
	}
	for i := range nodes {
		sort.Slice(nodes[i].inputs, func(a, b int) bool {
			return nodes[i].inputs[a].sourceIndex < nodes[i].inputs[b].sourceIndex
		})
	}

	var queue []int
	for i, d := range inDegree {
		if d == 0 {
			queue = append(queue, i)
		}
	}
	sort.Ints(queue)

	order := make([]int, 0, len(keys))
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		order = append(order, u)
		neighbors := append([]int{}, adjacency[u]...)
		sort.Ints(neighbors)
		for _, v := range neighbors {
			inDegree[v]--
			if inDegree[v] == 0 {
				queue = append(queue, v)
				sort.Ints(queue)
			}
		}
	}
	if len(order) != len(keys) {
		return nil, fmt.Errorf("cycle detected while building network: expected %d nodes, ordered %d", len(keys), len(order))
	}

	inputIdx := make([]int, len(g.Config.InputKeys))
	for i, k := range g.Config.InputKeys {
		inputIdx[i] = indexOf[k]
	}
	outputIdx := make([]int, len(g.Config.OutputKeys))
	for i, k := range g.Config.OutputKeys {
		outputIdx[i] = indexOf[k]
	}

	evalOrder := make([]int, 0, len(order))
	for _, idx := range order {
		if _, isInput := inputSet[keys[idx]]; isInput {
			continue
		}
		evalOrder = append(evalOrder, idx)
	}

	return &Network{
		inputIndices:  inputIdx,
		outputIndices: outputIdx,
		evalOrder:     evalOrder,
		nodes:         nodes,
	}, nil
}

// Activate runs the network forward on inputs, returning the output-node
// values in the genome's declared OutputKeys order.
func (n *Network) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(n.inputIndices) {
		return nil, fmt.Errorf("expected %d inputs, got %d", len(n.inputIndices), len(inputs))
	}

	values := make([]float64, len(n.nodes))
	for i, idx := range n.inputIndices {
		values[idx] = inputs[i]
	}

	for _, idx := range n.evalOrder {
		node := n.nodes[idx]
		weighted := make([]float64, len(node.inputs))
		for i, in := range node.inputs {
			weighted[i] = values[in.sourceIndex] * in.weight
		}
		agg := node.aggregation(weighted)
		values[idx] = node.activation(node.bias + node.response*agg)
	}

	outputs := make([]float64, len(n.outputIndices))
	for i, idx := range n.outputIndices {
		outputs[i] = values[idx]
	}
	return outputs, nil
}
