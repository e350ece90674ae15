package neat

import (
	"fmt"
	"math/rand"
	"sort"
)

// Genome represents an individual organism in the population: a graph of
// NodeGenes connected by ConnectionGenes, together with a cached, ordered
// evaluation plan built by Activate.
type Genome struct {
	Key         int
	Nodes       map[int]*NodeGene
	Connections map[ConnectionKey]*ConnectionGene
	Fitness     float64

	Config *GenomeConfig

	activated    bool
	forwardOrder []forwardStep
}

// forwardStep is one entry of a genome's cached, topologically ordered
// evaluation plan: a node id and the (already-enabled) connections feeding
// it, found by Activate.
type forwardStep struct {
	node   int
	inputs []ConnectionKey
}

// NewGenome creates an empty genome bound to the given config.
func NewGenome(key int, config *GenomeConfig) *Genome {
	return &Genome{
		Key:         key,
		Nodes:       make(map[int]*NodeGene),
		Connections: make(map[ConnectionKey]*ConnectionGene),
		Config:      config,
	}
}

// ConfigureNew initializes a new genome's nodes and initial connections from
// its config: one node gene per input, one per output, NumHidden hidden node
// genes, and connections per the initial_connection scheme.
func (g *Genome) ConfigureNew(rng *rand.Rand) error {
	for _, nodeKey := range g.Config.InputKeys {
		node, err := NewNodeGene(nodeKey, g.Config, rng)
		if err != nil {
			return err
		}
		g.Nodes[nodeKey] = node
	}

	for _, nodeKey := range g.Config.OutputKeys {
		node, err := NewNodeGene(nodeKey, g.Config, rng)
		if err != nil {
			return err
		}
		g.Nodes[nodeKey] = node
	}

	for i := 0; i < g.Config.NumHidden; i++ {
		nodeKey := g.Config.NumOutputs + i
		node, err := NewNodeGene(nodeKey, g.Config, rng)
		if err != nil {
			return err
		}
		g.Nodes[nodeKey] = node
	}

	return g.setupInitialConnections(rng)
}

func (g *Genome) hiddenKeys() []int {
	outputs := make(map[int]bool, len(g.Config.OutputKeys))
	for _, ok := range g.Config.OutputKeys {
		outputs[ok] = true
	}
	inputs := make(map[int]bool, len(g.Config.InputKeys))
	for _, ik := range g.Config.InputKeys {
		inputs[ik] = true
	}
	var hidden []int
	for nk := range g.Nodes {
		if !outputs[nk] && !inputs[nk] {
			hidden = append(hidden, nk)
		}
	}
	sort.Ints(hidden)
	return hidden
}

// setupInitialConnections wires the genome's initial connections per
// initial_connection: full_direct connects inputs to every hidden and
// output node plus every hidden node to every output; full_indirect connects
// inputs only to hidden nodes and hidden nodes to outputs, degenerating to
// full_direct when there are no hidden nodes;
// unconnected adds no connections at all.
func (g *Genome) setupInitialConnections(rng *rand.Rand) error {
	inputKeys := g.Config.InputKeys
	outputKeys := g.Config.OutputKeys
	hiddenKeys := g.hiddenKeys()

	addConn := func(in, out int) error {
		key := ConnectionKey{InNodeID: in, OutNodeID: out}
		conn, err := NewConnectionGene(key, g.Config, rng)
		if err != nil {
			return err
		}
		g.Connections[key] = conn
		return nil
	}

	switch g.Config.InitialConnection {
	case "unconnected":
		return nil
	case "full_indirect":
		if len(hiddenKeys) == 0 {
			// Degenerates to full_direct with no hidden nodes.
			for _, ik := range inputKeys {
				for _, ok := range outputKeys {
					if err := addConn(ik, ok); err != nil {
						return err
					}
				}
			}
			return nil
		}
		for _, ik := range inputKeys {
			for _, hk := range hiddenKeys {
				if err := addConn(ik, hk); err != nil {
					return err
				}
			}
		}
		for _, hk := range hiddenKeys {
			for _, ok := range outputKeys {
				if err := addConn(hk, ok); err != nil {
					return err
				}
			}
		}
		return nil
	case "full_direct":
		for _, ik := range inputKeys {
			for _, hk := range hiddenKeys {
				if err := addConn(ik, hk); err != nil {
					return err
				}
			}
			for _, ok := range outputKeys {
				if err := addConn(ik, ok); err != nil {
					return err
				}
			}
		}
		for _, hk := range hiddenKeys {
			for _, ok := range outputKeys {
				if err := addConn(hk, ok); err != nil {
					return err
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: initial_connection %q", ErrInvalidConfig, g.Config.InitialConnection)
	}
}

// ConfigureCrossover builds g from two parent genomes. The fitter parent
// (ties broken toward parent1) contributes every node gene and any
// disjoint/excess connection gene; homologous connection genes are crossed
// attribute-by-attribute.
func (g *Genome) ConfigureCrossover(parent1, parent2 *Genome, rng *rand.Rand) error {
	if parent2.Fitness > parent1.Fitness {
		parent1, parent2 = parent2, parent1
	}

	g.Config = parent1.Config

	for key, node1 := range parent1.Nodes {
		g.Nodes[key] = node1.Copy()
	}

	for key, conn1 := range parent1.Connections {
		conn2, exists := parent2.Connections[key]
		if !exists {
			g.Connections[key] = conn1.Copy()
			continue
		}
		child, err := conn1.Crossover(conn2, rng)
		if err != nil {
			return err
		}
		g.Connections[key] = child
	}
	return nil
}

// Mutate applies the genome's structural and attribute mutations in place.
// Each structural mutation is independently sampled and
// silently no-ops when inapplicable to the genome's current shape.
func (g *Genome) Mutate(rng *rand.Rand) error {
	if rng.Float64() < g.Config.NodeAddProb {
		if err := g.mutateAddNode(rng); err != nil {
			return err
		}
	}
	if rng.Float64() < g.Config.NodeDeleteProb {
		g.mutateDeleteNode(rng)
	}
	if rng.Float64() < g.Config.ConnAddProb {
		if err := g.mutateAddConnection(rng); err != nil {
			return err
		}
	}
	if rng.Float64() < g.Config.ConnDeleteProb {
		g.mutateDeleteConnection(rng)
	}

	for _, node := range g.Nodes {
		node.Mutate(rng)
	}
	for _, conn := range g.Connections {
		conn.Mutate(rng)
	}
	return nil
}

// mutateAddNode splits a randomly chosen connection: the original is
// disabled, a new hidden node is inserted in its place, and two new
// connections replace it, each with freshly initialized weight and enable
// attributes drawn from config. No-op if the genome has no connections.
func (g *Genome) mutateAddNode(rng *rand.Rand) error {
	if len(g.Connections) == 0 {
		return nil
	}
	keys := sortedConnectionKeys(g.Connections)
	connToSplitKey := keys[rng.Intn(len(keys))]
	connToSplit := g.Connections[connToSplitKey]
	connToSplit.Disable()

	newNodeKey := g.nextHiddenNodeKey()
	newNode, err := NewNodeGene(newNodeKey, g.Config, rng)
	if err != nil {
		return err
	}
	g.Nodes[newNodeKey] = newNode

	conn1Key := ConnectionKey{InNodeID: connToSplitKey.InNodeID, OutNodeID: newNodeKey}
	conn1, err := NewConnectionGene(conn1Key, g.Config, rng)
	if err != nil {
		return err
	}
	g.Connections[conn1Key] = conn1

	conn2Key := ConnectionKey{InNodeID: newNodeKey, OutNodeID: connToSplitKey.OutNodeID}
	conn2, err := NewConnectionGene(conn2Key, g.Config, rng)
	if err != nil {
		return err
	}
	g.Connections[conn2Key] = conn2
	return nil
}

// nextHiddenNodeKey returns num_outputs + current hidden count, advancing
// past any key already in use (possible after node deletions).
func (g *Genome) nextHiddenNodeKey() int {
	key := g.Config.NumOutputs + len(g.hiddenKeys())
	for {
		if _, exists := g.Nodes[key]; !exists {
			return key
		}
		key++
	}
}

// mutateDeleteNode removes a uniformly chosen hidden node along with every
// connection incident to it. No-op if the genome has no hidden nodes.
func (g *Genome) mutateDeleteNode(rng *rand.Rand) {
	hidden := g.hiddenKeys()
	if len(hidden) == 0 {
		return
	}
	victim := hidden[rng.Intn(len(hidden))]
	delete(g.Nodes, victim)
	for key := range g.Connections {
		if key.InNodeID == victim || key.OutNodeID == victim {
			delete(g.Connections, key)
		}
	}
}

// mutateAddConnection adds one new connection between a uniformly chosen
// admissible (source, target) pair: targets exclude input nodes, the pair
// must not already be connected or a self-loop, and the new edge must not
// create a cycle. No-op if no admissible pair exists.
func (g *Genome) mutateAddConnection(rng *rand.Rand) error {
	isInput := make(map[int]bool, len(g.Config.InputKeys))
	for _, ik := range g.Config.InputKeys {
		isInput[ik] = true
	}

	possibleInputs := append([]int{}, g.Config.InputKeys...)
	var nodeKeys []int
	for nk := range g.Nodes {
		nodeKeys = append(nodeKeys, nk)
		if !isInput[nk] {
			possibleInputs = append(possibleInputs, nk)
		}
	}
	sort.Ints(nodeKeys)
	possibleOutputs := nodeKeys

	if len(possibleInputs) == 0 || len(possibleOutputs) == 0 {
		return nil
	}

	var admissible []ConnectionKey
	for _, in := range possibleInputs {
		for _, out := range possibleOutputs {
			if isInput[out] || in == out {
				continue
			}
			key := ConnectionKey{InNodeID: in, OutNodeID: out}
			if _, exists := g.Connections[key]; exists {
				continue
			}
			if g.createsCycle(in, out) {
				continue
			}
			admissible = append(admissible, key)
		}
	}
	if len(admissible) == 0 {
		return nil
	}
	sort.Slice(admissible, func(i, j int) bool {
		if admissible[i].InNodeID != admissible[j].InNodeID {
			return admissible[i].InNodeID < admissible[j].InNodeID
		}
		return admissible[i].OutNodeID < admissible[j].OutNodeID
	})
	chosen := admissible[rng.Intn(len(admissible))]
	conn, err := NewConnectionGene(chosen, g.Config, rng)
	if err != nil {
		return err
	}
	g.Connections[chosen] = conn
	return nil
}

// mutateDeleteConnection removes a uniformly chosen connection. No-op if
// the genome has no connections.
func (g *Genome) mutateDeleteConnection(rng *rand.Rand) {
	if len(g.Connections) == 0 {
		return
	}
	keys := sortedConnectionKeys(g.Connections)
	delete(g.Connections, keys[rng.Intn(len(keys))])
}

// createsCycle reports whether adding an edge in->out would create a cycle,
// i.e. whether out can already reach in by following enabled connections.
func (g *Genome) createsCycle(in, out int) bool {
	if in == out {
		return true
	}
	visited := map[int]bool{out: true}
	queue := []int{out}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == in {
			return true
		}
		for key, conn := range g.Connections {
			if conn.Enabled() && key.InNodeID == current && !visited[key.OutNodeID] {
				visited[key.OutNodeID] = true
				queue = append(queue, key.OutNodeID)
			}
		}
	}
	return false
}

// Distance computes the compatibility distance between g and other
//: the node-gene and connection-gene parts are each the
// disjoint coefficient times the disjoint-gene count, plus the summed
// distance over homologous genes, normalized by the larger genome's gene
// count.
func (g *Genome) Distance(other *Genome) float64 {
	cfg := g.Config
	return g.nodeDistancePart(other, cfg) + g.connDistancePart(other, cfg)
}

func (g *Genome) nodeDistancePart(other *Genome, cfg *GenomeConfig) float64 {
	if len(g.Nodes) == 0 && len(other.Nodes) == 0 {
		return 0
	}
	disjoint := 0
	sum := 0.0
	for key, n1 := range g.Nodes {
		if n2, ok := other.Nodes[key]; ok {
			sum += n1.Distance(n2, cfg.CompatibilityWeightCoefficient)
		} else {
			disjoint++
		}
	}
	for key := range other.Nodes {
		if _, ok := g.Nodes[key]; !ok {
			disjoint++
		}
	}
	n := len(g.Nodes)
	if len(other.Nodes) > n {
		n = len(other.Nodes)
	}
	if n < 1 {
		n = 1
	}
	return (cfg.CompatibilityDisjointCoefficient*float64(disjoint) + sum) / float64(n)
}

func (g *Genome) connDistancePart(other *Genome, cfg *GenomeConfig) float64 {
	if len(g.Connections) == 0 && len(other.Connections) == 0 {
		return 0
	}
	disjoint := 0
	sum := 0.0
	for key, c1 := range g.Connections {
		if c2, ok := other.Connections[key]; ok {
			sum += c1.Distance(c2, cfg.CompatibilityWeightCoefficient)
		} else {
			disjoint++
		}
	}
	for key := range other.Connections {
		if _, ok := g.Connections[key]; !ok {
			disjoint++
		}
	}
	n := len(g.Connections)
	if len(other.Connections) > n {
		n = len(other.Connections)
	}
	if n < 1 {
		n = 1
	}
	return (cfg.CompatibilityDisjointCoefficient*float64(disjoint) + sum) / float64(n)
}

// Activate builds the genome's topologically ordered evaluation plan
//: input keys first, then repeatedly any node all of whose
// enabled incoming connections are already ordered, then output keys last.
// Nodes that never become reachable this way are silently dropped from the
// plan. Must be called at least once before Forward.
func (g *Genome) Activate() {
	nodeInputs := make(map[int][]ConnectionKey)
	for key, conn := range g.Connections {
		if !conn.Enabled() {
			continue
		}
		nodeInputs[key.OutNodeID] = append(nodeInputs[key.OutNodeID], key)
	}
	for _, ins := range nodeInputs {
		sort.Slice(ins, func(i, j int) bool { return ins[i].InNodeID < ins[j].InNodeID })
	}

	ordered := make(map[int]bool)
	var order []int
	for _, ik := range g.Config.InputKeys {
		ordered[ik] = true
		order = append(order, ik)
	}

	outputSet := make(map[int]bool, len(g.Config.OutputKeys))
	for _, ok := range g.Config.OutputKeys {
		outputSet[ok] = true
	}

	var pendingHidden []int
	for nk := range g.Nodes {
		if !outputSet[nk] && !ordered[nk] {
			pendingHidden = append(pendingHidden, nk)
		}
	}
	sort.Ints(pendingHidden)

	for {
		progressed := false
		var remaining []int
		for _, nk := range pendingHidden {
			if ordered[nk] {
				continue
			}
			if allOrdered(nodeInputs[nk], ordered) {
				ordered[nk] = true
				order = append(order, nk)
				progressed = true
			} else {
				remaining = append(remaining, nk)
			}
		}
		pendingHidden = remaining
		if !progressed || len(pendingHidden) == 0 {
			break
		}
	}

	var outputKeys []int
	outputKeys = append(outputKeys, g.Config.OutputKeys...)
	sort.Ints(outputKeys)
	for _, ok := range outputKeys {
		if ordered[ok] {
			continue
		}
		if allOrdered(nodeInputs[ok], ordered) {
			ordered[ok] = true
			order = append(order, ok)
		}
	}

	plan := make([]forwardStep, 0, len(order))
	for _, nk := range order {
		if _, isInput := g.Config.nodeIsInput(nk); isInput {
			continue
		}
		plan = append(plan, forwardStep{node: nk, inputs: nodeInputs[nk]})
	}
	g.forwardOrder = plan
	g.activated = true
}

func allOrdered(keys []ConnectionKey, ordered map[int]bool) bool {
	for _, k := range keys {
		if !ordered[k.InNodeID] {
			return false
		}
	}
	return true
}

// nodeIsInput reports whether nk is one of the config's declared input
// node ids.
func (cfg *GenomeConfig) nodeIsInput(nk int) (int, bool) {
	for _, ik := range cfg.InputKeys {
		if ik == nk {
			return ik, true
		}
	}
	return 0, false
}

// Forward evaluates the genome's cached plan on the given inputs, returning
// the values of every declared output node in order. It
// requires a prior call to Activate and an input slice matching num_inputs.
func (g *Genome) Forward(inputs []float64) ([]float64, error) {
	if !g.activated {
		return nil, ErrNotActivated
	}
	if len(inputs) != len(g.Config.InputKeys) {
		return nil, fmt.Errorf("%w: expected %d inputs, got %d", ErrArityMismatch, len(g.Config.InputKeys), len(inputs))
	}

	values := make(map[int]float64, len(g.Nodes)+len(inputs))
	for i, ik := range g.Config.InputKeys {
		values[ik] = inputs[i]
	}

	for _, step := range g.forwardOrder {
		node := g.Nodes[step.node]
		weighted := make([]float64, 0, len(step.inputs))
		for _, ck := range step.inputs {
			conn := g.Connections[ck]
			weighted = append(weighted, values[ck.InNodeID]*conn.Weight())
		}
		aggFn, err := GetAggregation(node.Aggregation())
		if err != nil {
			return nil, err
		}
		actFn, err := GetActivation(node.Activation())
		if err != nil {
			return nil, err
		}
		agg := aggFn(weighted)
		values[step.node] = actFn(node.Bias() + node.Response()*agg)
	}

	outputs := make([]float64, len(g.Config.OutputKeys))
	for i, ok := range g.Config.OutputKeys {
		outputs[i] = values[ok]
	}
	return outputs, nil
}

// Copy returns a deep, independent copy of the genome, including its
// activation plan.
func (g *Genome) Copy() *Genome {
	c := NewGenome(g.Key, g.Config)
	c.Fitness = g.Fitness
	c.activated = g.activated
	for k, n := range g.Nodes {
		c.Nodes[k] = n.Copy()
	}
	for k, conn := range g.Connections {
		c.Connections[k] = conn.Copy()
	}
	if g.forwardOrder != nil {
		c.forwardOrder = append([]forwardStep{}, g.forwardOrder...)
	}
	return c
}

// Size returns (number of nodes, number of enabled connections), used for
// population-level reporting.
func (g *Genome) Size() (int, int) {
	enabled := 0
	for _, c := range g.Connections {
		if c.Enabled() {
			enabled++
		}
	}
	return len(g.Nodes), enabled
}
