package compiler

import (
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/roach88/qprog/internal/ir"
)

// Coupling is a validated coupling map with undirected adjacency for routing.
type Coupling struct {
	directed   ir.CouplingMap
	neighbours map[int][]int
	nodes      mapset.Set[int]
}

// NewCoupling validates m and indexes it.
func NewCoupling(m ir.CouplingMap) (*Coupling, error) {
	if len(m) == 0 {
		return nil, fmt.Errorf("coupling map is empty")
	}
	c := &Coupling{
		directed:   m.Clone(),
		neighbours: make(map[int][]int),
		nodes:      mapset.NewThreadUnsafeSet[int](),
	}
	for src, targets := range m {
		if src < 0 {
			return nil, fmt.Errorf("coupling map: negative qubit %d", src)
		}
		c.nodes.Add(src)
		for _, dst := range targets {
			if dst < 0 {
				return nil, fmt.Errorf("coupling map: negative qubit %d", dst)
			}
			if dst == src {
				return nil, fmt.Errorf("coupling map: self edge on %d", src)
			}
			c.nodes.Add(dst)
			c.link(src, dst)
			c.link(dst, src)
		}
	}
	for k := range c.neighbours {
		slices.Sort(c.neighbours[k])
	}
	return c, nil
}

func (c *Coupling) link(a, b int) {
	if !slices.Contains(c.neighbours[a], b) {
		c.neighbours[a] = append(c.neighbours[a], b)
	}
}

// Size is the number of physical qubits addressed by the map.
func (c *Coupling) Size() int {
	hi := -1
	for n := range c.nodes.Iter() {
		if n > hi {
			hi = n
		}
	}
	return hi + 1
}

// HasEdge reports whether a directed cx from a to b is native.
func (c *Coupling) HasEdge(a, b int) bool {
	return c.directed.HasEdge(a, b)
}

// Adjacent reports whether a and b are coupled in either direction.
func (c *Coupling) Adjacent(a, b int) bool {
	return slices.Contains(c.neighbours[a], b)
}

// ShortestPath returns a breadth-first shortest path from a to b, inclusive
// of both ends, ignoring edge direction. It returns nil when b is unreachable.
func (c *Coupling) ShortestPath(a, b int) []int {
	if a == b {
		return []int{a}
	}
	prev := map[int]int{a: a}
	frontier := []int{a}
	for len(frontier) > 0 {
		var next []int
		for _, n := range frontier {
			for _, m := range c.neighbours[n] {
				if _, seen := prev[m]; seen {
					continue
				}
				prev[m] = n
				if m == b {
					return walkBack(prev, a, b)
				}
				next = append(next, m)
			}
		}
		frontier = next
	}
	return nil
}

func walkBack(prev map[int]int, a, b int) []int {
	path := []int{b}
	for n := b; n != a; {
		n = prev[n]
		path = append(path, n)
	}
	slices.Reverse(path)
	return path
}
