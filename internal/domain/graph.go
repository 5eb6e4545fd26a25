package domain

import "sort"

// FindCycle returns the first cycle found in graph as a path that starts and
// ends on the same node, or nil when the graph is acyclic. Nodes are visited
// in sorted order so the reported cycle is stable.
//
// The traversal keeps its own stack and an explicit visiting set: a node is
// "visiting" while any of its descendants is still being explored, and an edge
// back into a visiting node closes a cycle.
func FindCycle(graph map[string][]string) []string {
	nodes := make([]string, 0, len(graph))
	for n := range graph {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	visiting := make(map[string]bool)
	done := make(map[string]bool)

	for _, start := range nodes {
		if done[start] {
			continue
		}

		stack := []dfsFrame{{node: start}}
		visiting[start] = true

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			edges := graph[top.node]

			if top.next == len(edges) {
				visiting[top.node] = false
				done[top.node] = true
				stack = stack[:len(stack)-1]
				continue
			}

			child := edges[top.next]
			top.next++

			if visiting[child] {
				return cyclePath(stack, child)
			}
			if done[child] {
				continue
			}

			visiting[child] = true
			stack = append(stack, dfsFrame{node: child})
		}
	}

	return nil
}

type dfsFrame struct {
	node string
	next int
}

func cyclePath(stack []dfsFrame, closing string) []string {
	var path []string
	for i, f := range stack {
		if f.node == closing {
			for _, g := range stack[i:] {
				path = append(path, g.node)
			}
			break
		}
	}
	return append(path, closing)
}
