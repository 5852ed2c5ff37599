package filesystem

import "github.com/brettbedarf/treefs"

// Locate does a breadth-first search from root for the first node called name.
// The root itself matches when name is "root". The queue is local to the call so
// concurrent readers of the same snapshot are safe.
func Locate(root *treefs.Node, name string) (*treefs.Node, bool) {
	if root == nil {
		return nil, false
	}
	queue := []*treefs.Node{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		queue = append(queue, cur.Children...)
		if cur.Name == name {
			return cur, true
		}
	}
	return nil, false
}

// Walk visits every node breadth-first until fn returns false.
func Walk(root *treefs.Node, fn func(n *treefs.Node) bool) {
	if root == nil {
		return
	}
	queue := []*treefs.Node{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !fn(cur) {
			return
		}
		queue = append(queue, cur.Children...)
	}
}
