package tinyioc

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
)

// Cleanup releases resources of a constructed bean.
type Cleanup func()

// Calls fn and logs a panic instead of propagating it.
func (fn Cleanup) CallWithRecovery(bean string) {
	defer func() {
		if r := recover(); r != nil {
			logger().Error(
				"bean cleanup failed",
				"bean", bean,
				"error", fmt.Errorf("recovered from panic: %v", r),
			)
		}
	}()

	fn()
}

type cleanupNode struct {
	bean       *Bean
	dependants []*cleanupNode
	cleaned    bool
}

// clean releases dependants first, then the node itself.
// Every node is visited once, the graph is acyclic.
func (node *cleanupNode) clean() {
	if node.cleaned {
		return
	}

	node.cleaned = true

	for _, n := range node.dependants {
		n.clean()
	}

	if node.bean == nil {
		return
	}

	if fn, ok := node.bean.release(); ok {
		Cleanup(fn).CallWithRecovery(node.bean.Name)
	}
}

type cleanupNodeRecord struct {
	*cleanupNode
	dependencies []*Bean
}

// buildCleanupNodes returns head node of the teardown graph of built beans.
// edges holds beans every built bean was constructed from.
func buildCleanupNodes(beans []*Bean, edges map[*Bean][]*Bean) *cleanupNode {
	headNode := &cleanupNode{}

	nodes := make([]*cleanupNodeRecord, 0, len(edges))
	for _, bean := range beans {
		deps, ok := edges[bean]
		if !ok {
			continue
		}

		nodes = append(nodes, &cleanupNodeRecord{
			cleanupNode:  &cleanupNode{bean: bean},
			dependencies: deps,
		})
	}

	for _, node := range nodes {
		buildCleanupNodeRecordDependants(node, nodes)
	}

	headNode.dependants = filterOnlyTopNodes(nodes)

	return headNode
}

func filterOnlyTopNodes(nodes []*cleanupNodeRecord) []*cleanupNode {
	result := make([]*cleanupNode, 0)

	for _, n := range nodes {
		if len(n.dependencies) == 0 {
			result = append(result, n.cleanupNode)
		}
	}

	return result
}

func buildCleanupNodeRecordDependants(node *cleanupNodeRecord, nodes []*cleanupNodeRecord) {
	for _, n := range nodes {
		if slices.Contains(n.dependencies, node.bean) {
			node.dependants = append(node.dependants, n.cleanupNode)
		}
	}
}

// worker to close container once ctx is done or the process is asked to stop
func cleanupWorker(ctx context.Context, c *container) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		logger().Debug("closing container", "reason", context.Cause(ctx))
		c.Close()
	case <-c.closed:
	}
}
