package search

import (
	"github.com/gershuni/GenizahSearch/core"
	"github.com/gershuni/GenizahSearch/variant"
)

// SearchMonitor provides hooks to observe query planning.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(req *core.QueryRequest)
	AfterExpansion(alts [][]variant.Variant)
	AfterFuzzyToken(token string, distance int, hits []core.Hit)
	AfterEngineSearch(hits []core.Hit)
	Finish(results []core.Hit)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *core.QueryRequest)                    {}
func (n *noopMonitor) AfterExpansion(_ [][]variant.Variant)          {}
func (n *noopMonitor) AfterFuzzyToken(_ string, _ int, _ []core.Hit) {}
func (n *noopMonitor) AfterEngineSearch(_ []core.Hit)                {}
func (n *noopMonitor) Finish(_ []core.Hit)                           {}
