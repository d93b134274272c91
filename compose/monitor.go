package compose

// AnalysisMonitor provides hooks to observe a composition run.
// Implement this interface to track windows as they are searched,
// discarded, or fail. ChunkSearched fires from worker goroutines and
// must be safe for concurrent use; the other hooks fire from the
// calling goroutine. A recursive run invokes Start and Finish once per
// nesting level.
type AnalysisMonitor interface {
	Start(runId string, chunkCount int)
	ChunkSearched(offset int, hits int)
	ChunkFailed(offset int, err error)
	CommonChunk(offset int, manuscripts int)
	Finish(result *Result)
}

// noopAnalysisMonitor is a no-op implementation of AnalysisMonitor
type noopAnalysisMonitor struct{}

var _ AnalysisMonitor = (*noopAnalysisMonitor)(nil)

func (n *noopAnalysisMonitor) Start(_ string, _ int)      {}
func (n *noopAnalysisMonitor) ChunkSearched(_ int, _ int) {}
func (n *noopAnalysisMonitor) ChunkFailed(_ int, _ error) {}
func (n *noopAnalysisMonitor) CommonChunk(_ int, _ int)   {}
func (n *noopAnalysisMonitor) Finish(_ *Result)           {}
