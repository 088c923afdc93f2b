package search

import "github.com/poiesic/oraculum/core"

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps during retrieval.
type RetrievalMonitor interface {
	Start(question string)
	AfterEmbedding(vector []float32)
	AfterIndexSearch(results []*core.RetrievalResult)
	FilteredByDistance(result *core.RetrievalResult)
	Finish(results []*core.RetrievalResult)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                               {}
func (n *noopMonitor) AfterEmbedding(_ []float32)                   {}
func (n *noopMonitor) AfterIndexSearch(_ []*core.RetrievalResult)   {}
func (n *noopMonitor) FilteredByDistance(_ *core.RetrievalResult)   {}
func (n *noopMonitor) Finish(_ []*core.RetrievalResult)             {}
