package search

import (
	"time"

	"github.com/poiesic/subseek/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
// Document hooks are called concurrently from worker goroutines.
type SearchMonitor interface {
	Start(query core.Query)
	AfterEnumeration(documents int)
	DocumentSkipped(name string, err error)
	DocumentScanned(name string, fragments, candidates int)
	Finish(result *Result, elapsed time.Duration)
	Failed(err error)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ core.Query)                     {}
func (n *noopMonitor) AfterEnumeration(_ int)                 {}
func (n *noopMonitor) DocumentSkipped(_ string, _ error)      {}
func (n *noopMonitor) DocumentScanned(_ string, _ int, _ int) {}
func (n *noopMonitor) Finish(_ *Result, _ time.Duration)      {}
func (n *noopMonitor) Failed(_ error)                         {}
