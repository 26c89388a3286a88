// Package corpus implements the interesting-input store and "is
// interesting" decision table from spec.md §4.H, backed by a per-signature
// max-heap over coverage and a FIFO work queue.
package corpus

import (
	"container/heap"

	"github.com/satfuzz/satfuzz/internal/crash"
)

// RunOutput is one observed SUT run. Only RunOutputs with a non-zero
// Signature are ever stored.
//
// Content carries the exact bytes that produced this run as an immutable
// snapshot (spec.md §9: "ownership can be 'shared snapshot' since entries
// are immutable after creation"). It exists because the scratch path the
// SUT was actually run against is rewritten every iteration — a queued
// RunOutput needs its own copy to survive until it is popped and mutated.
type RunOutput struct {
	TestFilePath string
	Signature    crash.Signature
	Stderr       []byte
	Coverage     float64
	Content      []byte

	// RecordedAs is the filename this run was saved under inside the
	// output directory, set once (and only once) it has actually been
	// recorded there. Empty until then.
	RecordedAs string
}

// coverageHeap is a container/heap max-heap over RunOutput.Coverage.
type coverageHeap []RunOutput

func (h coverageHeap) Len() int            { return len(h) }
func (h coverageHeap) Less(i, j int) bool  { return h[i].Coverage > h[j].Coverage }
func (h coverageHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *coverageHeap) Push(x interface{}) { *h = append(*h, x.(RunOutput)) }
func (h *coverageHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Corpus is the fuzzer's in-memory interesting-input store. It is owned
// and mutated exclusively by the single fuzzing loop; no internal
// synchronization is needed (spec.md §5: single-threaded cooperative).
type Corpus struct {
	interestingCases map[crash.Signature]*coverageHeap
	signatureOrder   []crash.Signature
	workQueue        []RunOutput
}

func New() *Corpus {
	return &Corpus{
		interestingCases: make(map[crash.Signature]*coverageHeap),
	}
}

// Record applies the base "after each run" policy from spec.md §4.H steps
// 1-2: a new signature gets a fresh heap and an unconditional work_queue
// push; every run is then pushed onto its signature's heap.
func (c *Corpus) Record(r RunOutput) {
	h, ok := c.interestingCases[r.Signature]
	if !ok {
		h = &coverageHeap{}
		heap.Init(h)
		c.interestingCases[r.Signature] = h
		c.signatureOrder = append(c.signatureOrder, r.Signature)
		c.workQueue = append(c.workQueue, r)
	}
	heap.Push(h, r)
}

// IsInterestingMutation implements spec.md §4.H's decision table for the
// mutation path. It returns whether after and before should each be kept
// (enqueued at the tail of work_queue).
func IsInterestingMutation(before, after RunOutput, afterSignatureIsNew bool) (keepAfter, keepBefore bool) {
	if afterSignatureIsNew {
		return true, true
	}
	if after.Signature != before.Signature {
		return true, true
	}
	if after.Coverage > before.Coverage {
		return true, false
	}
	return false, true
}

// Enqueue pushes r onto the tail of work_queue.
func (c *Corpus) Enqueue(r RunOutput) {
	c.workQueue = append(c.workQueue, r)
}

// PopWork pops the head of work_queue. ok is false if the queue is empty.
func (c *Corpus) PopWork() (r RunOutput, ok bool) {
	if len(c.workQueue) == 0 {
		return RunOutput{}, false
	}
	r = c.workQueue[0]
	c.workQueue = c.workQueue[1:]
	return r, true
}

// HasSignature reports whether signature has been sighted before.
func (c *Corpus) HasSignature(sig crash.Signature) bool {
	_, ok := c.interestingCases[sig]
	return ok
}

// WorkQueueLen returns the current length of work_queue.
func (c *Corpus) WorkQueueLen() int {
	return len(c.workQueue)
}

// TotalCrashes returns the sum of all per-signature heap sizes.
func (c *Corpus) TotalCrashes() int {
	total := 0
	for _, h := range c.interestingCases {
		total += h.Len()
	}
	return total
}

// Signatures returns the sighted signatures in first-discovery order, so
// that round-robin shutdown selection is deterministic given a
// deterministic run.
func (c *Corpus) Signatures() []crash.Signature {
	return append([]crash.Signature(nil), c.signatureOrder...)
}

// HeapLen returns the number of RunOutputs currently stored for sig.
func (c *Corpus) HeapLen(sig crash.Signature) int {
	h, ok := c.interestingCases[sig]
	if !ok {
		return 0
	}
	return h.Len()
}

// PopBest pops the highest-coverage RunOutput for sig. ok is false if
// sig's heap is empty or unknown.
func (c *Corpus) PopBest(sig crash.Signature) (r RunOutput, ok bool) {
	h, exists := c.interestingCases[sig]
	if !exists || h.Len() == 0 {
		return RunOutput{}, false
	}
	return heap.Pop(h).(RunOutput), true
}

// SelectForShutdown implements spec.md §4.I's shutdown retention
// algorithm: round-robin over signatures, popping one best element per
// signature until maxSaved total elements have been selected (or the
// corpus is exhausted).
func (c *Corpus) SelectForShutdown(maxSaved int) []RunOutput {
	toSave := maxSaved
	if total := c.TotalCrashes(); total < toSave {
		toSave = total
	}

	var selected []RunOutput
	sigs := c.Signatures()
	for len(selected) < toSave && len(sigs) > 0 {
		remaining := sigs[:0]
		for _, sig := range sigs {
			if len(selected) >= toSave {
				break
			}
			if r, ok := c.PopBest(sig); ok {
				selected = append(selected, r)
				if c.interestingCases[sig].Len() > 0 {
					remaining = append(remaining, sig)
				}
			}
		}
		sigs = remaining
	}
	return selected
}
