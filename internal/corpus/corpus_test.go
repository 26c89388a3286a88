package corpus

import (
	"testing"

	"github.com/satfuzz/satfuzz/internal/crash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_NewSignaturePushesToWorkQueue(t *testing.T) {
	c := New()
	c.Record(RunOutput{Signature: "A", Coverage: 10})
	assert.Equal(t, 1, c.WorkQueueLen())
	assert.True(t, c.HasSignature("A"))
}

func TestRecord_SameSignatureDoesNotRePushToWorkQueue(t *testing.T) {
	c := New()
	c.Record(RunOutput{Signature: "A", Coverage: 10})
	c.Record(RunOutput{Signature: "A", Coverage: 20})
	assert.Equal(t, 1, c.WorkQueueLen())
}

func TestTotalCrashes_EqualsSumOfHeapSizes(t *testing.T) {
	c := New()
	c.Record(RunOutput{Signature: "A", Coverage: 1})
	c.Record(RunOutput{Signature: "A", Coverage: 2})
	c.Record(RunOutput{Signature: "B", Coverage: 3})
	assert.Equal(t, 3, c.TotalCrashes())
}

// S2 — single signature, rising coverage.
func TestScenarioS2_SingleSignatureRisingCoverage(t *testing.T) {
	c := New()
	for i := 0; i < 5; i++ {
		c.Record(RunOutput{Signature: "A", Coverage: 10.0})
	}
	for i := 0; i < 5; i++ {
		c.Record(RunOutput{Signature: "A", Coverage: 20.0})
	}

	assert.Equal(t, 1, c.WorkQueueLen())

	var popped []float64
	for {
		r, ok := c.PopBest("A")
		if !ok {
			break
		}
		popped = append(popped, r.Coverage)
	}
	require.Len(t, popped, 10)
	for i := 0; i < 5; i++ {
		assert.Equal(t, 20.0, popped[i])
	}
	for i := 5; i < 10; i++ {
		assert.Equal(t, 10.0, popped[i])
	}
}

// S3 — two signatures, round-robin shutdown retains all when under budget.
func TestScenarioS3_TwoSignaturesRetainAllUnderBudget(t *testing.T) {
	c := New()
	sigs := []crash.Signature{"A", "B", "A", "B"}
	for i, sig := range sigs {
		c.Record(RunOutput{Signature: sig, Coverage: float64(i)})
	}

	selected := c.SelectForShutdown(20)
	assert.Len(t, selected, 4)
}

// S6 — shutdown selection with 3 signatures holding {5,2,1} crashes and
// MAX_SAVED_TESTS=4.
func TestScenarioS6_ShutdownSelectionRoundRobin(t *testing.T) {
	c := New()
	for i := 0; i < 5; i++ {
		c.Record(RunOutput{Signature: "A", Coverage: float64(i)})
	}
	for i := 0; i < 2; i++ {
		c.Record(RunOutput{Signature: "B", Coverage: float64(i) + 100})
	}
	c.Record(RunOutput{Signature: "C", Coverage: 50})

	selected := c.SelectForShutdown(4)
	assert.Len(t, selected, 4)

	bySig := map[crash.Signature]int{}
	for _, r := range selected {
		bySig[r.Signature]++
	}
	assert.Equal(t, 2, bySig["A"])
	assert.Equal(t, 1, bySig["B"])
	assert.Equal(t, 1, bySig["C"])
}

func TestIsInterestingMutation_DecisionTable(t *testing.T) {
	before := RunOutput{Signature: "A", Coverage: 10}

	after := RunOutput{Signature: "B", Coverage: 5}
	keepAfter, keepBefore := IsInterestingMutation(before, after, false)
	assert.True(t, keepAfter)
	assert.True(t, keepBefore)

	after = RunOutput{Signature: "A", Coverage: 20}
	keepAfter, keepBefore = IsInterestingMutation(before, after, false)
	assert.True(t, keepAfter)
	assert.False(t, keepBefore)

	after = RunOutput{Signature: "A", Coverage: 5}
	keepAfter, keepBefore = IsInterestingMutation(before, after, false)
	assert.False(t, keepAfter)
	assert.True(t, keepBefore)

	after = RunOutput{Signature: "A", Coverage: 5}
	keepAfter, keepBefore = IsInterestingMutation(before, after, true)
	assert.True(t, keepAfter)
	assert.True(t, keepBefore)
}

func TestPopWork_FIFO(t *testing.T) {
	c := New()
	c.Enqueue(RunOutput{TestFilePath: "first"})
	c.Enqueue(RunOutput{TestFilePath: "second"})

	r1, ok := c.PopWork()
	require.True(t, ok)
	assert.Equal(t, "first", r1.TestFilePath)

	r2, ok := c.PopWork()
	require.True(t, ok)
	assert.Equal(t, "second", r2.TestFilePath)

	_, ok = c.PopWork()
	assert.False(t, ok)
}
