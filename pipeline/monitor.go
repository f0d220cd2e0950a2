package pipeline

// Monitor provides hooks to observe the pipeline's progress. It is the
// one-way notification channel toward the UI: purely observational, and no
// implementation may exert backpressure on the pipeline.
// Implement this interface to surface stage transitions, iteration counts,
// phrase choices and hit counts.
type Monitor interface {
	RequestStarted(requestID, question string)
	IterationStarted(requestID string, iteration int)
	ReferenceLookup(requestID, reference string, hits int)
	PhraseChosen(requestID, phrase string, hits int)
	PhraseRejected(requestID, phrase string, similarity float32)
	ItemsEvaluated(requestID string, kept, filtered int)
	TranslationFinished(requestID string, translated int)
	SynthesisStarted(requestID string, selected int)
	RequestFinished(requestID string)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) RequestStarted(_, _ string)            {}
func (n *noopMonitor) IterationStarted(_ string, _ int)      {}
func (n *noopMonitor) ReferenceLookup(_, _ string, _ int)    {}
func (n *noopMonitor) PhraseChosen(_, _ string, _ int)       {}
func (n *noopMonitor) PhraseRejected(_, _ string, _ float32) {}
func (n *noopMonitor) ItemsEvaluated(_ string, _, _ int)     {}
func (n *noopMonitor) TranslationFinished(_ string, _ int)   {}
func (n *noopMonitor) SynthesisStarted(_ string, _ int)      {}
func (n *noopMonitor) RequestFinished(_ string)              {}
