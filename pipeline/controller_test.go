package pipeline

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/ganarajpr/rgfe-sub000/ai"
	"github.com/ganarajpr/rgfe-sub000/ai/mock"
	"github.com/ganarajpr/rgfe-sub000/core"
	"github.com/ganarajpr/rgfe-sub000/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDimension = 8

// recordingMonitor captures pipeline progress events for assertions.
type recordingMonitor struct {
	mu         sync.Mutex
	iterations []int
	references []string
	phrases    []string
	rejected   []string

	done     chan struct{}
	doneOnce sync.Once
}

func newRecordingMonitor() *recordingMonitor {
	return &recordingMonitor{done: make(chan struct{})}
}

func (m *recordingMonitor) RequestStarted(_, _ string) {}

func (m *recordingMonitor) IterationStarted(_ string, iteration int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.iterations = append(m.iterations, iteration)
}

func (m *recordingMonitor) ReferenceLookup(_, reference string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.references = append(m.references, reference)
}

func (m *recordingMonitor) PhraseChosen(_, phrase string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phrases = append(m.phrases, phrase)
}

func (m *recordingMonitor) PhraseRejected(_, phrase string, _ float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected = append(m.rejected, phrase)
}

func (m *recordingMonitor) ItemsEvaluated(_ string, _, _ int)   {}
func (m *recordingMonitor) TranslationFinished(_ string, _ int) {}
func (m *recordingMonitor) SynthesisStarted(_ string, _ int)    {}

func (m *recordingMonitor) RequestFinished(_ string) {
	m.doneOnce.Do(func() { close(m.done) })
}

func (m *recordingMonitor) wait(t *testing.T) {
	t.Helper()
	<-m.done
}

func (m *recordingMonitor) chosenPhrases() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.phrases...)
}

func corpusEntry(id, text, reference string) core.CorpusEntry {
	return core.CorpusEntry{
		ID:          id,
		Text:        text,
		SourceLabel: "rigveda",
		Reference:   reference,
		Embedding:   mock.DeterministicVector(text, testDimension),
	}
}

func testEntries() []core.CorpusEntry {
	return []core.CorpusEntry{
		corpusEntry("e1", "nasadiya then was neither non-existence nor existence", "10.129.1"),
		corpusEntry("e2", "darkness was hidden by darkness in the beginning", "10.129.3"),
		corpusEntry("e3", "agni I praise the household priest", "1.1.1"),
		corpusEntry("e4", "indra slew the dragon and released the waters", "1.32.1"),
	}
}

func buildTestIndex(t *testing.T) *index.Index {
	t.Helper()
	idx, err := index.Build(testEntries())
	require.NoError(t, err)
	return idx
}

// testProvider returns a mock provider whose embedder matches the test index
// dimension.
func testProvider(gen *mock.MockGenerator) *mock.MockProvider {
	emb := mock.NewMockEmbedder()
	emb.EmbedTextFunc = func(_ context.Context, text string) ([]float32, error) {
		return mock.DeterministicVector(text, testDimension), nil
	}
	return mock.NewMockProviderWithServices(gen, emb)
}

func TestNewEngineValidation(t *testing.T) {
	idx := buildTestIndex(t)
	provider := testProvider(mock.NewMockGenerator())

	t.Run("nil index", func(t *testing.T) {
		_, err := NewEngine(nil, provider)
		assert.ErrorIs(t, err, ErrIndexRequired)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewEngine(idx, nil)
		assert.ErrorIs(t, err, ErrProviderRequired)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewEngine(idx, provider, WithConfig(Config{}))
		assert.Error(t, err)
	})
}

func TestAskReferenceShortCircuit(t *testing.T) {
	idx := buildTestIndex(t)
	gen := mock.NewMockGenerator(
		"Then was neither non-existence nor existence.",
		"The verse describes the state before creation (10.129.1).",
	)
	mon := newRecordingMonitor()

	engine, err := NewEngine(idx, testProvider(gen), WithMonitor(mon))
	require.NoError(t, err)
	defer engine.Release()

	answer, err := engine.Ask(context.Background(), "Tell me about 10.129.1")
	require.NoError(t, err)

	text := answer.Text()
	mon.wait(t)

	assert.Equal(t, "The verse describes the state before creation (10.129.1).", text)

	items := answer.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "e1", items[0].EntryID)
	assert.True(t, items[0].FromReference)
	assert.Equal(t, core.TierHigh, items[0].Tier)
	assert.False(t, items[0].Filtered)
	assert.Equal(t, "Then was neither non-existence nor existence.", items[0].Translation)

	// One translation call plus one synthesis call; no phrase generation and
	// no classification ran.
	assert.Equal(t, 2, gen.CallCount())
	assert.Equal(t, []string{"10.129.1"}, mon.references)
	assert.Equal(t, []int{0}, mon.iterations)
	assert.Empty(t, mon.phrases)
}

func TestAskNamedWorkAlias(t *testing.T) {
	idx := buildTestIndex(t)
	gen := mock.NewMockGenerator()
	mon := newRecordingMonitor()

	engine, err := NewEngine(idx, testProvider(gen), WithMonitor(mon))
	require.NoError(t, err)
	defer engine.Release()

	answer, err := engine.Ask(context.Background(), "What does the creation hymn say?")
	require.NoError(t, err)
	answer.Text()
	mon.wait(t)

	// Both 10.129 verses match the hymn-level locator.
	require.Len(t, answer.Items(), 2)
	assert.Equal(t, []string{"10.129"}, mon.references)
	assert.Equal(t, []int{0}, mon.iterations)
}

func TestAskStopsAfterQualityFloor(t *testing.T) {
	idx := buildTestIndex(t)
	mon := newRecordingMonitor()

	idPattern := regexp.MustCompile(`- id: (\S+)`)
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(_ context.Context, prompt string, _ ...ai.GenerateOption) (string, error) {
		switch {
		case strings.Contains(prompt, "Output ONLY valid JSON"):
			var evals []string
			for _, match := range idPattern.FindAllStringSubmatch(prompt, -1) {
				evals = append(evals,
					fmt.Sprintf(`{"id": %q, "tier": "high", "relevant": true}`, match[1]))
			}
			return fmt.Sprintf(`{"evaluations": [%s], "needs_more_search": false}`,
				strings.Join(evals, ",")), nil
		case strings.Contains(prompt, "Produce ONE short search phrase"):
			return "creation of the world", nil
		case strings.Contains(prompt, "Translate this Vedic Sanskrit verse"):
			return "an english rendering", nil
		default:
			return "Everything began in darkness (10.129.3).", nil
		}
	}

	engine, err := NewEngine(idx, testProvider(gen), WithMonitor(mon))
	require.NoError(t, err)
	defer engine.Release()

	answer, err := engine.Ask(context.Background(), "How did the world begin?")
	require.NoError(t, err)
	text := answer.Text()
	mon.wait(t)

	assert.Equal(t, []int{0}, mon.iterations, "two high-tier items must stop the loop")
	assert.NotEmpty(t, text)
	for _, item := range answer.Items() {
		assert.Equal(t, core.TierHigh, item.Tier)
		assert.Equal(t, "an english rendering", item.Translation)
	}
}

func TestAskItemsOrderedBeforeStreaming(t *testing.T) {
	idx := buildTestIndex(t)
	mon := newRecordingMonitor()

	// One tier per entry, deliberately not in rank order, so the final
	// ordering must come from the tier sort and not from retrieval.
	tiers := map[string]string{"e1": "low", "e2": "high", "e3": "medium", "e4": "high"}
	idPattern := regexp.MustCompile(`- id: (\S+)`)
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(_ context.Context, prompt string, _ ...ai.GenerateOption) (string, error) {
		switch {
		case strings.Contains(prompt, "Output ONLY valid JSON"):
			var evals []string
			for _, match := range idPattern.FindAllStringSubmatch(prompt, -1) {
				evals = append(evals,
					fmt.Sprintf(`{"id": %q, "tier": %q, "relevant": true}`, match[1], tiers[match[1]]))
			}
			return fmt.Sprintf(`{"evaluations": [%s], "needs_more_search": false}`,
				strings.Join(evals, ",")), nil
		case strings.Contains(prompt, "Produce ONE short search phrase"):
			// One token from every corpus entry, so text search returns all.
			return "darkness existence agni indra", nil
		case strings.Contains(prompt, "Translate this Vedic Sanskrit verse"):
			return "an english rendering", nil
		default:
			return "The hymns describe creation, fire and the dragon fight.", nil
		}
	}

	cfg := DefaultConfig()
	cfg.VectorWeight = 0
	cfg.TextWeight = 1

	engine, err := NewEngine(idx, testProvider(gen), WithMonitor(mon), WithConfig(cfg))
	require.NoError(t, err)
	defer engine.Release()

	answer, err := engine.Ask(context.Background(), "What do the hymns describe?")
	require.NoError(t, err)

	// Items must already be in final tier order before a single fragment is
	// consumed; the streaming goroutine never touches the slice again.
	items := answer.Items()
	require.Len(t, items, 4)
	for i := 1; i < len(items); i++ {
		assert.GreaterOrEqual(t, items[i-1].Tier, items[i].Tier,
			"item %d (%s) outranks item %d (%s)", i, items[i].EntryID, i-1, items[i-1].EntryID)
	}
	assert.ElementsMatch(t, []string{"e2", "e4"}, []string{items[0].EntryID, items[1].EntryID})
	assert.Equal(t, "e3", items[2].EntryID)
	assert.Equal(t, "e1", items[3].EntryID)

	assert.NotEmpty(t, answer.Text())
	mon.wait(t)
	assert.Equal(t, []int{0}, mon.iterations)
}

func TestAskExhaustsIterationCeiling(t *testing.T) {
	idx := buildTestIndex(t)
	mon := newRecordingMonitor()

	// Every call fails: no phrases, no classifications, no translations. The
	// engine must still terminate through the glossary fallback and the
	// iteration ceiling, then report insufficient evidence.
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(_ context.Context, _ string, _ ...ai.GenerateOption) (string, error) {
		return "", errors.New("model unavailable")
	}

	engine, err := NewEngine(idx, testProvider(gen), WithMonitor(mon))
	require.NoError(t, err)
	defer engine.Release()

	answer, err := engine.Ask(context.Background(), "What is the meaning of sacrifice?")
	require.NoError(t, err)
	text := answer.Text()
	mon.wait(t)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, mon.iterations)
	assert.Equal(t, insufficientEvidenceAnswer, text)
	assert.Empty(t, answer.Items())

	phrases := mon.chosenPhrases()
	require.Len(t, phrases, 6)
	seen := make(map[string]bool)
	for _, phrase := range phrases {
		assert.False(t, seen[phrase], "phrase %q searched twice", phrase)
		seen[phrase] = true
	}
}

func TestAskContinuesWhileQualityLow(t *testing.T) {
	idx := buildTestIndex(t)
	mon := newRecordingMonitor()

	phraseCount := 0
	idPattern := regexp.MustCompile(`- id: (\S+)`)
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(_ context.Context, prompt string, _ ...ai.GenerateOption) (string, error) {
		switch {
		case strings.Contains(prompt, "Output ONLY valid JSON"):
			var evals []string
			for _, match := range idPattern.FindAllStringSubmatch(prompt, -1) {
				evals = append(evals,
					fmt.Sprintf(`{"id": %q, "tier": "low", "relevant": true}`, match[1]))
			}
			return fmt.Sprintf(`{"evaluations": [%s], "needs_more_search": true}`,
				strings.Join(evals, ",")), nil
		case strings.Contains(prompt, "Produce ONE short search phrase"):
			phraseCount++
			return fmt.Sprintf("distinct search phrase %d", phraseCount), nil
		case strings.Contains(prompt, "Translate this Vedic Sanskrit verse"):
			return "an english rendering", nil
		default:
			return "Only tangential evidence was found.", nil
		}
	}

	engine, err := NewEngine(idx, testProvider(gen), WithMonitor(mon))
	require.NoError(t, err)
	defer engine.Release()

	answer, err := engine.Ask(context.Background(), "What do the hymns say about fate?")
	require.NoError(t, err)
	text := answer.Text()
	mon.wait(t)

	// Low-tier items never satisfy the quality floor, so the ceiling is the
	// only stop. Iteration count stays bounded at one initial round plus
	// MaxIterations extra rounds.
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, mon.iterations)
	assert.NotEmpty(t, text)
	for _, item := range answer.Items() {
		assert.Equal(t, core.TierLow, item.Tier)
		assert.False(t, item.Filtered)
	}
}

func TestAskCancelledBeforeStart(t *testing.T) {
	idx := buildTestIndex(t)
	gen := mock.NewMockGenerator()

	engine, err := NewEngine(idx, testProvider(gen))
	require.NoError(t, err)
	defer engine.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	answer, err := engine.Ask(ctx, "who is varuna")
	require.NoError(t, err)
	assert.Empty(t, answer.Text(), "cancelled request yields an empty, cleanly closed stream")
}

func TestAskCancelledMidStream(t *testing.T) {
	idx := buildTestIndex(t)
	gen := mock.NewMockGenerator(
		"a translation",
		"first second third fourth fifth sixth seventh eighth",
	)

	engine, err := NewEngine(idx, testProvider(gen))
	require.NoError(t, err)
	defer engine.Release()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	answer, err := engine.Ask(ctx, "Tell me about 10.129.1")
	require.NoError(t, err)

	first, ok := <-answer.Fragments()
	require.True(t, ok)
	assert.NotEmpty(t, first)
	cancel()

	// The stream must terminate; fragments already delivered stay delivered.
	for range answer.Fragments() {
	}
}

func TestChoosePhraseRejectsNearDuplicates(t *testing.T) {
	idx := buildTestIndex(t)
	mon := newRecordingMonitor()

	sameVector := mock.DeterministicVector("constant", testDimension)
	phraseCount := 0
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(_ context.Context, prompt string, _ ...ai.GenerateOption) (string, error) {
		if strings.Contains(prompt, "Translate the following question") {
			return "corpus words", nil
		}
		phraseCount++
		return fmt.Sprintf("near duplicate %d", phraseCount), nil
	}
	emb := mock.NewMockEmbedder()
	emb.EmbedTextFunc = func(_ context.Context, text string) ([]float32, error) {
		if strings.HasPrefix(text, "near duplicate") {
			return sameVector, nil
		}
		return mock.DeterministicVector(text, testDimension), nil
	}

	engine, err := NewEngine(idx, mock.NewMockProviderWithServices(gen, emb), WithMonitor(mon))
	require.NoError(t, err)
	defer engine.Release()

	state := NewState("q")
	state.RecordAttempt("an earlier phrase", sameVector)

	phrase, embedding, err := engine.choosePhrase(context.Background(), state)
	require.NoError(t, err)

	// All generated candidates embed identically to the prior attempt, so
	// the fallback translation of the raw question wins.
	assert.Equal(t, "corpus words", phrase)
	assert.NotNil(t, embedding)
	assert.Len(t, mon.rejected, phraseAttempts)
}

func TestChoosePhrasePrefersSuggestion(t *testing.T) {
	idx := buildTestIndex(t)
	gen := mock.NewMockGenerator()

	engine, err := NewEngine(idx, testProvider(gen))
	require.NoError(t, err)
	defer engine.Release()

	state := NewState("q")
	state.SuggestedPhrase = "soma pressing ritual"

	phrase, _, err := engine.choosePhrase(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, "soma pressing ritual", phrase)
	assert.Zero(t, gen.CallCount(), "a usable suggestion needs no generation call")
	assert.Empty(t, state.SuggestedPhrase, "suggestion is consumed")
}
