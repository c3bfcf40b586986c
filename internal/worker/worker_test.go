package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platesnap/platesnap-api/internal/analysis"
	"github.com/platesnap/platesnap-api/internal/domain"
	"github.com/platesnap/platesnap-api/internal/store"
)

// mockQueue is a mock implementation of store.WorkQueue for testing
type mockQueue struct {
	PushFn func(ctx context.Context, imageID uuid.UUID) error
	PopFn  func(ctx context.Context, timeout time.Duration) (uuid.UUID, bool, error)
	LenFn  func(ctx context.Context) (int64, error)
}

func (m *mockQueue) Push(ctx context.Context, imageID uuid.UUID) error {
	if m.PushFn != nil {
		return m.PushFn(ctx, imageID)
	}
	return nil
}

func (m *mockQueue) Pop(ctx context.Context, timeout time.Duration) (uuid.UUID, bool, error) {
	if m.PopFn != nil {
		return m.PopFn(ctx, timeout)
	}
	return uuid.Nil, false, nil
}

func (m *mockQueue) Len(ctx context.Context) (int64, error) {
	if m.LenFn != nil {
		return m.LenFn(ctx)
	}
	return 0, nil
}

// mockImages is a mock implementation of store.ImageStore for testing.
// It records status writes so tests can assert on the outcome sequence.
type mockImages struct {
	mu sync.Mutex

	GetImageFn        func(ctx context.Context, imageID uuid.UUID) (*domain.Image, error)
	GetImagePayloadFn func(ctx context.Context, imageID uuid.UUID) ([]byte, error)

	statusWrites []statusWrite
	completed    map[uuid.UUID]*domain.AnalysisResult

	UpdateImageStatusErr error
	CompleteImageErr     error
}

type statusWrite struct {
	imageID  uuid.UUID
	status   domain.ImageStatus
	errorMsg string
}

func newMockImages() *mockImages {
	return &mockImages{
		completed: make(map[uuid.UUID]*domain.AnalysisResult),
	}
}

func (m *mockImages) SaveImage(
	ctx context.Context,
	img *domain.Image,
	payload []byte,
	ttl time.Duration,
) error {
	return nil
}

func (m *mockImages) GetImage(ctx context.Context, imageID uuid.UUID) (*domain.Image, error) {
	if m.GetImageFn != nil {
		return m.GetImageFn(ctx, imageID)
	}
	return &domain.Image{
		ID:       imageID,
		Filename: "meal.jpg",
		MIMEType: "image/jpeg",
		Size:     1,
		Status:   domain.ImageStatusPending,
	}, nil
}

func (m *mockImages) GetImagePayload(ctx context.Context, imageID uuid.UUID) ([]byte, error) {
	if m.GetImagePayloadFn != nil {
		return m.GetImagePayloadFn(ctx, imageID)
	}
	return []byte{0xff, 0xd8}, nil
}

func (m *mockImages) UpdateImageStatus(
	ctx context.Context,
	imageID uuid.UUID,
	status domain.ImageStatus,
	errorMsg string,
) error {
	if m.UpdateImageStatusErr != nil {
		return m.UpdateImageStatusErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusWrites = append(m.statusWrites, statusWrite{imageID, status, errorMsg})
	return nil
}

func (m *mockImages) CompleteImage(
	ctx context.Context,
	imageID uuid.UUID,
	result *domain.AnalysisResult,
	processedAt time.Time,
) error {
	if m.CompleteImageErr != nil {
		return m.CompleteImageErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed[imageID] = result
	return nil
}

func (m *mockImages) writes() []statusWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]statusWrite, len(m.statusWrites))
	copy(out, m.statusWrites)
	return out
}

func (m *mockImages) resultFor(imageID uuid.UUID) (*domain.AnalysisResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.completed[imageID]
	return r, ok
}

// mockAnalyzer is a mock implementation of analysis.Analyzer for testing
type mockAnalyzer struct {
	AnalyzeFn func(ctx context.Context, imageData []byte, mimeType string) (*domain.AnalysisResult, error)
}

func (m *mockAnalyzer) Analyze(
	ctx context.Context,
	imageData []byte,
	mimeType string,
) (*domain.AnalysisResult, error) {
	if m.AnalyzeFn != nil {
		return m.AnalyzeFn(ctx, imageData, mimeType)
	}
	return domain.DegradedAnalysisResult(), nil
}

func newTestWorker(
	t *testing.T,
	queue store.WorkQueue,
	images store.ImageStore,
	analyzer analysis.Analyzer,
) *Worker {
	t.Helper()
	w, err := New(queue, images, analyzer, Config{
		PopTimeout:   10 * time.Millisecond,
		ErrorBackoff: 10 * time.Millisecond,
	}, slog.Default())
	require.NoError(t, err)
	return w
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()
	queue := &mockQueue{}
	images := newMockImages()
	analyzer := &mockAnalyzer{}
	logger := slog.Default()

	_, err := New(nil, images, analyzer, Config{}, logger)
	assert.ErrorIs(t, err, ErrNilQueue)

	_, err = New(queue, nil, analyzer, Config{}, logger)
	assert.ErrorIs(t, err, ErrNilImages)

	_, err = New(queue, images, nil, Config{}, logger)
	assert.ErrorIs(t, err, ErrNilAnalyzer)

	_, err = New(queue, images, analyzer, Config{}, nil)
	assert.ErrorIs(t, err, ErrNilLogger)

	// Zero timing values fall back to defaults
	w, err := New(queue, images, analyzer, Config{}, logger)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().PopTimeout, w.config.PopTimeout)
	assert.Equal(t, DefaultConfig().ErrorBackoff, w.config.ErrorBackoff)
}

func TestProcessImage_Success(t *testing.T) {
	t.Parallel()
	imageID := uuid.New()
	images := newMockImages()
	images.GetImageFn = func(ctx context.Context, id uuid.UUID) (*domain.Image, error) {
		return &domain.Image{
			ID: id, Filename: "soup.png", MIMEType: "image/png",
			Size: 1, Status: domain.ImageStatusPending,
		}, nil
	}

	calories := 310.0
	var gotMIME string
	analyzer := &mockAnalyzer{
		AnalyzeFn: func(ctx context.Context, data []byte, mimeType string) (*domain.AnalysisResult, error) {
			gotMIME = mimeType
			return &domain.AnalysisResult{
				Calories:    &calories,
				Explanation: "A bowl of tomato soup.",
				Confidence:  domain.ConfidenceHigh,
				FoodItems:   []string{"tomato soup"},
			}, nil
		},
	}

	w := newTestWorker(t, &mockQueue{}, images, analyzer)
	require.NoError(t, w.processImage(context.Background(), imageID))

	// Declared MIME type flows through to the analyzer
	assert.Equal(t, "image/png", gotMIME)

	writes := images.writes()
	require.Len(t, writes, 1)
	assert.Equal(t, domain.ImageStatusProcessing, writes[0].status)

	result, ok := images.resultFor(imageID)
	require.True(t, ok, "expected a completed result to be recorded")
	require.NotNil(t, result.Calories)
	assert.Equal(t, calories, *result.Calories)
}

func TestProcessImage_PayloadMissing(t *testing.T) {
	t.Parallel()
	imageID := uuid.New()
	images := newMockImages()
	images.GetImagePayloadFn = func(ctx context.Context, id uuid.UUID) ([]byte, error) {
		return nil, store.ErrPayloadMissing
	}

	analyzed := false
	analyzer := &mockAnalyzer{
		AnalyzeFn: func(ctx context.Context, data []byte, mimeType string) (*domain.AnalysisResult, error) {
			analyzed = true
			return nil, nil
		},
	}

	w := newTestWorker(t, &mockQueue{}, images, analyzer)
	require.NoError(t, w.processImage(context.Background(), imageID))

	assert.False(t, analyzed, "analyzer must not run without a payload")

	writes := images.writes()
	require.Len(t, writes, 2)
	assert.Equal(t, domain.ImageStatusProcessing, writes[0].status)
	assert.Equal(t, domain.ImageStatusError, writes[1].status)
	assert.Equal(t, payloadMissingMessage, writes[1].errorMsg)

	_, ok := images.resultFor(imageID)
	assert.False(t, ok, "a missing payload must not produce a result")
}

func TestProcessImage_MalformedOutputDegrades(t *testing.T) {
	t.Parallel()
	imageID := uuid.New()
	images := newMockImages()
	analyzer := &mockAnalyzer{
		AnalyzeFn: func(ctx context.Context, data []byte, mimeType string) (*domain.AnalysisResult, error) {
			return nil, fmt.Errorf("%w: unexpected token", analysis.ErrMalformedOutput)
		},
	}

	w := newTestWorker(t, &mockQueue{}, images, analyzer)
	require.NoError(t, w.processImage(context.Background(), imageID))

	result, ok := images.resultFor(imageID)
	require.True(t, ok, "malformed output must still complete the image")
	assert.Nil(t, result.Calories)
	assert.Equal(t, domain.ConfidenceUnknown, result.Confidence)
}

func TestProcessImage_InvocationFailure(t *testing.T) {
	t.Parallel()
	imageID := uuid.New()
	images := newMockImages()
	analyzer := &mockAnalyzer{
		AnalyzeFn: func(ctx context.Context, data []byte, mimeType string) (*domain.AnalysisResult, error) {
			return nil, fmt.Errorf("%w: model unavailable", analysis.ErrInvocationFailed)
		},
	}

	w := newTestWorker(t, &mockQueue{}, images, analyzer)
	require.NoError(t, w.processImage(context.Background(), imageID))

	writes := images.writes()
	require.Len(t, writes, 2)
	assert.Equal(t, domain.ImageStatusError, writes[1].status)
	assert.Contains(t, writes[1].errorMsg, "model unavailable")

	_, ok := images.resultFor(imageID)
	assert.False(t, ok)
}

func TestProcessImage_MarkProcessingFailureIsNonFatal(t *testing.T) {
	t.Parallel()
	imageID := uuid.New()
	images := newMockImages()
	images.UpdateImageStatusErr = errors.New("transient write failure")

	analyzer := &mockAnalyzer{
		AnalyzeFn: func(ctx context.Context, data []byte, mimeType string) (*domain.AnalysisResult, error) {
			return domain.DegradedAnalysisResult(), nil
		},
	}

	w := newTestWorker(t, &mockQueue{}, images, analyzer)
	require.NoError(t, w.processImage(context.Background(), imageID))

	_, ok := images.resultFor(imageID)
	assert.True(t, ok, "a failed processing-status write must not stop the item")
}

func TestProcessImage_PanicRecovered(t *testing.T) {
	t.Parallel()
	images := newMockImages()
	analyzer := &mockAnalyzer{
		AnalyzeFn: func(ctx context.Context, data []byte, mimeType string) (*domain.AnalysisResult, error) {
			panic("boom")
		},
	}

	w := newTestWorker(t, &mockQueue{}, images, analyzer)
	err := w.processImage(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic while processing image")
}

func TestRun_StopsOnCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	queue := &mockQueue{
		PopFn: func(ctx context.Context, timeout time.Duration) (uuid.UUID, bool, error) {
			return uuid.Nil, false, nil
		},
	}

	w := newTestWorker(t, queue, newMockImages(), &mockAnalyzer{})

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestRun_BacksOffOnPopFailure(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	pops := 0
	queue := &mockQueue{
		PopFn: func(ctx context.Context, timeout time.Duration) (uuid.UUID, bool, error) {
			mu.Lock()
			pops++
			n := pops
			mu.Unlock()
			if n >= 3 {
				cancel()
			}
			return uuid.Nil, false, errors.New("connection refused")
		},
	}

	w := newTestWorker(t, queue, newMockImages(), &mockAnalyzer{})

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, pops, 3, "loop must keep retrying after pop failures")
}

func TestRun_ProcessesQueueAndSurvivesItemFailure(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	goodID := uuid.New()
	badID := uuid.New()

	var mu sync.Mutex
	pending := []uuid.UUID{badID, goodID}
	queue := &mockQueue{
		PopFn: func(ctx context.Context, timeout time.Duration) (uuid.UUID, bool, error) {
			mu.Lock()
			defer mu.Unlock()
			if len(pending) == 0 {
				cancel()
				return uuid.Nil, false, nil
			}
			id := pending[0]
			pending = pending[1:]
			return id, true, nil
		},
	}

	images := newMockImages()
	calories := 150.0
	analyzer := &mockAnalyzer{
		AnalyzeFn: func(ctx context.Context, data []byte, mimeType string) (*domain.AnalysisResult, error) {
			return &domain.AnalysisResult{
				Calories:    &calories,
				Explanation: "An apple.",
				Confidence:  domain.ConfidenceMedium,
				FoodItems:   []string{"apple"},
			}, nil
		},
	}
	images.GetImagePayloadFn = func(ctx context.Context, id uuid.UUID) ([]byte, error) {
		if id == badID {
			return nil, store.ErrPayloadMissing
		}
		return []byte{1}, nil
	}

	w := newTestWorker(t, queue, images, analyzer)

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}

	// The failed item got a terminal error; the good one still completed
	_, ok := images.resultFor(goodID)
	assert.True(t, ok, "expected the second image to complete")

	var badTerminal bool
	for _, wr := range images.writes() {
		if wr.imageID == badID && wr.status == domain.ImageStatusError {
			badTerminal = true
		}
	}
	assert.True(t, badTerminal, "expected the first image to record a terminal error")
}
