package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubReconciler records every request and replays a scripted sequence of
// results, returning success once the script is exhausted.
type stubReconciler struct {
	mu           sync.Mutex
	resourceType ResourceType
	results      []ReconcileResult
	calls        []ReconcileRequest
}

func (s *stubReconciler) Reconcile(ctx context.Context, req ReconcileRequest) ReconcileResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, req)
	if len(s.results) == 0 {
		return ReconcileResult{}
	}
	result := s.results[0]
	s.results = s.results[1:]
	return result
}

func (s *stubReconciler) GetResourceType() ResourceType {
	return s.resourceType
}

func (s *stubReconciler) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubReconciler) call(i int) ReconcileRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[i]
}

// stubDetector tracks Start/Stop calls.
type stubDetector struct {
	mu       sync.Mutex
	started  bool
	stopped  bool
	startErr error
}

func (d *stubDetector) Start(ctx context.Context, changes chan<- ChangeEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.startErr != nil {
		return d.startErr
	}
	d.started = true
	return nil
}

func (d *stubDetector) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	return nil
}

// slowReconciler blocks until the invocation context expires or its delay
// elapses, whichever comes first.
type slowReconciler struct {
	mu    sync.Mutex
	delay time.Duration
	calls int
}

func (s *slowReconciler) Reconcile(ctx context.Context, req ReconcileRequest) ReconcileResult {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-time.After(s.delay):
	}
	return ReconcileResult{}
}

func (s *slowReconciler) GetResourceType() ResourceType {
	return ResourceTypeEmail
}

func (s *slowReconciler) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type permanentError struct{ msg string }

func (e *permanentError) Error() string   { return e.msg }
func (e *permanentError) Permanent() bool { return true }

func newTestManager(t *testing.T, rec Reconciler) *Manager {
	t.Helper()

	m := NewManager(ManagerConfig{
		WorkerCount:  1,
		MaxRetries:   3,
		RetryBackoff: 20 * time.Millisecond,
	})
	if rec != nil {
		require.NoError(t, m.RegisterReconciler(rec))
	}
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() { _ = m.Stop() })
	return m
}

func TestNewManagerDefaults(t *testing.T) {
	m := NewManager(ManagerConfig{})

	assert.Equal(t, 2, m.config.WorkerCount)
	assert.Equal(t, 3, m.config.MaxRetries)
	assert.Equal(t, 30*time.Second, m.config.RetryBackoff)
	assert.Equal(t, 60*time.Second, m.config.ReconcileTimeout)
	assert.False(t, m.IsRunning())
}

func TestRegisterReconcilerRejectsDuplicate(t *testing.T) {
	m := NewManager(ManagerConfig{})

	require.NoError(t, m.RegisterReconciler(&stubReconciler{resourceType: ResourceTypeEmail}))
	err := m.RegisterReconciler(&stubReconciler{resourceType: ResourceTypeEmail})
	assert.Error(t, err)
}

func TestManagerDispatchesToReconciler(t *testing.T) {
	rec := &stubReconciler{resourceType: ResourceTypeEmail}
	m := newTestManager(t, rec)

	m.TriggerReconcile(ResourceTypeEmail, "welcome", "default", OperationCreate)

	require.Eventually(t, func() bool { return rec.callCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	req := rec.call(0)
	assert.Equal(t, "welcome", req.Name)
	assert.Equal(t, "default", req.Namespace)
	assert.Equal(t, 1, req.Attempt)

	assert.Eventually(t, func() bool {
		status, ok := m.GetStatus(ResourceTypeEmail, "welcome", "default")
		return ok && status.State == StateSynced
	}, 2*time.Second, 10*time.Millisecond)

	status, _ := m.GetStatus(ResourceTypeEmail, "welcome", "default")
	assert.NotNil(t, status.LastReconcileTime)
	assert.Equal(t, 0, status.RetryCount)
}

func TestManagerEventPolicy(t *testing.T) {
	emailRec := &stubReconciler{resourceType: ResourceTypeEmail}
	configRec := &stubReconciler{resourceType: ResourceTypeSenderConfig}

	m := newTestManager(t, emailRec)
	require.NoError(t, m.RegisterReconciler(configRec))

	// Deletes are ignored for both kinds, Email updates as well.
	m.TriggerReconcile(ResourceTypeEmail, "a", "default", OperationDelete)
	m.TriggerReconcile(ResourceTypeSenderConfig, "b", "default", OperationDelete)
	m.TriggerReconcile(ResourceTypeEmail, "c", "default", OperationUpdate)

	// Sender config updates are reconciled.
	m.TriggerReconcile(ResourceTypeSenderConfig, "d", "default", OperationUpdate)

	require.Eventually(t, func() bool { return configRec.callCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "d", configRec.call(0).Name)
	assert.Equal(t, 0, emailRec.callCount())
}

func TestManagerRetriesWithFixedBackoff(t *testing.T) {
	rec := &stubReconciler{
		resourceType: ResourceTypeEmail,
		results: []ReconcileResult{
			{Error: errors.New("transient one")},
			{Error: errors.New("transient two")},
		},
	}
	m := newTestManager(t, rec)

	m.TriggerReconcile(ResourceTypeEmail, "flaky", "default", OperationCreate)

	require.Eventually(t, func() bool { return rec.callCount() == 3 }, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, rec.call(0).Attempt)
	assert.Equal(t, 2, rec.call(1).Attempt)
	assert.Equal(t, 3, rec.call(2).Attempt)
	assert.EqualError(t, rec.call(2).LastError, "transient two")

	assert.Eventually(t, func() bool {
		status, ok := m.GetStatus(ResourceTypeEmail, "flaky", "default")
		return ok && status.State == StateSynced
	}, 2*time.Second, 10*time.Millisecond)
}

func TestManagerStopsAfterMaxRetries(t *testing.T) {
	rec := &stubReconciler{
		resourceType: ResourceTypeEmail,
		results: []ReconcileResult{
			{Error: errors.New("down")},
			{Error: errors.New("down")},
			{Error: errors.New("down")},
			{Error: errors.New("down")},
		},
	}
	m := newTestManager(t, rec)

	m.TriggerReconcile(ResourceTypeEmail, "doomed", "default", OperationCreate)

	require.Eventually(t, func() bool {
		status, ok := m.GetStatus(ResourceTypeEmail, "doomed", "default")
		return ok && status.State == StateFailed
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 3, rec.callCount())

	// No further attempts arrive after the budget is exhausted.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 3, rec.callCount())
}

func TestManagerTimesOutSlowReconciler(t *testing.T) {
	rec := &slowReconciler{delay: 60 * time.Millisecond}

	m := NewManager(ManagerConfig{
		WorkerCount:      1,
		MaxRetries:       2,
		RetryBackoff:     20 * time.Millisecond,
		ReconcileTimeout: 20 * time.Millisecond,
	})
	require.NoError(t, m.RegisterReconciler(rec))
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() { _ = m.Stop() })

	m.TriggerReconcile(ResourceTypeEmail, "sluggish", "default", OperationCreate)

	// An overrun invocation is a retriable failure: it is retried at the
	// fixed backoff and exhausts the attempt budget.
	require.Eventually(t, func() bool {
		status, ok := m.GetStatus(ResourceTypeEmail, "sluggish", "default")
		return ok && status.State == StateFailed
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 2, rec.callCount())

	status, _ := m.GetStatus(ResourceTypeEmail, "sluggish", "default")
	assert.Contains(t, status.LastError, "timed out")

	// No further attempts after the budget is exhausted.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 2, rec.callCount())
}

func TestManagerDoesNotRetryPermanentErrors(t *testing.T) {
	rec := &stubReconciler{
		resourceType: ResourceTypeEmail,
		results: []ReconcileResult{
			{Error: &permanentError{msg: "unknown provider"}},
		},
	}
	m := newTestManager(t, rec)

	m.TriggerReconcile(ResourceTypeEmail, "orphan", "default", OperationCreate)

	require.Eventually(t, func() bool {
		status, ok := m.GetStatus(ResourceTypeEmail, "orphan", "default")
		return ok && status.State == StateFailed
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, rec.callCount())

	status, _ := m.GetStatus(ResourceTypeEmail, "orphan", "default")
	assert.Equal(t, "unknown provider", status.LastError)
	assert.Equal(t, 0, status.RetryCount)
}

func TestManagerIgnoresUnregisteredResourceType(t *testing.T) {
	rec := &stubReconciler{resourceType: ResourceTypeEmail}
	m := newTestManager(t, rec)

	m.TriggerReconcile(ResourceTypeSenderConfig, "no-handler", "default", OperationCreate)

	assert.Eventually(t, func() bool { return m.GetQueueLength() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, rec.callCount())
}

func TestManagerStartStopDetector(t *testing.T) {
	det := &stubDetector{}

	m := NewManager(ManagerConfig{WorkerCount: 1})
	m.SetDetector(det)

	require.NoError(t, m.Start(context.Background()))
	assert.True(t, m.IsRunning())
	assert.True(t, det.started)

	require.NoError(t, m.Stop())
	assert.False(t, m.IsRunning())
	assert.True(t, det.stopped)
}

func TestManagerStartFailsWhenDetectorFails(t *testing.T) {
	det := &stubDetector{startErr: fmt.Errorf("no cluster")}

	m := NewManager(ManagerConfig{WorkerCount: 1})
	m.SetDetector(det)

	err := m.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, m.IsRunning())
}

func TestGetAllStatuses(t *testing.T) {
	rec := &stubReconciler{resourceType: ResourceTypeEmail}
	m := newTestManager(t, rec)

	m.TriggerReconcile(ResourceTypeEmail, "one", "default", OperationCreate)
	m.TriggerReconcile(ResourceTypeEmail, "two", "default", OperationCreate)

	require.Eventually(t, func() bool { return len(m.GetAllStatuses()) == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestIsPermanent(t *testing.T) {
	assert.False(t, IsPermanent(nil))
	assert.False(t, IsPermanent(errors.New("plain")))
	assert.True(t, IsPermanent(&permanentError{msg: "x"}))
	assert.True(t, IsPermanent(fmt.Errorf("wrapped: %w", &permanentError{msg: "x"})))
}
