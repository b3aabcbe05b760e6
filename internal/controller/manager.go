package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"emailsender/pkg/logging"
)

// ChangeDetector is the source of change events the manager dispatches.
type ChangeDetector interface {
	// Start begins watching and sends change events to the channel.
	Start(ctx context.Context, changes chan<- ChangeEvent) error

	// Stop gracefully stops the detector.
	Stop() error
}

// Manager coordinates event dispatch: it routes change events from the
// detector to the registered reconcilers through a deduplicating work queue
// and a small worker pool, wrapping every invocation in the configured
// timeout and retrying failures at a fixed backoff interval.
type Manager struct {
	mu sync.RWMutex

	config ManagerConfig

	// changeDetector is the event source
	changeDetector ChangeDetector

	// reconcilers maps resource types to their reconcilers
	reconcilers map[ResourceType]Reconciler

	// queue is the work queue for reconciliation requests
	queue *delayedQueue

	// statusTracker tracks reconciliation status per resource
	statusTracker map[string]*ReconcileStatus

	// changeChan receives change events from the detector
	changeChan chan ChangeEvent

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	running    bool
}

// NewManager creates a new dispatch manager.
func NewManager(config ManagerConfig) *Manager {
	if config.WorkerCount == 0 {
		config.WorkerCount = 2
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.RetryBackoff == 0 {
		config.RetryBackoff = 30 * time.Second
	}
	if config.ReconcileTimeout == 0 {
		config.ReconcileTimeout = 60 * time.Second
	}

	return &Manager{
		config:        config,
		reconcilers:   make(map[ResourceType]Reconciler),
		queue:         newDelayedQueue(),
		statusTracker: make(map[string]*ReconcileStatus),
		changeChan:    make(chan ChangeEvent, 100),
	}
}

// SetDetector sets the change detector. Must be called before Start.
func (m *Manager) SetDetector(d ChangeDetector) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changeDetector = d
}

// RegisterReconciler registers a reconciler for a specific resource type.
func (m *Manager) RegisterReconciler(reconciler Reconciler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	resourceType := reconciler.GetResourceType()
	if _, exists := m.reconcilers[resourceType]; exists {
		return fmt.Errorf("reconciler for %s already registered", resourceType)
	}

	m.reconcilers[resourceType] = reconciler
	logging.Info("Controller", "Registered reconciler for %s", resourceType)
	return nil
}

// Start begins event dispatch.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}

	m.ctx, m.cancelFunc = context.WithCancel(ctx)
	m.running = true
	detector := m.changeDetector
	m.mu.Unlock()

	if detector != nil {
		if err := detector.Start(m.ctx, m.changeChan); err != nil {
			m.mu.Lock()
			m.running = false
			m.mu.Unlock()
			return fmt.Errorf("failed to start change detector: %w", err)
		}
	}

	m.wg.Add(1)
	go m.processChangeEvents()

	for i := 0; i < m.config.WorkerCount; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}

	logging.Info("Controller", "Started with %d workers", m.config.WorkerCount)
	return nil
}

// Stop gracefully shuts down the manager.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	detector := m.changeDetector
	m.mu.Unlock()

	logging.Info("Controller", "Stopping dispatch manager...")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if detector != nil {
		if err := detector.Stop(); err != nil {
			logging.Error("Controller", err, "Error stopping change detector")
		}
	}

	m.queue.Shutdown()
	m.wg.Wait()

	logging.Info("Controller", "Dispatch manager stopped")
	return nil
}

// processChangeEvents converts change events into reconcile requests.
func (m *Manager) processChangeEvents() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return

		case event, ok := <-m.changeChan:
			if !ok {
				return
			}
			m.handleChangeEvent(event)
		}
	}
}

// handleChangeEvent queues a reconcile request for one change event,
// applying the per-kind event policy: deletes are ignored for both kinds,
// and Email resources are reconciled on create only.
func (m *Manager) handleChangeEvent(event ChangeEvent) {
	if event.Operation == OperationDelete {
		logging.Debug("Controller", "Ignoring delete of %s %s/%s", event.Type, event.Namespace, event.Name)
		return
	}
	if event.Type == ResourceTypeEmail && event.Operation != OperationCreate {
		logging.Debug("Controller", "Ignoring %s of %s %s/%s", event.Operation, event.Type, event.Namespace, event.Name)
		return
	}

	logging.Debug("Controller", "Handling change event: %s %s %s/%s",
		event.Operation, event.Type, event.Namespace, event.Name)

	m.updateStatus(event.Type, event.Name, event.Namespace, StatePending, "")

	m.queue.Add(ReconcileRequest{
		Type:      event.Type,
		Name:      event.Name,
		Namespace: event.Namespace,
		Operation: event.Operation,
		Attempt:   1,
	})
}

// worker processes reconcile requests from the queue.
func (m *Manager) worker(id int) {
	defer m.wg.Done()

	logging.Debug("Controller", "Worker %d started", id)

	for {
		req, ok := m.queue.Get(m.ctx)
		if !ok {
			logging.Debug("Controller", "Worker %d shutting down", id)
			return
		}

		m.processRequest(req)
		m.queue.Done(req)
	}
}

// processRequest handles a single reconcile request.
func (m *Manager) processRequest(req ReconcileRequest) {
	m.mu.RLock()
	reconciler, ok := m.reconcilers[req.Type]
	timeout := m.config.ReconcileTimeout
	m.mu.RUnlock()

	if !ok {
		logging.Warn("Controller", "No reconciler for resource type: %s", req.Type)
		return
	}

	m.updateStatus(req.Type, req.Name, req.Namespace, StateReconciling, "")

	logging.Debug("Controller", "Reconciling %s %s/%s (attempt %d)",
		req.Type, req.Namespace, req.Name, req.Attempt)

	// Timeout caps the whole handler body so a hung provider or API
	// server cannot block a worker indefinitely.
	ctx, cancel := context.WithTimeout(m.ctx, timeout)
	defer cancel()

	result := reconciler.Reconcile(ctx, req)

	if result.Error == nil && ctx.Err() == context.DeadlineExceeded {
		result.Error = fmt.Errorf("reconciliation timed out after %v", timeout)
	}

	if result.Error != nil {
		m.handleReconcileError(req, result)
		return
	}

	logging.Debug("Controller", "Successfully reconciled %s %s/%s", req.Type, req.Namespace, req.Name)
	m.updateStatus(req.Type, req.Name, req.Namespace, StateSynced, "")
}

// handleReconcileError applies the retry policy to a failed invocation.
func (m *Manager) handleReconcileError(req ReconcileRequest, result ReconcileResult) {
	logging.Warn("Controller", "Reconciliation failed for %s %s/%s: %v",
		req.Type, req.Namespace, req.Name, result.Error)

	// A permanent condition is never retried regardless of the attempt
	// budget.
	if IsPermanent(result.Error) {
		logging.Error("Controller", result.Error,
			"Permanent failure for %s %s/%s, not retrying", req.Type, req.Namespace, req.Name)
		m.updateStatus(req.Type, req.Name, req.Namespace, StateFailed, result.Error.Error())
		return
	}

	if req.Attempt >= m.config.MaxRetries {
		logging.Error("Controller", result.Error,
			"Max retries exceeded for %s %s/%s", req.Type, req.Namespace, req.Name)
		m.updateStatus(req.Type, req.Name, req.Namespace, StateFailed, result.Error.Error())
		return
	}

	m.updateStatus(req.Type, req.Name, req.Namespace, StateError, result.Error.Error())

	req.Attempt++
	req.LastError = result.Error
	m.queue.AddAfter(req, m.config.RetryBackoff)

	logging.Debug("Controller", "Requeuing %s %s/%s after %v (attempt %d)",
		req.Type, req.Namespace, req.Name, m.config.RetryBackoff, req.Attempt)
}

// updateStatus updates the in-memory reconciliation status for a resource.
func (m *Manager) updateStatus(resourceType ResourceType, name, namespace string, state ReconcileState, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := statusKey(resourceType, name, namespace)
	status, ok := m.statusTracker[key]
	if !ok {
		status = &ReconcileStatus{
			ResourceType: resourceType,
			Name:         name,
			Namespace:    namespace,
		}
		m.statusTracker[key] = status
	}

	status.State = state
	status.LastError = errMsg

	switch state {
	case StateSynced:
		now := time.Now()
		status.LastReconcileTime = &now
		status.RetryCount = 0
	case StateError:
		status.RetryCount++
	}
}

// statusKey generates a unique key for status tracking.
func statusKey(resourceType ResourceType, name, namespace string) string {
	return string(resourceType) + "/" + namespace + "/" + name
}

// GetStatus returns the reconciliation status for a resource.
func (m *Manager) GetStatus(resourceType ResourceType, name, namespace string) (*ReconcileStatus, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, ok := m.statusTracker[statusKey(resourceType, name, namespace)]
	return status, ok
}

// GetAllStatuses returns all reconciliation statuses.
func (m *Manager) GetAllStatuses() []ReconcileStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make([]ReconcileStatus, 0, len(m.statusTracker))
	for _, status := range m.statusTracker {
		statuses = append(statuses, *status)
	}
	return statuses
}

// TriggerReconcile manually queues reconciliation for a resource.
func (m *Manager) TriggerReconcile(resourceType ResourceType, name, namespace string, op ChangeOperation) {
	m.handleChangeEvent(ChangeEvent{
		Type:      resourceType,
		Name:      name,
		Namespace: namespace,
		Operation: op,
		Timestamp: time.Now(),
	})
}

// IsRunning returns whether the manager is running.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// GetQueueLength returns the current queue length.
func (m *Manager) GetQueueLength() int {
	return m.queue.Len()
}
