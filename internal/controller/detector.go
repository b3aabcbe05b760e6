package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	toolscache "k8s.io/client-go/tools/cache"
	"sigs.k8s.io/controller-runtime/pkg/cache"
	"sigs.k8s.io/controller-runtime/pkg/client"

	emailsenderv1 "emailsender/pkg/apis/emailsender/v1"
	"emailsender/pkg/logging"
)

// KubernetesDetector watches EmailSenderConfig and Email resources via
// controller-runtime informers and forwards create/update/delete
// observations as change events.
type KubernetesDetector struct {
	mu sync.RWMutex

	// restConfig is the Kubernetes REST configuration
	restConfig *rest.Config

	// namespace is the namespace to watch (empty for all namespaces)
	namespace string

	// cache is the controller-runtime cache backing the informers
	cache cache.Cache

	// scheme is the runtime scheme with registered types
	scheme *runtime.Scheme

	// changeChan is the channel change events are sent to
	changeChan chan<- ChangeEvent

	ctx        context.Context
	cancelFunc context.CancelFunc
	running    bool

	// registrations tracks registered event handlers for cleanup
	registrations []toolscache.ResourceEventHandlerRegistration
}

// NewKubernetesDetector creates a detector for the operator's two resource
// kinds. An empty namespace watches all namespaces.
func NewKubernetesDetector(restConfig *rest.Config, namespace string) *KubernetesDetector {
	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(emailsenderv1.AddToScheme(scheme))

	return &KubernetesDetector{
		restConfig: restConfig,
		namespace:  namespace,
		scheme:     scheme,
	}
}

// watchedObjects maps each resource type to a zero value of its typed
// object, which the cache uses to select the informer.
func watchedObjects() map[ResourceType]client.Object {
	return map[ResourceType]client.Object{
		ResourceTypeSenderConfig: &emailsenderv1.EmailSenderConfig{},
		ResourceTypeEmail:        &emailsenderv1.Email{},
	}
}

// Start begins watching. It blocks until the informer cache has synced.
func (d *KubernetesDetector) Start(ctx context.Context, changes chan<- ChangeEvent) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return nil
	}

	d.ctx, d.cancelFunc = context.WithCancel(ctx)
	d.changeChan = changes
	d.running = true
	d.mu.Unlock()

	cacheOpts := cache.Options{
		Scheme: d.scheme,
	}
	if d.namespace != "" {
		cacheOpts.DefaultNamespaces = map[string]cache.Config{
			d.namespace: {},
		}
	}

	c, err := cache.New(d.restConfig, cacheOpts)
	if err != nil {
		d.fail()
		return fmt.Errorf("failed to create cache: %w", err)
	}

	d.mu.Lock()
	d.cache = c
	d.mu.Unlock()

	for resourceType, obj := range watchedObjects() {
		informer, err := c.GetInformer(d.ctx, obj)
		if err != nil {
			d.fail()
			return fmt.Errorf("failed to get informer for %s: %w", resourceType, err)
		}

		registration, err := informer.AddEventHandler(d.eventHandler(resourceType))
		if err != nil {
			d.fail()
			return fmt.Errorf("failed to add event handler for %s: %w", resourceType, err)
		}

		d.mu.Lock()
		d.registrations = append(d.registrations, registration)
		d.mu.Unlock()
	}

	go func() {
		if err := c.Start(d.ctx); err != nil {
			logging.Error("KubernetesDetector", err, "Cache stopped with error")
		}
	}()

	if !c.WaitForCacheSync(d.ctx) {
		d.fail()
		return fmt.Errorf("failed to sync cache")
	}

	logging.Info("KubernetesDetector", "Started watching resources in namespace: %s", d.namespaceDisplay())
	return nil
}

// Stop gracefully stops the detector.
func (d *KubernetesDetector) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}
	d.running = false

	if d.cancelFunc != nil {
		d.cancelFunc()
	}
	d.registrations = nil
	return nil
}

func (d *KubernetesDetector) fail() {
	d.mu.Lock()
	d.running = false
	d.mu.Unlock()
}

// eventHandler converts informer callbacks for one resource type into
// change events.
func (d *KubernetesDetector) eventHandler(resourceType ResourceType) toolscache.ResourceEventHandler {
	return toolscache.ResourceEventHandlerFuncs{
		AddFunc: func(obj interface{}) {
			d.emit(resourceType, OperationCreate, obj)
		},
		UpdateFunc: func(oldObj, newObj interface{}) {
			d.emit(resourceType, OperationUpdate, newObj)
		},
		DeleteFunc: func(obj interface{}) {
			d.emit(resourceType, OperationDelete, obj)
		},
	}
}

func (d *KubernetesDetector) emit(resourceType ResourceType, op ChangeOperation, obj interface{}) {
	clientObj, ok := obj.(client.Object)
	if !ok {
		// Tombstones arrive on delete when the informer missed the
		// final state.
		tombstone, isTombstone := obj.(toolscache.DeletedFinalStateUnknown)
		if !isTombstone {
			logging.Warn("KubernetesDetector", "Failed to extract metadata from %s event", op)
			return
		}
		clientObj, ok = tombstone.Obj.(client.Object)
		if !ok {
			logging.Warn("KubernetesDetector", "Failed to extract metadata from tombstone")
			return
		}
	}

	event := ChangeEvent{
		Type:      resourceType,
		Name:      clientObj.GetName(),
		Namespace: clientObj.GetNamespace(),
		Operation: op,
		Timestamp: time.Now(),
	}

	d.mu.RLock()
	changes := d.changeChan
	d.mu.RUnlock()

	if changes == nil {
		return
	}

	select {
	case changes <- event:
	default:
		logging.Warn("KubernetesDetector", "Change channel full, dropping event for %s %s/%s",
			event.Type, event.Namespace, event.Name)
	}
}

func (d *KubernetesDetector) namespaceDisplay() string {
	if d.namespace == "" {
		return "all namespaces"
	}
	return d.namespace
}
