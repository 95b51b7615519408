package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit              []OnInit
	onShutdown          []OnShutdown
	onCustomerCreated   []OnCustomerCreated
	onCustomerUpdated   []OnCustomerUpdated
	onBillGenerated     []OnBillGenerated
	onBillPaid          []OnBillPaid
	onBillOverdue       []OnBillOverdue
	onPaymentRecorded   []OnPaymentRecorded
	onPaymentReconciled []OnPaymentReconciled
	onReminderSent      []OnReminderSent
	onLedgerOutOfSync   []OnLedgerOutOfSync
	invoiceRenderers    map[string]InvoiceRenderer
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:           slog.Default(),
		invoiceRenderers: make(map[string]InvoiceRenderer),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnCustomerCreated); ok {
		r.onCustomerCreated = append(r.onCustomerCreated, v)
	}
	if v, ok := p.(OnCustomerUpdated); ok {
		r.onCustomerUpdated = append(r.onCustomerUpdated, v)
	}
	if v, ok := p.(OnBillGenerated); ok {
		r.onBillGenerated = append(r.onBillGenerated, v)
	}
	if v, ok := p.(OnBillPaid); ok {
		r.onBillPaid = append(r.onBillPaid, v)
	}
	if v, ok := p.(OnBillOverdue); ok {
		r.onBillOverdue = append(r.onBillOverdue, v)
	}
	if v, ok := p.(OnPaymentRecorded); ok {
		r.onPaymentRecorded = append(r.onPaymentRecorded, v)
	}
	if v, ok := p.(OnPaymentReconciled); ok {
		r.onPaymentReconciled = append(r.onPaymentReconciled, v)
	}
	if v, ok := p.(OnReminderSent); ok {
		r.onReminderSent = append(r.onReminderSent, v)
	}
	if v, ok := p.(OnLedgerOutOfSync); ok {
		r.onLedgerOutOfSync = append(r.onLedgerOutOfSync, v)
	}
	if v, ok := p.(InvoiceRenderer); ok {
		r.invoiceRenderers[v.Format()] = v
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnCustomerCreated)(nil)).Elem(), "OnCustomerCreated")
	checkInterface(reflect.TypeOf((*OnCustomerUpdated)(nil)).Elem(), "OnCustomerUpdated")
	checkInterface(reflect.TypeOf((*OnBillGenerated)(nil)).Elem(), "OnBillGenerated")
	checkInterface(reflect.TypeOf((*OnBillPaid)(nil)).Elem(), "OnBillPaid")
	checkInterface(reflect.TypeOf((*OnBillOverdue)(nil)).Elem(), "OnBillOverdue")
	checkInterface(reflect.TypeOf((*OnPaymentRecorded)(nil)).Elem(), "OnPaymentRecorded")
	checkInterface(reflect.TypeOf((*OnPaymentReconciled)(nil)).Elem(), "OnPaymentReconciled")
	checkInterface(reflect.TypeOf((*OnReminderSent)(nil)).Elem(), "OnReminderSent")
	checkInterface(reflect.TypeOf((*OnLedgerOutOfSync)(nil)).Elem(), "OnLedgerOutOfSync")
	checkInterface(reflect.TypeOf((*InvoiceRenderer)(nil)).Elem(), "InvoiceRenderer")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCustomerCreated emits a customer created event.
func (r *Registry) EmitCustomerCreated(ctx context.Context, customer interface{}) {
	r.mu.RLock()
	plugins := r.onCustomerCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCustomerCreated(ctx, customer)
		}); err != nil {
			r.logger.Warn("plugin OnCustomerCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCustomerUpdated emits a customer updated event.
func (r *Registry) EmitCustomerUpdated(ctx context.Context, oldCustomer, newCustomer interface{}) {
	r.mu.RLock()
	plugins := r.onCustomerUpdated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCustomerUpdated(ctx, oldCustomer, newCustomer)
		}); err != nil {
			r.logger.Warn("plugin OnCustomerUpdated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBillGenerated emits a bill generated event.
func (r *Registry) EmitBillGenerated(ctx context.Context, bill interface{}) {
	r.mu.RLock()
	plugins := r.onBillGenerated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBillGenerated(ctx, bill)
		}); err != nil {
			r.logger.Warn("plugin OnBillGenerated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBillPaid emits a bill paid event.
func (r *Registry) EmitBillPaid(ctx context.Context, bill interface{}) {
	r.mu.RLock()
	plugins := r.onBillPaid
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBillPaid(ctx, bill)
		}); err != nil {
			r.logger.Warn("plugin OnBillPaid failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBillOverdue emits a bill overdue event.
func (r *Registry) EmitBillOverdue(ctx context.Context, bill interface{}) {
	r.mu.RLock()
	plugins := r.onBillOverdue
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBillOverdue(ctx, bill)
		}); err != nil {
			r.logger.Warn("plugin OnBillOverdue failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPaymentRecorded emits a payment recorded event.
func (r *Registry) EmitPaymentRecorded(ctx context.Context, payment interface{}) {
	r.mu.RLock()
	plugins := r.onPaymentRecorded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaymentRecorded(ctx, payment)
		}); err != nil {
			r.logger.Warn("plugin OnPaymentRecorded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPaymentReconciled emits a payment reconciled event.
func (r *Registry) EmitPaymentReconciled(ctx context.Context, payment interface{}, fromStatus, toStatus string) {
	r.mu.RLock()
	plugins := r.onPaymentReconciled
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaymentReconciled(ctx, payment, fromStatus, toStatus)
		}); err != nil {
			r.logger.Warn("plugin OnPaymentReconciled failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitReminderSent emits a reminder sent event.
func (r *Registry) EmitReminderSent(ctx context.Context, customer interface{}, daysRemaining int) {
	r.mu.RLock()
	plugins := r.onReminderSent
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnReminderSent(ctx, customer, daysRemaining)
		}); err != nil {
			r.logger.Warn("plugin OnReminderSent failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitLedgerOutOfSync emits a ledger out of sync event.
func (r *Registry) EmitLedgerOutOfSync(ctx context.Context, customerID string, cause error) {
	r.mu.RLock()
	plugins := r.onLedgerOutOfSync
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnLedgerOutOfSync(ctx, customerID, cause)
		}); err != nil {
			r.logger.Warn("plugin OnLedgerOutOfSync failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// GetInvoiceRenderer returns an invoice renderer by format.
func (r *Registry) GetInvoiceRenderer(format string) InvoiceRenderer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.invoiceRenderers[format]
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the billing pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
