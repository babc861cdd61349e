// Package orchestrator is the single entry point the rest of the
// application uses to act on devices. It resolves the driver of a record,
// serialises CLI work per physical device, drives the ONU registration
// lifecycle and writes locator changes back to the device store.
package orchestrator

import (
	"context"
	"time"

	"github.com/nanoncore/nano-devctl/lock"
	"github.com/nanoncore/nano-devctl/logging"
	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/registry"
	"github.com/nanoncore/nano-devctl/templates"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/sirupsen/logrus"
)

// Orchestrator runs named operations against device records.
type Orchestrator struct {
	store      DeviceStore
	transport  types.Transport
	registry   *registry.Registry
	templates  *templates.Set
	locker     lock.Locker
	notifier   Notifier
	recipients []string
	metrics    *Metrics
	log        *logrus.Entry
	chunkSize  int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRegistry replaces the process-wide driver registry.
func WithRegistry(r *registry.Registry) Option {
	return func(o *Orchestrator) { o.registry = r }
}

// WithTemplates replaces the process-wide template set.
func WithTemplates(s *templates.Set) Option {
	return func(o *Orchestrator) { o.templates = s }
}

// WithLocker replaces the in-process device lock.
func WithLocker(l lock.Locker) Option {
	return func(o *Orchestrator) { o.locker = l }
}

// WithNotifier sends lifecycle alerts to recipients through n.
func WithNotifier(n Notifier, recipients ...string) Option {
	return func(o *Orchestrator) {
		o.notifier = n
		o.recipients = recipients
	}
}

// WithMetrics records operation outcomes on m.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithLogger sets the base log entry.
func WithLogger(l *logrus.Entry) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithChunkSize overrides the chunk size announced by ONU scans.
func WithChunkSize(n int) Option {
	return func(o *Orchestrator) { o.chunkSize = n }
}

// New returns an orchestrator reading records from store and reaching
// devices through t.
func New(store DeviceStore, t types.Transport, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:     store,
		transport: t,
		registry:  registry.Default(),
		templates: templates.Default(),
		locker:    lock.NewMemory(),
		log:       logging.Entry(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// call is the state of one Run.
type call struct {
	o    *Orchestrator
	dev  *model.Device
	drv  types.Driver
	args Args
	log  *logrus.Entry

	// seen is the locator read when the call started
	seen string

	// parent is the driver of dev.Parent, built on first use
	parent types.OLTDriver
}

// Run executes operation of capability on the device with id deviceID.
// The result is JSON-shaped; streaming scans return *types.ONUStream.
func (o *Orchestrator) Run(ctx context.Context, deviceID int64, capability, operation string, args Args) (result interface{}, err error) {
	start := time.Now()
	log := o.log.WithFields(logrus.Fields{"device_id": deviceID, "capability": capability, "operation": operation})
	defer func() {
		o.metrics.observe(capability, operation, start, err)
		if err != nil {
			err = types.WithOp(operation, err)
			entry := log.WithError(err).WithField("kind", types.KindOf(err).String())
			switch types.KindOf(err) {
			case types.KindTimeout, types.KindConnection, types.KindAuthFailed:
				entry.Error("operation failed")
			default:
				entry.Warn("operation failed")
			}
			return
		}
		log.WithField("elapsed", time.Since(start)).Info("operation finished")
	}()

	op, err := lookupOperation(types.Family(capability), operation)
	if err != nil {
		return nil, err
	}
	dev, err := o.load(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	entry, err := o.registry.Resolve(dev.Type)
	if err != nil {
		return nil, err
	}
	if entry.Family != types.Family(capability) {
		return nil, types.Errorf(types.KindCapabilityMismatch, "%s is a %s, %s was requested", dev, entry.Family, capability)
	}
	drv, err := entry.New(dev, o.transport)
	if err != nil {
		return nil, err
	}
	if op.registered && !dev.Registered() {
		return nil, types.Errorf(types.KindNotRegistered, "%s has no locator", dev)
	}

	log = log.WithFields(logging.WithDevice(dev).Data)
	log.Info("operation started")
	c := &call{o: o, dev: dev, drv: drv, args: args, log: log, seen: dev.SNMPExtra}

	if op.locked {
		target := dev
		if op.family == types.FamilyONU {
			if dev.Parent == nil {
				return nil, types.Errorf(types.KindConfiguration, "%s has no parent olt", dev)
			}
			target = dev.Parent
		}
		unlock, err := o.acquire(ctx, target, log)
		if err != nil {
			return nil, err
		}
		defer func() {
			if uerr := unlock(); uerr != nil {
				log.WithError(uerr).Warn("releasing device lock")
			}
		}()
	}
	return op.run(ctx, c)
}

// load reads a record and its parent.
func (o *Orchestrator) load(ctx context.Context, id int64) (*model.Device, error) {
	dev, err := o.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if dev.HasParent() && dev.Parent == nil {
		parent, err := o.store.GetByID(ctx, dev.ParentID)
		if err != nil {
			return nil, types.Wrap(types.KindConfiguration, err, "%s: parent %d", dev, dev.ParentID)
		}
		dev.Parent = parent
	}
	return dev, nil
}

func (o *Orchestrator) acquire(ctx context.Context, dev *model.Device, log *logrus.Entry) (lock.Unlock, error) {
	key := lock.DeviceKey(dev)
	unlock, err := o.locker.TryLock(ctx, key)
	if err != nil {
		if types.KindOf(err) == types.KindProcessLocked {
			o.metrics.contended(key)
			log.WithField("lock", key).Warn("device is locked by another operation")
		}
		return nil, err
	}
	return unlock, nil
}

// persist writes a new locator for dev when the stored record still
// carries seen.
func (o *Orchestrator) persist(ctx context.Context, dev *model.Device, seen, locator string) error {
	cur, err := o.store.GetByID(ctx, dev.ID)
	if err != nil {
		return err
	}
	if cur.SNMPExtra != seen {
		return types.Errorf(types.KindValidation, "%s: record changed concurrently", dev)
	}
	if err := o.registry.ValidateLocator(cur.Type, locator); err != nil {
		return err
	}
	return o.store.UpdateFields(ctx, cur, map[string]interface{}{FieldSNMPExtra: locator})
}

// notify delivers an operator alert. Failures are only logged.
func (o *Orchestrator) notify(ctx context.Context, log *logrus.Entry, text string) {
	if o.notifier == nil || len(o.recipients) == 0 {
		return
	}
	if err := o.notifier.SendNotification(ctx, o.recipients, text); err != nil {
		log.WithError(err).Warn("notification not delivered")
	}
}

// template resolves a template short code.
func (o *Orchestrator) template(code string) (types.Template, error) {
	t, err := o.templates.Lookup(code)
	if err != nil {
		return nil, types.Errorf(types.KindValidation, "unknown template %q", code)
	}
	return t, nil
}

// parentOLT returns the driver of the ONU's parent. It is built once per
// call.
func (c *call) parentOLT() (types.OLTDriver, error) {
	if c.parent != nil {
		return c.parent, nil
	}
	if c.dev.Parent == nil {
		return nil, types.Errorf(types.KindConfiguration, "%s has no parent olt", c.dev)
	}
	drv, err := c.o.registry.NewDriver(c.dev.Parent, c.o.transport)
	if err != nil {
		return nil, err
	}
	olt, err := registry.AsOLT(drv)
	if err != nil {
		return nil, err
	}
	c.parent = olt
	return olt, nil
}
