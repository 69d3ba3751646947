// Package native is the port-management layer behind the scripting-side
// proxy: a registry of open ports keyed by opaque ids, the I/O and
// control-line operations on those ids, and the flat Ops surface the proxy
// calls.
package native

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/allbin/serialhost"
	"github.com/allbin/serialhost/internal/slotmap"
	"go.uber.org/zap"
)

// OpenFunc opens a device; serial.Open satisfies it
type OpenFunc func(path string, opts ...serial.Option) (serial.Port, error)

// Registry owns every open port and resolves ids to them.
// It is safe for concurrent use.
type Registry struct {
	handles  *slotmap.Map[*Handle]
	open     OpenFunc
	logger   *zap.Logger
	portOpts []serial.Option
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithOpener replaces serial.Open, mainly for tests
func WithOpener(open OpenFunc) RegistryOption {
	return func(r *Registry) {
		r.open = open
	}
}

// WithLogger sets the logger used for open/close events
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithPortOptions sets options applied to every port opened by the registry.
// The baud rate passed to Open always wins.
func WithPortOptions(opts ...serial.Option) RegistryOption {
	return func(r *Registry) {
		r.portOpts = append(r.portOpts, opts...)
	}
}

// NewRegistry returns an empty registry
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		handles: slotmap.New[*Handle](),
		open:    serial.Open,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open opens path raw 8N1 at baudRate and returns a fresh id for it
func (r *Registry) Open(path string, baudRate uint32) (HandleID, error) {
	if baudRate == 0 || baudRate > math.MaxInt32 {
		return 0, &serial.Error{
			Kind: serial.KindConfiguration,
			Op:   "open",
			Path: path,
			Err:  fmt.Errorf("%w: %d", serial.ErrInvalidBaudRate, baudRate),
		}
	}

	opts := append(slices.Clone(r.portOpts), serial.WithBaudRate(int(baudRate)))
	port, err := r.open(path, opts...)
	if err != nil {
		if serial.KindOf(err) == serial.KindNone {
			err = &serial.Error{Kind: serial.KindOpen, Op: "open", Path: path, Err: err}
		}
		return 0, err
	}

	h := &Handle{port: port, path: path, baud: baudRate}
	id, err := r.handles.Insert(h)
	if err != nil {
		port.Close()
		return 0, &serial.Error{Kind: serial.KindOpen, Op: "open", Path: path, Err: err}
	}

	r.logger.Debug("port opened",
		zap.String("path", path),
		zap.Uint32("id", uint32(id)),
		zap.Uint32("baud", baudRate))
	return HandleID(id), nil
}

// Close forgets id and releases its device. The id is invalid afterwards
// even if releasing the device fails.
func (r *Registry) Close(id HandleID) error {
	h, ok := r.handles.Remove(slotmap.ID(id))
	if !ok {
		return invalidHandle("close", id)
	}

	if err := h.port.Close(); err != nil {
		r.logger.Warn("closing port failed",
			zap.String("path", h.path),
			zap.Uint32("id", uint32(id)),
			zap.Error(err))
		return portError("close", h, err)
	}

	r.logger.Debug("port closed",
		zap.String("path", h.path),
		zap.Uint32("id", uint32(id)))
	return nil
}

// Resolve returns the handle registered under id
func (r *Registry) Resolve(id HandleID) (*Handle, error) {
	return r.lookup("resolve", id)
}

// Len returns the number of open handles
func (r *Registry) Len() int {
	return r.handles.Len()
}

// CloseAll closes every open handle and returns the joined close errors
func (r *Registry) CloseAll() error {
	var errs []error
	for id, h := range r.handles.Drain() {
		if err := h.port.Close(); err != nil {
			r.logger.Warn("closing port failed",
				zap.String("path", h.path),
				zap.Uint32("id", uint32(id)),
				zap.Error(err))
			errs = append(errs, portError("close", h, err))
		}
	}
	return errors.Join(errs...)
}

// lookup resolves id, reporting a miss under the caller's operation name
func (r *Registry) lookup(op string, id HandleID) (*Handle, error) {
	h, ok := r.handles.Get(slotmap.ID(id))
	if !ok {
		return nil, invalidHandle(op, id)
	}
	return h, nil
}

// portError gives a device error a kind if the port did not attach one
func portError(op string, h *Handle, err error) error {
	if err == nil || serial.KindOf(err) != serial.KindNone {
		return err
	}
	kind := serial.KindIO
	if errors.Is(err, serial.ErrPortClosed) {
		kind = serial.KindInvalidHandle
	}
	return &serial.Error{Kind: kind, Op: op, Path: h.path, Err: err}
}
