package manager

import (
	"sync"

	xerrors "OpenWeb3-Client/internal/errors"
)

// Middleware is one named layer of the onion. Wrap receives the next layer
// and returns the wrapped call; a layer may inspect, rewrite, short-circuit
// or forward the request.
type Middleware struct {
	Name string
	Wrap func(next CallFunc) CallFunc
}

// Onion is the ordered interceptor chain around a provider. Index zero is
// the outermost layer: it sees requests first and responses last.
type Onion struct {
	mu      sync.RWMutex
	layers  []Middleware
	version uint64
}

// NewOnion builds an onion from outermost to innermost middleware.
func NewOnion(layers ...Middleware) (*Onion, error) {
	o := &Onion{}
	for _, layer := range layers {
		if err := o.Add(layer); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *Onion) indexOf(name string) int {
	for i, layer := range o.layers {
		if layer.Name == name {
			return i
		}
	}
	return -1
}

func (o *Onion) validate(layer Middleware) error {
	if layer.Name == "" {
		return xerrors.New(xerrors.CodeInvalidArgument, "middleware name cannot be empty")
	}
	if layer.Wrap == nil {
		return xerrors.Newf(xerrors.CodeInvalidArgument, "middleware %s has no wrap function", layer.Name)
	}
	if o.indexOf(layer.Name) >= 0 {
		return xerrors.Newf(xerrors.CodeInvalidArgument, "middleware %s is already registered", layer.Name)
	}
	return nil
}

// Add registers a middleware as the new outermost layer.
func (o *Onion) Add(layer Middleware) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.validate(layer); err != nil {
		return err
	}
	o.layers = append([]Middleware{layer}, o.layers...)
	o.version++
	return nil
}

// Append registers a middleware as the new innermost layer, closest to the
// provider.
func (o *Onion) Append(layer Middleware) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.validate(layer); err != nil {
		return err
	}
	o.layers = append(o.layers, layer)
	o.version++
	return nil
}

// InjectBefore inserts a middleware immediately outside the named layer.
func (o *Onion) InjectBefore(anchor string, layer Middleware) error {
	return o.inject(anchor, layer, 0)
}

// InjectAfter inserts a middleware immediately inside the named layer.
func (o *Onion) InjectAfter(anchor string, layer Middleware) error {
	return o.inject(anchor, layer, 1)
}

func (o *Onion) inject(anchor string, layer Middleware, offset int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.validate(layer); err != nil {
		return err
	}
	at := o.indexOf(anchor)
	if at < 0 {
		return xerrors.Newf(xerrors.CodeInvalidArgument, "middleware %s is not registered", anchor)
	}
	at += offset
	o.layers = append(o.layers[:at], append([]Middleware{layer}, o.layers[at:]...)...)
	o.version++
	return nil
}

// Replace swaps the named middleware in place, keeping its position.
func (o *Onion) Replace(name string, layer Middleware) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if layer.Wrap == nil {
		return xerrors.Newf(xerrors.CodeInvalidArgument, "middleware %s has no wrap function", layer.Name)
	}
	at := o.indexOf(name)
	if at < 0 {
		return xerrors.Newf(xerrors.CodeInvalidArgument, "middleware %s is not registered", name)
	}
	if layer.Name != name && o.indexOf(layer.Name) >= 0 {
		return xerrors.Newf(xerrors.CodeInvalidArgument, "middleware %s is already registered", layer.Name)
	}
	o.layers[at] = layer
	o.version++
	return nil
}

// Remove deletes the named middleware.
func (o *Onion) Remove(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	at := o.indexOf(name)
	if at < 0 {
		return xerrors.Newf(xerrors.CodeInvalidArgument, "middleware %s is not registered", name)
	}
	o.layers = append(o.layers[:at], o.layers[at+1:]...)
	o.version++
	return nil
}

// Names lists the registered middleware names, outermost first.
func (o *Onion) Names() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	names := make([]string, len(o.layers))
	for i, layer := range o.layers {
		names[i] = layer.Name
	}
	return names
}

// Len reports the number of layers.
func (o *Onion) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.layers)
}

// Version increases with every mutation so callers can cache composed chains.
func (o *Onion) Version() uint64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.version
}

// apply wraps the base call with every layer, innermost first, so that the
// layer at index zero ends up outermost.
func (o *Onion) apply(base CallFunc) CallFunc {
	o.mu.RLock()
	defer o.mu.RUnlock()
	wrapped := base
	for i := len(o.layers) - 1; i >= 0; i-- {
		wrapped = o.layers[i].Wrap(wrapped)
	}
	return wrapped
}
