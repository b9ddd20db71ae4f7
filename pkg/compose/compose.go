// Package compose assembles a client facade from independently attachable
// namespaces. Each capability binds itself onto the host under a declared
// name; name collisions fail loudly instead of silently overwriting.
package compose

import (
	xerrors "OpenWeb3-Client/internal/errors"
	"OpenWeb3-Client/internal/manager"
)

// Host is the surface a capability attaches to. The facade implements it,
// and so does any namespace that accepts submodules of its own.
type Host interface {
	// Bind registers a namespace under the given name. Binding an already
	// taken name must fail rather than overwrite.
	Bind(name string, module any) error

	// Resolve returns the namespace previously bound under the name.
	Resolve(name string) (any, bool)

	// Coordinator exposes the request manager attached namespaces dispatch
	// through.
	Coordinator() *manager.Manager
}

// Capability is anything that can attach itself to a host.
type Capability interface {
	Attach(host Host, name string) error
}

// SubmoduleSpec declares one nested namespace.
type SubmoduleSpec struct {
	Name   string
	Module Capability
}

// ModuleSpec declares one top-level namespace and its submodules.
type ModuleSpec struct {
	Name       string
	Module     Capability
	Submodules []SubmoduleSpec
}

// Compose attaches every spec to the host in input order, then attaches
// declared submodules to the freshly bound namespace. It validates name
// uniqueness up front so no partial attach happens on a duplicate list.
// Composition runs once per facade; there is no detach.
func Compose(host Host, specs []ModuleSpec) error {
	if host == nil {
		return xerrors.New(xerrors.CodeComposition, "compose requires a host")
	}

	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if spec.Name == "" {
			return xerrors.New(xerrors.CodeComposition, "module name cannot be empty")
		}
		if spec.Module == nil {
			return xerrors.Newf(xerrors.CodeComposition, "module %s has no implementation", spec.Name)
		}
		if _, dup := seen[spec.Name]; dup {
			return xerrors.Newf(xerrors.CodeComposition, "duplicate module name %s", spec.Name)
		}
		seen[spec.Name] = struct{}{}

		subSeen := make(map[string]struct{}, len(spec.Submodules))
		for _, sub := range spec.Submodules {
			if sub.Name == "" {
				return xerrors.Newf(xerrors.CodeComposition, "module %s declares a submodule without a name", spec.Name)
			}
			if sub.Module == nil {
				return xerrors.Newf(xerrors.CodeComposition, "submodule %s.%s has no implementation", spec.Name, sub.Name)
			}
			if _, dup := subSeen[sub.Name]; dup {
				return xerrors.Newf(xerrors.CodeComposition, "duplicate submodule name %s under %s", sub.Name, spec.Name)
			}
			subSeen[sub.Name] = struct{}{}
		}
	}

	for _, spec := range specs {
		if err := spec.Module.Attach(host, spec.Name); err != nil {
			return xerrors.Wrap(xerrors.CodeComposition, err, "attach module "+spec.Name)
		}
		if len(spec.Submodules) == 0 {
			continue
		}

		bound, ok := host.Resolve(spec.Name)
		if !ok {
			return xerrors.Newf(xerrors.CodeComposition, "module %s did not bind itself under its declared name", spec.Name)
		}
		subHost, ok := bound.(Host)
		if !ok {
			return xerrors.Newf(xerrors.CodeComposition, "module %s cannot host submodules", spec.Name)
		}
		for _, sub := range spec.Submodules {
			if err := sub.Module.Attach(subHost, sub.Name); err != nil {
				return xerrors.Wrap(xerrors.CodeComposition, err, "attach submodule "+spec.Name+"."+sub.Name)
			}
		}
	}
	return nil
}
