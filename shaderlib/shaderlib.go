// Package shaderlib holds the shared WGSL shader modules layers build on
// and assembles them with a layer's stages into one WGSL module.
//
// Modules are plain WGSL snippets that declare their own bindings and
// functions. A module lists the modules it depends on; Assemble emits each
// module once, dependencies first, followed by the vertex and fragment
// sources.
package shaderlib

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/gogpu/geolayer"
	"github.com/gogpu/naga"
)

//go:embed shaders/project.wgsl
var projectSource string

//go:embed shaders/picking.wgsl
var pickingSource string

var (
	// ErrUnknownModule is returned when a program references a module that
	// is not registered.
	ErrUnknownModule = errors.New("shaderlib: unknown shader module")

	// ErrModuleCycle is returned when module dependencies form a cycle.
	ErrModuleCycle = errors.New("shaderlib: shader module dependency cycle")

	// ErrDuplicateModule is returned by Register for a taken name.
	ErrDuplicateModule = errors.New("shaderlib: shader module already registered")
)

// Module is a named WGSL snippet.
type Module struct {
	Name         string
	Source       string
	Dependencies []string
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Module{}
)

func init() {
	mustRegister(Module{Name: geolayer.ModuleProject, Source: projectSource})
	mustRegister(Module{Name: geolayer.ModulePicking, Source: pickingSource})
}

func mustRegister(m Module) {
	if err := Register(m); err != nil {
		panic(err)
	}
}

// Register adds a module. Names are unique.
func Register(m Module) error {
	if m.Name == "" {
		return fmt.Errorf("shaderlib: module name is empty")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[m.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateModule, m.Name)
	}
	m.Dependencies = slices.Clone(m.Dependencies)
	registry[m.Name] = m
	return nil
}

// Unregister removes a module. Built-in modules can be removed too.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, name)
}

// Lookup returns a registered module.
func Lookup(name string) (Module, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	m, ok := registry[name]
	return m, ok
}

// Modules returns the sorted names of all registered modules.
func Modules() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve orders the requested modules and their dependencies so that
// every module follows the modules it depends on. Each module appears
// once.
func Resolve(names []string) ([]Module, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int)
	var order []Module

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %s", ErrModuleCycle, strings.Join(append(path, name), " -> "))
		}
		m, ok := registry[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownModule, name)
		}
		state[name] = visiting
		for _, dep := range m.Dependencies {
			if err := visit(dep, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = done
		order = append(order, m)
		return nil
	}

	for _, name := range names {
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Assemble returns a single WGSL module holding the program's modules
// followed by its vertex and fragment sources.
func Assemble(src geolayer.ShaderSource) (string, error) {
	mods, err := Resolve(src.Modules)
	if err != nil {
		return "", fmt.Errorf("assemble %s: %w", src.Name, err)
	}

	var sb strings.Builder
	if src.Name != "" {
		fmt.Fprintf(&sb, "// program: %s\n\n", src.Name)
	}
	for _, m := range mods {
		fmt.Fprintf(&sb, "// module: %s\n", m.Name)
		sb.WriteString(m.Source)
		sb.WriteString("\n")
	}
	sb.WriteString("// vertex\n")
	sb.WriteString(src.VS)
	sb.WriteString("\n// fragment\n")
	sb.WriteString(src.FS)
	return sb.String(), nil
}

// Compile translates WGSL into SPIR-V words.
func Compile(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("shaderlib: compile: %w", err)
	}

	// SPIR-V is a stream of little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// Build assembles and compiles a program.
func Build(src geolayer.ShaderSource) (wgsl string, spirv []uint32, err error) {
	wgsl, err = Assemble(src)
	if err != nil {
		return "", nil, err
	}
	spirv, err = Compile(wgsl)
	if err != nil {
		return wgsl, nil, fmt.Errorf("build %s: %w", src.Name, err)
	}
	return wgsl, spirv, nil
}
