// Package modulemanager registers and loads the feature modules that make up
// the service. Loading runs in three phases across all modules: Migrate,
// RegisterServices, then Init. Because every service is registered before any
// module initializes, modules may depend on each other's services without
// caring about load order.
package modulemanager

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/camarr-app/camarr/internal/logger"
)

// Module is the contract every feature module implements.
type Module interface {
	// ID is the stable module identifier, e.g. "system.cameras".
	ID() string
	// Name is the human-readable module name.
	Name() string
	// Core marks modules that must load for the service to function.
	Core() bool
	// Migrate brings the module's database schema up to date.
	Migrate(db *gorm.DB) error
	// Init wires the module using services registered by other modules.
	Init() error
}

// ServiceRegistrar is implemented by modules that publish services for other
// modules to consume. It runs after all migrations and before any Init.
type ServiceRegistrar interface {
	RegisterServices() error
}

// RouteRegistrar is implemented by modules that expose HTTP routes.
type RouteRegistrar interface {
	RegisterRoutes(router *gin.Engine)
}

// Registry tracks registered modules and drives the load phases.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
	loaded  bool
}

var globalRegistry = &Registry{
	modules: make(map[string]Module),
}

// Register adds a module to the global registry. Modules call this from
// their package init.
func Register(m Module) {
	globalRegistry.Register(m)
}

// LoadAll runs the load phases for every registered module.
func LoadAll(db *gorm.DB) error {
	return globalRegistry.LoadAll(db)
}

// RegisterRoutes mounts the routes of every module that exposes them.
func RegisterRoutes(router *gin.Engine) {
	globalRegistry.RegisterRoutes(router)
}

// GetModule returns a registered module by ID.
func GetModule(id string) (Module, bool) {
	return globalRegistry.GetModule(id)
}

// ListModules returns the registered modules sorted by ID.
func ListModules() []Module {
	return globalRegistry.ListModules()
}

// Register adds a module to the registry.
func (r *Registry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[m.ID()] = m
	logger.Info("📦 Module registered: %s (%s)", m.Name(), m.ID())
}

// GetModule returns a registered module by ID.
func (r *Registry) GetModule(id string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[id]
	return m, ok
}

// ListModules returns the registered modules sorted by ID.
func (r *Registry) ListModules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked()
}

func (r *Registry) sortedLocked() []Module {
	mods := make([]Module, 0, len(r.modules))
	for _, m := range r.modules {
		mods = append(mods, m)
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].ID() < mods[j].ID() })
	return mods
}

// LoadAll migrates, registers services for, and initializes every module.
// A core module failure aborts the load; optional module failures are
// logged and skipped.
func (r *Registry) LoadAll(db *gorm.DB) error {
	r.mu.Lock()
	if r.loaded {
		r.mu.Unlock()
		return fmt.Errorf("modules already loaded")
	}
	r.loaded = true
	mods := r.sortedLocked()
	r.mu.Unlock()

	logger.Info("🚀 Loading %d modules", len(mods))

	for _, m := range mods {
		if err := m.Migrate(db); err != nil {
			if m.Core() {
				return fmt.Errorf("core module %s migration failed: %w", m.ID(), err)
			}
			logger.Warn("optional module %s migration failed: %v", m.ID(), err)
		}
	}

	for _, m := range mods {
		sr, ok := m.(ServiceRegistrar)
		if !ok {
			continue
		}
		if err := sr.RegisterServices(); err != nil {
			if m.Core() {
				return fmt.Errorf("core module %s service registration failed: %w", m.ID(), err)
			}
			logger.Warn("optional module %s service registration failed: %v", m.ID(), err)
		}
	}

	for _, m := range mods {
		if err := m.Init(); err != nil {
			if m.Core() {
				return fmt.Errorf("core module %s init failed: %w", m.ID(), err)
			}
			logger.Warn("optional module %s init failed: %v", m.ID(), err)
			continue
		}
		logger.Info("✅ Module loaded: %s", m.ID())
	}

	return nil
}

// RegisterRoutes mounts routes for every module that exposes them.
func (r *Registry) RegisterRoutes(router *gin.Engine) {
	for _, m := range r.ListModules() {
		if rr, ok := m.(RouteRegistrar); ok {
			rr.RegisterRoutes(router)
			logger.Info("🌐 Routes registered for module: %s", m.ID())
		}
	}
}

// Reset clears registry state. Tests use this between module loads.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules = make(map[string]Module)
	r.loaded = false
}
