package config

import (
	"fmt"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/glimte/intercept-go/contracts"
	"github.com/glimte/intercept-go/interception"
)

// Config declares interceptor pipelines in YAML:
//
//	pipelines:
//	  - type: OrderService
//	    method: PlaceOrder
//	    interceptors:
//	      - type: logging
//	        order: 0
//	      - type: retry
//	        name: critical
//	        order: 10
type Config struct {
	Pipelines []PipelineBinding `yaml:"pipelines"`
}

// PipelineBinding declares the interceptors of one method.
type PipelineBinding struct {
	Type         string               `yaml:"type"`
	Method       string               `yaml:"method"`
	Interceptors []InterceptorBinding `yaml:"interceptors"`
}

// InterceptorBinding declares one interceptor by its configured type alias,
// optional named registration and order.
type InterceptorBinding struct {
	Type  string `yaml:"type"`
	Name  string `yaml:"name"`
	Order int    `yaml:"order"`
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	for i, p := range cfg.Pipelines {
		if p.Type == "" || p.Method == "" {
			return nil, fmt.Errorf("pipeline %d: type and method are required", i)
		}
		for j, ib := range p.Interceptors {
			if ib.Type == "" {
				return nil, fmt.Errorf("pipeline %d interceptor %d: type is required", i, j)
			}
		}
	}

	return &cfg, nil
}

// MethodLookup maps configured type/method names to method descriptors.
type MethodLookup func(typeName, methodName string) (contracts.Method, error)

// Apply registers the configured bindings on a declaration set. Configured
// interceptor type aliases are resolved through the interceptorTypes index.
func (c *Config) Apply(set *interception.DeclarationSet, methods MethodLookup, interceptorTypes map[string]reflect.Type) error {
	for _, binding := range c.Pipelines {
		method, err := methods(binding.Type, binding.Method)
		if err != nil {
			return fmt.Errorf("looking up %s.%s: %w", binding.Type, binding.Method, err)
		}

		decls := make([]interception.InterceptorDeclaration, 0, len(binding.Interceptors))
		for _, ib := range binding.Interceptors {
			t, ok := interceptorTypes[ib.Type]
			if !ok {
				return fmt.Errorf("unknown interceptor type %q for %s.%s", ib.Type, binding.Type, binding.Method)
			}
			decls = append(decls, interception.InterceptorDeclaration{Type: t, Name: ib.Name, Order: ib.Order})
		}

		if err := set.Declare(method, decls...); err != nil {
			return fmt.Errorf("declaring interceptors for %s.%s: %w", binding.Type, binding.Method, err)
		}
	}

	return nil
}
