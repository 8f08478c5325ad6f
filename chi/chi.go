// Package chi integrates the bean factory with the Chi router.
//
// The middleware gives every request its own child factory delegating to
// the application factory, so request-scoped beans resolve against
// application singletons while staying isolated between requests.
//
// Example usage:
//
//	factory := beans.New()
//
//	r := chi.NewRouter()
//	r.Use(beanschi.Middleware(factory))
//
//	r.Get("/users/{id}", func(w http.ResponseWriter, req *http.Request) {
//	    svc, err := beanschi.Resolve[*UserService](req)
//	    ...
//	})
package chi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"

	chirouter "github.com/go-chi/chi/v5"

	"github.com/harborlight/beans"
)

type contextKey struct{}

// ErrNoRequestFactory indicates the request passed through no scope
// middleware, so no factory is attached to its context.
var ErrNoRequestFactory = errors.New("no request factory on context")

// Config holds the configuration for the request-scope middleware.
type Config struct {
	// ErrorHandler is called when the request factory cannot be prepared.
	// If nil, a default handler returning 500 Internal Server Error is used.
	ErrorHandler func(http.ResponseWriter, *http.Request, error)

	// CloseErrorHandler is called when closing the request factory fails.
	// If nil, errors are logged using slog.
	CloseErrorHandler func(error)

	// Setup functions run against the fresh request factory before the
	// handler. They can register request-specific beans.
	Setup []func(*beans.Factory, *http.Request) error
}

// Option configures the request-scope middleware.
type Option func(*Config)

// WithErrorHandler sets the handler for request factory preparation
// failures.
func WithErrorHandler(h func(http.ResponseWriter, *http.Request, error)) Option {
	return func(c *Config) { c.ErrorHandler = h }
}

// WithCloseErrorHandler sets the handler for request factory close
// failures.
func WithCloseErrorHandler(h func(error)) Option {
	return func(c *Config) { c.CloseErrorHandler = h }
}

// WithSetup adds a setup function run against each request factory.
// Multiple setups execute in the order they are added.
func WithSetup(fn func(*beans.Factory, *http.Request) error) Option {
	return func(c *Config) { c.Setup = append(c.Setup, fn) }
}

// Middleware creates a child factory per request, stores it on the request
// context, and closes it when the handler returns. The request itself is
// registered as a resolvable dependency, so request-scoped constructors
// may accept an *http.Request parameter.
func Middleware(parent *beans.Factory, opts ...Option) func(http.Handler) http.Handler {
	cfg := &Config{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
	if cfg.CloseErrorHandler == nil {
		cfg.CloseErrorHandler = func(err error) {
			slog.Error("failed to close request factory", "error", err)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			child := beans.New(beans.WithParentFactory(parent))
			defer func() {
				if err := child.Close(); err != nil {
					cfg.CloseErrorHandler(err)
				}
			}()

			if err := child.RegisterResolvableDependency(reflect.TypeOf(r), r); err != nil {
				cfg.ErrorHandler(w, r, err)
				return
			}
			for _, setup := range cfg.Setup {
				if err := setup(child, r); err != nil {
					cfg.ErrorHandler(w, r, err)
					return
				}
			}

			ctx := context.WithValue(r.Context(), contextKey{}, child)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewRouter creates a Chi router with the request-scope middleware already
// installed.
func NewRouter(parent *beans.Factory, opts ...Option) chirouter.Router {
	r := chirouter.NewRouter()
	r.Use(Middleware(parent, opts...))
	return r
}

// FromContext returns the request factory stored on the context.
func FromContext(ctx context.Context) (*beans.Factory, bool) {
	f, ok := ctx.Value(contextKey{}).(*beans.Factory)
	return f, ok
}

// Resolve resolves a bean of type T from the request's factory.
func Resolve[T any](r *http.Request) (T, error) {
	f, ok := FromContext(r.Context())
	if !ok {
		var zero T
		return zero, ErrNoRequestFactory
	}
	return beans.Get[T](f)
}

// ResolveNamed resolves the named bean from the request's factory.
func ResolveNamed[T any](r *http.Request, name string) (T, error) {
	f, ok := FromContext(r.Context())
	if !ok {
		var zero T
		return zero, ErrNoRequestFactory
	}
	return beans.GetNamed[T](f, name)
}
