package props

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborlight/beans"
)

func TestResolver(t *testing.T) {
	r := NewResolver(
		MapSource{"app.name": "base", "app.port": "8080"},
		MapSource{"app.name": "override"},
	)

	t.Run("LaterSourceWins", func(t *testing.T) {
		v, ok := r.Get("app.name")
		require.True(t, ok)
		assert.Equal(t, "override", v)
	})

	t.Run("FallsBackToEarlierSource", func(t *testing.T) {
		v, ok := r.Get("app.port")
		require.True(t, ok)
		assert.Equal(t, "8080", v)
	})

	t.Run("MissingKey", func(t *testing.T) {
		_, ok := r.Get("nope")
		assert.False(t, ok)
	})
}

func TestResolvePlaceholders(t *testing.T) {
	r := NewResolver(MapSource{
		"host":    "localhost",
		"port":    "5432",
		"db.url": "postgres://${host}:${port}/app",
		"nested": "${db.url}",
	})

	t.Run("Simple", func(t *testing.T) {
		v, err := r.Resolve("${host}")
		require.NoError(t, err)
		assert.Equal(t, "localhost", v)
	})

	t.Run("Embedded", func(t *testing.T) {
		v, err := r.Resolve("conn=${host}:${port}")
		require.NoError(t, err)
		assert.Equal(t, "conn=localhost:5432", v)
	})

	t.Run("Recursive", func(t *testing.T) {
		v, err := r.Resolve("${nested}")
		require.NoError(t, err)
		assert.Equal(t, "postgres://localhost:5432/app", v)
	})

	t.Run("Default", func(t *testing.T) {
		v, err := r.Resolve("${missing:fallback}")
		require.NoError(t, err)
		assert.Equal(t, "fallback", v)
	})

	t.Run("EmptyDefault", func(t *testing.T) {
		v, err := r.Resolve("${missing:}")
		require.NoError(t, err)
		assert.Equal(t, "", v)
	})

	t.Run("NestedDefault", func(t *testing.T) {
		v, err := r.Resolve("${missing:${host}}")
		require.NoError(t, err)
		assert.Equal(t, "localhost", v)
	})

	t.Run("Unresolvable", func(t *testing.T) {
		_, err := r.Resolve("${missing}")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing")
	})

	t.Run("Unterminated", func(t *testing.T) {
		_, err := r.Resolve("${host")
		require.Error(t, err)
	})

	t.Run("NoPlaceholders", func(t *testing.T) {
		v, err := r.Resolve("plain text")
		require.NoError(t, err)
		assert.Equal(t, "plain text", v)
	})
}

func TestResolveCycle(t *testing.T) {
	r := NewResolver(MapSource{"a": "${b}", "b": "${a}"})
	_, err := r.Resolve("${a}")
	require.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	src, err := LoadYAML([]byte(`
server:
  port: 8080
  tls: true
  hosts:
    - a.example.com
    - b.example.com
app:
  name: harborlight
  timeout: 5s
empty:
`))
	require.NoError(t, err)

	assert.Equal(t, MapSource{
		"server.port":     "8080",
		"server.tls":      "true",
		"server.hosts[0]": "a.example.com",
		"server.hosts[1]": "b.example.com",
		"app.name":        "harborlight",
		"app.timeout":     "5s",
		"empty":           "",
	}, src)
}

func TestLoadYAMLInvalid(t *testing.T) {
	_, err := LoadYAML([]byte("{not: [valid"))
	require.Error(t, err)
}

func TestEnvSource(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("exact.key", "exact")

	var src EnvSource

	t.Run("MappedName", func(t *testing.T) {
		v, ok := src.Get("server.port")
		require.True(t, ok)
		assert.Equal(t, "9090", v)
	})

	t.Run("ExactKeyFirst", func(t *testing.T) {
		v, ok := src.Get("exact.key")
		require.True(t, ok)
		assert.Equal(t, "exact", v)
	})

	t.Run("Missing", func(t *testing.T) {
		_, ok := src.Get("definitely.not.set.anywhere")
		assert.False(t, ok)
	})
}

type propsConfig struct {
	Addr    string
	Timeout time.Duration
}

func TestSelectorWithFactory(t *testing.T) {
	resolver := NewResolver(MapSource{
		"server.addr":    ":8080",
		"server.timeout": "30s",
	})

	f := beans.New()
	defer f.Close()
	f.SetCandidateSelector(NewSelector(resolver))

	t.Run("ResolvesStringValue", func(t *testing.T) {
		d := beans.DepOf[string]()
		d.Value = "${server.addr}"
		v, err := f.ResolveDependency(d, "")
		require.NoError(t, err)
		assert.Equal(t, ":8080", v)
	})

	t.Run("ConvertsToDuration", func(t *testing.T) {
		d := beans.DepOf[time.Duration]()
		d.Value = "${server.timeout}"
		v, err := f.ResolveDependency(d, "")
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, v)
	})

	t.Run("DefaultExpression", func(t *testing.T) {
		d := beans.DepOf[int]()
		d.Value = "${server.workers:4}"
		v, err := f.ResolveDependency(d, "")
		require.NoError(t, err)
		assert.Equal(t, 4, v)
	})

	t.Run("UnresolvableFallsThrough", func(t *testing.T) {
		d := beans.DepOf[*propsConfig]()
		d.Value = "${missing.key}"
		_, err := f.ResolveDependency(d, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, beans.ErrNoSuchBean)
	})

	t.Run("NoValueStillResolvesBeans", func(t *testing.T) {
		require.NoError(t, f.RegisterSingleton("config", &propsConfig{Addr: ":1"}))
		v, err := f.ResolveDependency(beans.DepOf[*propsConfig](), "")
		require.NoError(t, err)
		assert.Equal(t, &propsConfig{Addr: ":1"}, v)
	})
}
