package environ

import (
	"os"

	"github.com/srlehn/wlconn/internal/propkeys"
)

// EnvToProperties converts "KEY=value" entries into Properties.
// Entries without '=' are stored with an empty value.
func EnvToProperties(env []string) Properties {
	pr := NewProperties()
	for _, v := range env {
		if len(v) == 0 {
			continue
		}
		var i int
		for i = 0; i < len(v) && v[i] != '='; i++ {
		}
		var val string
		if i < len(v) {
			val = v[i+1:]
		}
		pr.SetProperty(propkeys.EnvPrefix+v[:i], val)
	}
	pr.SetProperty(propkeys.EnvIsLoaded, `true`)
	return pr
}

// Process snapshots the environment of the running process.
func Process() Properties {
	pr := EnvToProperties(os.Environ())
	pr.SetProperty(propkeys.EnvIsProcess, `true`)
	return pr
}

// IsProcess reports whether env was taken from the running process.
func IsProcess(env Enver) bool {
	pr, ok := env.(Properties)
	if !ok {
		return false
	}
	v, _ := pr.Property(propkeys.EnvIsProcess)
	return v == `true`
}

// Unsetenv removes the variable from env and, when env mirrors the process
// environment, from the process too.
func Unsetenv(env Enver, name string) error {
	if pr, ok := env.(interface{ DeleteProperty(string) }); ok {
		pr.DeleteProperty(propkeys.EnvPrefix + name)
	}
	if IsProcess(env) {
		return os.Unsetenv(name)
	}
	return nil
}

// DeleteProperty removes key.
func (p *propertiesGeneric) DeleteProperty(key string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.properties, key)
}

// SetEnv sets the variable name in pr.
func SetEnv(pr Properties, name, value string) {
	if pr == nil {
		return
	}
	pr.SetProperty(propkeys.EnvPrefix+name, value)
}
