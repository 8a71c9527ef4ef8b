package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reviewradar/reviewradar/api/types"
)

type hostsFile struct {
	Hosts []types.Host `yaml:"hosts"`
}

// LoadHosts reads the host list from a YAML file. Each host needs a unique
// name and a parseable http(s) URL; trailing slashes are normalized away.
// An empty list is allowed here; the orchestrator treats it as a
// configuration error at refresh time.
func LoadHosts(path string) ([]types.Host, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading hosts file: %w", err)
	}

	var hf hostsFile
	if err := yaml.Unmarshal(data, &hf); err != nil {
		return nil, fmt.Errorf("error parsing hosts file %s: %w", path, err)
	}

	seen := make(map[string]bool, len(hf.Hosts))
	for i := range hf.Hosts {
		h := &hf.Hosts[i]
		if h.Name == "" {
			return nil, fmt.Errorf("hosts[%d]: name is required", i)
		}
		if seen[h.Name] {
			return nil, fmt.Errorf("duplicate host name %q", h.Name)
		}
		seen[h.Name] = true

		u, err := url.Parse(h.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("host %q: invalid url %q", h.Name, h.URL)
		}
		h.URL = strings.TrimRight(h.URL, "/")
	}

	return hf.Hosts, nil
}
