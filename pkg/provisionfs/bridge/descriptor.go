package bridge

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// PortBinding is one entry of a service's ports list.
type PortBinding struct {
	Service   string
	Host      string
	Container string
}

type composeDescriptor struct {
	Services map[string]struct {
		Ports []yaml.Node `yaml:"ports"`
	} `yaml:"services"`
}

type longPortSyntax struct {
	Target    any    `yaml:"target"`
	Published any    `yaml:"published"`
	HostIP    string `yaml:"host_ip"`
}

// PublishedPorts lists the port bindings of every service in a compose
// descriptor, sorted by service name. Both the short "host:container" form
// and the long mapping form are understood.
func PublishedPorts(data []byte) ([]PortBinding, error) {
	var desc composeDescriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse compose descriptor: %w", err)
	}

	names := make([]string, 0, len(desc.Services))
	for name := range desc.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []PortBinding
	for _, name := range names {
		for _, node := range desc.Services[name].Ports {
			b, err := decodePort(&node)
			if err != nil {
				return nil, fmt.Errorf("service %s: %w", name, err)
			}
			b.Service = name
			out = append(out, b)
		}
	}
	return out, nil
}

// Publishes reports whether any binding maps hostPort.
func Publishes(bindings []PortBinding, hostPort int) bool {
	want := strconv.Itoa(hostPort)
	for _, b := range bindings {
		if b.Host == want {
			return true
		}
	}
	return false
}

func decodePort(node *yaml.Node) (PortBinding, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return parseShortPort(node.Value), nil
	case yaml.MappingNode:
		var long longPortSyntax
		if err := node.Decode(&long); err != nil {
			return PortBinding{}, fmt.Errorf("invalid port entry: %w", err)
		}
		return PortBinding{Host: scalarString(long.Published), Container: scalarString(long.Target)}, nil
	default:
		return PortBinding{}, fmt.Errorf("invalid port entry at line %d", node.Line)
	}
}

// parseShortPort splits "[ip:]host:container[/proto]".
func parseShortPort(spec string) PortBinding {
	spec, _, _ = strings.Cut(spec, "/")
	parts := strings.Split(spec, ":")
	switch len(parts) {
	case 1:
		return PortBinding{Container: parts[0]}
	default:
		return PortBinding{Host: parts[len(parts)-2], Container: parts[len(parts)-1]}
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
