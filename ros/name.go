package ros

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

const (
	Sep       = "/"
	GlobalNS  = "/"
	PrivateNS = "~"
	Remap     = ":="
)

// NameMap maps names to names, e.g. remapping rules.
type NameMap map[string]string

var validNamePattern = regexp.MustCompile(`^[~/]?([a-zA-Z]\w*/)*[a-zA-Z]\w*/?$`)

// qualifyNodeName splits a node name into its namespace and base name.
func qualifyNodeName(nodeName string) (string, string, error) {
	if nodeName == "" {
		return "", "", errors.New("empty node name")
	}
	if strings.HasPrefix(nodeName, PrivateNS) {
		return "", "", errors.Errorf("node name %q must not be private", nodeName)
	}
	var components []string
	for _, c := range strings.Split(nodeName, Sep) {
		if len(c) > 0 {
			components = append(components, c)
		}
	}
	if len(components) == 0 {
		return "", "", errors.Errorf("invalid node name %q", nodeName)
	}
	last := len(components) - 1
	return GlobalNS + strings.Join(components[:last], Sep), components[last], nil
}

func isValidName(name string) bool {
	if name == "" || name == GlobalNS || name == PrivateNS {
		return true
	}
	return validNamePattern.MatchString(name)
}

func isGlobalName(name string) bool {
	return strings.HasPrefix(name, GlobalNS)
}

func isPrivateName(name string) bool {
	return strings.HasPrefix(name, PrivateNS)
}

// canonicalizeName removes repeated and trailing separators.
func canonicalizeName(name string) string {
	if name == GlobalNS {
		return name
	}
	var components []string
	for _, word := range strings.Split(name, Sep) {
		if len(word) > 0 {
			components = append(components, word)
		}
	}
	if isGlobalName(name) {
		return GlobalNS + strings.Join(components, Sep)
	}
	return strings.Join(components, Sep)
}

// joinName appends a relative name to a namespace.
func joinName(namespace string, name string) string {
	if name == "" {
		return canonicalizeName(namespace)
	}
	return canonicalizeName(namespace + Sep + name)
}

// NameResolver resolves graph resource names for one node.
type NameResolver struct {
	namespace string
	nodeName  string
	mapping   NameMap
}

// newNameResolver builds a resolver for the node called name living in
// namespace. Remapping keys and values are resolved against the namespace.
func newNameResolver(namespace string, name string, remapping NameMap) *NameResolver {
	n := &NameResolver{
		namespace: canonicalizeName(GlobalNS + namespace),
		mapping:   make(NameMap),
	}
	n.nodeName = joinName(n.namespace, name)
	for k, v := range remapping {
		n.mapping[n.resolve(k)] = n.resolve(v)
	}
	return n
}

// resolve turns name into a global name without applying remappings.
func (n *NameResolver) resolve(name string) string {
	switch {
	case name == "":
		return n.namespace
	case isGlobalName(name):
		return canonicalizeName(name)
	case isPrivateName(name):
		return joinName(n.nodeName, name[1:])
	}
	return joinName(n.namespace, name)
}

// remap resolves name and applies the remapping rules.
func (n *NameResolver) remap(name string) string {
	resolved := n.resolve(name)
	if remapped, ok := n.mapping[resolved]; ok {
		return remapped
	}
	return resolved
}
