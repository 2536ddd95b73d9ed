// Package refs implements reference extraction and dependency
// resolution (C5): turning a resource's configuration expressions,
// depends_on list, and value patterns into a deduplicated, classified
// list of TOSCA requirement edges, plus the address parsing and node
// naming shared by every mapper.
package refs

import "strings"

// Address is a parsed Terraform resource address, e.g.
// "module.network.aws_subnet.private[1]".
type Address struct {
	Module string
	Type   string
	Name   string
	Index  string // empty unless the resource is count/for_each-indexed
	Raw    string
}

// ParseAddress splits a resource address into its module path, type,
// name, and optional index. It is intentionally permissive: an address
// with no module prefix and no index is the common case.
func ParseAddress(address string) Address {
	addr := Address{Raw: address}

	segments := strings.Split(address, ".")
	// Walk from the front, consuming "module", "<name>" pairs until what
	// remains is exactly two segments: type and name[index].
	var moduleParts []string
	for len(segments) > 2 && segments[0] == "module" {
		moduleParts = append(moduleParts, "module."+segments[1])
		segments = segments[2:]
	}
	if len(moduleParts) > 0 {
		addr.Module = strings.Join(moduleParts, ".")
	}

	if len(segments) >= 2 {
		addr.Type = segments[0]
		nameAndIndex := strings.Join(segments[1:], ".")
		addr.Name, addr.Index = splitIndex(nameAndIndex)
	}

	return addr
}

func splitIndex(nameAndIndex string) (name, index string) {
	open := strings.IndexByte(nameAndIndex, '[')
	if open < 0 || !strings.HasSuffix(nameAndIndex, "]") {
		return nameAndIndex, ""
	}
	return nameAndIndex[:open], nameAndIndex[open+1 : len(nameAndIndex)-1]
}

// NodeName generates the TOSCA node template name for a resource
// address: module segments and the resource name, joined with
// underscores, with any count/for_each index appended so multiple
// instances of the same resource don't collide.
func NodeName(address string) string {
	addr := ParseAddress(address)

	var parts []string
	if addr.Module != "" {
		for _, seg := range strings.Split(addr.Module, ".") {
			if seg == "module" {
				continue
			}
			parts = append(parts, seg)
		}
	}
	parts = append(parts, addr.Name)
	name := strings.Join(parts, "_")
	if addr.Index != "" {
		name += "_" + addr.Index
	}
	return name
}
