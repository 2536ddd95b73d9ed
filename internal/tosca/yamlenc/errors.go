package yamlenc

import "fmt"

// IoError wraps a failure to write the rendered document to its
// destination (disk full, permission denied, etc).
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("write tosca output %q: %v", e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// SerializationError reports a failure converting a model value into a
// yaml.Node, identified by the dotted path of the field that failed so
// a mapper bug can be traced back to the node/property that produced it.
type SerializationError struct {
	NodePath string
	Reason   string
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize %q: %s", e.NodePath, e.Reason)
}
