package builder

import "github.com/edelwud/tf2tosca/internal/tosca/model"

// ArtifactBuilder builds a single artifact definition.
type ArtifactBuilder struct {
	name     string
	artifact *model.ArtifactDefinition
	node     *NodeBuilder
}

func (a *ArtifactBuilder) WithRepository(repo string) *ArtifactBuilder {
	a.artifact.Repository = repo
	return a
}

func (a *ArtifactBuilder) WithVersion(version string) *ArtifactBuilder {
	a.artifact.ArtifactVersion = version
	return a
}

func (a *ArtifactBuilder) WithChecksum(checksum, algorithm string) *ArtifactBuilder {
	const md5, sha1, sha256, sha512 = "MD5", "SHA-1", "SHA-256", "SHA-512"
	switch algorithm {
	case md5, sha1, sha256, sha512, "":
	default:
		a.node.parent.fail(&model.InvalidTemplate{
			Field:  "checksum_algorithm",
			Reason: "must be one of MD5, SHA-1, SHA-256, SHA-512",
		})
		return a
	}
	a.artifact.Checksum = checksum
	a.artifact.ChecksumAlgorithm = algorithm
	return a
}

func (a *ArtifactBuilder) WithProperty(key string, value model.Value) *ArtifactBuilder {
	if value == nil {
		return a
	}
	a.artifact.Properties.Set(key, value)
	return a
}

// AndNode terminates artifact construction and returns the node.
func (a *ArtifactBuilder) AndNode() *NodeBuilder {
	return a.node
}
