package mappers

import (
	"fmt"

	"github.com/edelwud/tf2tosca/internal/terraform/tfplan"
	"github.com/edelwud/tf2tosca/internal/tosca/builder"
)

// MissingNodeError is returned by a post-pass mapper when the node it
// needs to attach to has not been created by any primary mapper - either
// because that resource type is unsupported or because of plan
// ordering the engine does not control. The engine (C7/C8) maps this to
// the PostPassMissingNode error kind.
type MissingNodeError struct {
	Resource string
	NodeName string
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("resource %q: referenced node %q was not created by any mapper", e.Resource, e.NodeName)
}

// ResourceMapper translates one planned resource instance into TOSCA
// constructs against an in-progress service template.
type ResourceMapper interface {
	// CanMap reports whether this mapper handles resourceType.
	CanMap(resourceType string) bool
	// MapResource performs the translation. It may create a node,
	// mutate a node created by an earlier mapper (post-pass), or add a
	// policy entry.
	MapResource(resource *tfplan.Resource, b *builder.ServiceTemplateBuilder, ctx *MappingContext) error
}

// Registry dispatches a resource type to the mapper responsible for it.
//
// Primary mappers run once per resource, in planned_values document
// order, and are the only mappers permitted to create a node
// (builder.AddNode) or a policy (builder.AddPolicy). Post-pass mappers
// run in a second sweep after every primary resource has been mapped,
// because they mutate a node a primary mapper created elsewhere - a
// security group's ingress rule list, a target group's attachment
// requirement - via builder.GetNode, which returns nil until that node
// exists.
type Registry struct {
	primaries []ResourceMapper
	postPass  []ResourceMapper
}

// NewRegistry returns a registry with every built-in mapper registered.
func NewRegistry() *Registry {
	return &Registry{
		primaries: []ResourceMapper{
			&VPCMapper{},
			&SubnetMapper{},
			&InternetGatewayMapper{},
			&RouteTableMapper{},
			&EIPMapper{},
			&SecurityGroupMapper{},
			&InstanceMapper{},
			&EBSVolumeMapper{},
			&S3BucketMapper{},
			&DBInstanceMapper{},
			&RDSClusterMapper{},
			&DBSubnetGroupMapper{},
			&ElastiCacheClusterMapper{},
			&ElastiCacheSubnetGroupMapper{},
			&LoadBalancerMapper{},
			&LBListenerMapper{},
			&LBTargetGroupMapper{},
			&Route53ZoneMapper{},
			&Route53RecordMapper{},
			&IAMRoleMapper{},
			&IAMPolicyMapper{},
		},
		postPass: []ResourceMapper{
			&SecurityGroupIngressRuleMapper{},
			&SecurityGroupEgressRuleMapper{},
			&LBTargetGroupAttachmentMapper{},
			&RouteMapper{},
		},
	}
}

// Primary returns the primary mapper for resourceType, or nil if
// unsupported.
func (r *Registry) Primary(resourceType string) ResourceMapper {
	for _, m := range r.primaries {
		if m.CanMap(resourceType) {
			return m
		}
	}
	return nil
}

// PostPass returns the post-pass mapper for resourceType, or nil.
func (r *Registry) PostPass(resourceType string) ResourceMapper {
	for _, m := range r.postPass {
		if m.CanMap(resourceType) {
			return m
		}
	}
	return nil
}

// IsPostPassType reports whether resourceType is handled entirely in
// the post-pass sweep (and so should be skipped during the primary
// pass rather than reported unsupported).
func (r *Registry) IsPostPassType(resourceType string) bool {
	return r.PostPass(resourceType) != nil
}
