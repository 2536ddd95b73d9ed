package mappers

import (
	"fmt"

	"github.com/edelwud/tf2tosca/internal/terraform/tfplan"
	"github.com/edelwud/tf2tosca/internal/tosca/builder"
	"github.com/edelwud/tf2tosca/pkg/log"
)

var engineTypeNames = map[string]string{
	"mysql": "MySQL", "postgres": "PostgreSQL", "postgresql": "PostgreSQL",
	"oracle-ee": "Oracle", "oracle-se": "Oracle", "oracle-se1": "Oracle", "oracle-se2": "Oracle",
	"sqlserver-ee": "SQL Server", "sqlserver-se": "SQL Server", "sqlserver-ex": "SQL Server", "sqlserver-web": "SQL Server",
	"mariadb": "MariaDB", "aurora": "Aurora", "aurora-mysql": "Aurora MySQL", "aurora-postgresql": "Aurora PostgreSQL",
	"custom-oracle-ee": "Custom Oracle", "custom-sqlserver-ee": "Custom SQL Server",
	"custom-sqlserver-se": "Custom SQL Server", "custom-sqlserver-web": "Custom SQL Server",
	"db2-se": "DB2", "db2-ae": "DB2",
}

var engineDefaultPorts = map[string]int{
	"mysql": 3306, "postgres": 5432, "postgresql": 5432,
	"oracle-ee": 1521, "oracle-se": 1521, "oracle-se1": 1521, "oracle-se2": 1521,
	"sqlserver-ee": 1433, "sqlserver-se": 1433, "sqlserver-ex": 1433, "sqlserver-web": 1433,
	"mariadb": 3306, "aurora": 3306, "aurora-mysql": 3306, "aurora-postgresql": 5432,
}

// DBInstanceMapper maps aws_db_instance to a DBMS + Database node pair,
// grounded on aws_db_instance.py.
type DBInstanceMapper struct{}

func (DBInstanceMapper) CanMap(t string) bool { return t == "aws_db_instance" }

func (DBInstanceMapper) MapResource(r *tfplan.Resource, b *builder.ServiceTemplateBuilder, ctx *MappingContext) error {
	log.Infof("mapping DB instance resource %q", r.Address)
	base := nodeNameFor(r.Address)
	dbmsName, dbName := base+"_dbms", base+"_database"

	engine, _ := ctx.Meta(r.Address, "engine").(string)
	buildDBMSNode(b, dbmsName, r, ctx, engine)
	database := buildDatabaseNode(b, dbName, r, ctx, engine, ctx.Meta(r.Address, "identifier"))

	database.AddRequirement("host").ToNode(dbmsName).WithRelationship("HostedOn").AndNode()
	return nil
}

// RDSClusterMapper maps aws_rds_cluster to the same DBMS + Database
// node pair shape, grounded on aws_rds_cluster.py.
type RDSClusterMapper struct{}

func (RDSClusterMapper) CanMap(t string) bool { return t == "aws_rds_cluster" }

func (RDSClusterMapper) MapResource(r *tfplan.Resource, b *builder.ServiceTemplateBuilder, ctx *MappingContext) error {
	log.Infof("mapping RDS cluster resource %q", r.Address)
	base := nodeNameFor(r.Address)
	dbmsName, dbName := base+"_dbms", base+"_database"

	engine, _ := ctx.Meta(r.Address, "engine").(string)
	dbms := buildDBMSNode(b, dbmsName, r, ctx, engine)
	database := buildDatabaseNode(b, dbName, r, ctx, engine, ctx.Meta(r.Address, "cluster_identifier"))

	setIfPresent(dbms.Metadata(), "aws_engine_mode", ctx.Meta(r.Address, "engine_mode"))
	setIfPresent(dbms.Metadata(), "aws_cluster_identifier", ctx.Meta(r.Address, "cluster_identifier"))
	if azs := asSlice(ctx.Meta(r.Address, "availability_zones")); len(azs) > 0 {
		dbms.Metadata().Set("aws_availability_zones", azs)
	}
	setIfPresent(database.Metadata(), "aws_global_cluster_identifier", ctx.Meta(r.Address, "global_cluster_identifier"))
	setIfPresent(database.Metadata(), "aws_replication_source_identifier", ctx.Meta(r.Address, "replication_source_identifier"))
	setIfPresent(database.Metadata(), "aws_source_region", ctx.Meta(r.Address, "source_region"))

	database.AddRequirement("host").ToNode(dbmsName).WithRelationship("HostedOn").AndNode()
	return nil
}

func buildDBMSNode(b *builder.ServiceTemplateBuilder, name string, r *tfplan.Resource, ctx *MappingContext, engine string) *builder.NodeBuilder {
	node := b.AddNode(name, "DBMS")
	meta := node.Metadata()
	meta.Set("original_resource_type", r.Type)
	meta.Set("original_resource_name", r.Name)
	meta.Set("aws_component_type", "DBMS")

	if engine != "" {
		meta.Set("aws_engine", engine)
		if std, ok := engineTypeNames[engine]; ok {
			meta.Set("engine_type", std)
		} else {
			meta.Set("engine_type", engine)
		}
	}
	setIfPresent(meta, "aws_engine_version", ctx.Meta(r.Address, "engine_version"))
	setIfPresent(meta, "aws_instance_class", ctx.Meta(r.Address, "instance_class"))
	setIfPresent(meta, "aws_license_model", ctx.Meta(r.Address, "license_model"))
	if v, ok := ctx.Meta(r.Address, "multi_az").(bool); ok {
		meta.Set("aws_multi_az", v)
	}
	setIfPresent(meta, "aws_allocated_storage", ctx.Meta(r.Address, "allocated_storage"))
	setIfPresent(meta, "aws_storage_type", ctx.Meta(r.Address, "storage_type"))
	if v, ok := ctx.Meta(r.Address, "storage_encrypted").(bool); ok {
		meta.Set("aws_storage_encrypted", v)
	}
	setIfPresent(meta, "aws_backup_retention_period", ctx.Meta(r.Address, "backup_retention_period"))
	setIfPresent(meta, "aws_backup_window", ctx.Meta(r.Address, "backup_window"))
	setIfPresent(meta, "aws_maintenance_window", ctx.Meta(r.Address, "maintenance_window"))
	setIfPresent(meta, "aws_monitoring_interval", ctx.Meta(r.Address, "monitoring_interval"))
	if v, ok := ctx.Meta(r.Address, "performance_insights_enabled").(bool); ok {
		meta.Set("aws_performance_insights_enabled", v)
	}

	if port := ctx.Meta(r.Address, "port"); notEmpty(port) {
		node.WithProperty("port", port)
	} else if p, ok := engineDefaultPorts[engine]; ok {
		node.WithProperty("port", p)
		meta.Set("aws_default_port", p)
	}

	password := ctx.Meta(r.Address, "password")
	managedPassword, _ := ctx.Meta(r.Address, "manage_master_user_password").(bool)
	masterPassword := ctx.Meta(r.Address, "master_password")
	switch {
	case notEmpty(password) && !managedPassword:
		node.WithProperty("root_password", password)
	case notEmpty(masterPassword) && !managedPassword:
		node.WithProperty("root_password", masterPassword)
	case managedPassword:
		meta.Set("aws_managed_master_password", true)
	}

	if sgIDs := asSlice(ctx.Meta(r.Address, "vpc_security_group_ids")); len(sgIDs) > 0 {
		meta.Set("aws_vpc_security_group_ids", sgIDs)
	}
	setIfPresent(meta, "aws_db_subnet_group_name", ctx.Meta(r.Address, "db_subnet_group_name"))
	setIfPresent(meta, "aws_db_cluster_parameter_group_name", ctx.Meta(r.Address, "db_cluster_parameter_group_name"))
	setIfPresent(meta, "aws_availability_zone", ctx.Meta(r.Address, "availability_zone"))
	if v, ok := ctx.Meta(r.Address, "deletion_protection").(bool); ok {
		meta.Set("aws_deletion_protection", v)
	}

	tags := asStringMap(ctx.Meta(r.Address, "tags"))
	tagsAll := asStringMap(ctx.Meta(r.Address, "tags_all"))
	if len(tags) > 0 {
		meta.Set("aws_tags", tags)
	}
	if tagsAllDiffer(tags, tagsAll) {
		meta.Set("aws_tags_all", tagsAll)
	}

	node.AddCapability("host").AndNode()
	return node
}

func buildDatabaseNode(b *builder.ServiceTemplateBuilder, name string, r *tfplan.Resource, ctx *MappingContext, engine string, identifierFallback any) *builder.NodeBuilder {
	node := b.AddNode(name, "Database")
	meta := node.Metadata()
	meta.Set("original_resource_type", r.Type)
	meta.Set("original_resource_name", r.Name)
	meta.Set("aws_component_type", "Database")

	dbNameConcrete := ctx.Meta(r.Address, "db_name")
	setIfPresent(meta, "aws_database_name", dbNameConcrete)

	dbNameResolved := ctx.Property(r.Address, "db_name")
	if notEmpty(dbNameResolved) {
		node.WithProperty("name", dbNameResolved)
	} else if notEmpty(identifierFallback) {
		node.WithProperty("name", identifierFallback)
	} else {
		node.WithProperty("name", r.Name)
	}

	if port := ctx.Meta(r.Address, "port"); notEmpty(port) {
		node.WithProperty("port", port)
	} else if p, ok := engineDefaultPorts[engine]; ok {
		node.WithProperty("port", p)
		meta.Set("aws_default_port", p)
	} else {
		node.WithProperty("port", 3306)
		meta.Set("aws_default_port", 3306)
	}

	if username := ctx.Meta(r.Address, "username"); notEmpty(username) {
		node.WithProperty("user", username)
	} else if username := ctx.Meta(r.Address, "master_username"); notEmpty(username) {
		node.WithProperty("user", username)
	}

	password := ctx.Meta(r.Address, "password")
	managedPassword, _ := ctx.Meta(r.Address, "manage_master_user_password").(bool)
	if notEmpty(password) && !managedPassword {
		node.WithProperty("password", password)
	}

	setIfPresent(meta, "aws_identifier", ctx.Meta(r.Address, "identifier"))
	setIfPresent(meta, "aws_character_set_name", ctx.Meta(r.Address, "character_set_name"))
	setIfPresent(meta, "aws_nchar_character_set_name", ctx.Meta(r.Address, "nchar_character_set_name"))
	setIfPresent(meta, "aws_timezone", ctx.Meta(r.Address, "timezone"))
	if v, ok := ctx.Meta(r.Address, "deletion_protection").(bool); ok {
		meta.Set("aws_deletion_protection", v)
	}
	if v, ok := ctx.Meta(r.Address, "iam_database_authentication_enabled").(bool); ok {
		meta.Set("aws_iam_database_authentication_enabled", v)
	}
	if v, ok := ctx.Meta(r.Address, "publicly_accessible").(bool); ok {
		meta.Set("aws_publicly_accessible", v)
	}
	setIfPresent(meta, "aws_enabled_cloudwatch_logs_exports", ctx.Meta(r.Address, "enabled_cloudwatch_logs_exports"))

	tags := asStringMap(ctx.Meta(r.Address, "tags"))
	tagsAll := asStringMap(ctx.Meta(r.Address, "tags_all"))
	if len(tags) > 0 {
		meta.Set("aws_tags", tags)
	}
	if tagsAllDiffer(tags, tagsAll) {
		meta.Set("aws_tags_all", tagsAll)
	}

	node.AddCapability("database_endpoint").AndNode()
	return node
}

// DBSubnetGroupMapper maps aws_db_subnet_group to a Placement policy
// targeting both the DBMS and the Database node of every aws_db_instance
// whose db_subnet_group_name matches the group's name,
// grounded on aws_db_subnet_group.py.
type DBSubnetGroupMapper struct{}

func (DBSubnetGroupMapper) CanMap(t string) bool { return t == "aws_db_subnet_group" }

func (DBSubnetGroupMapper) MapResource(r *tfplan.Resource, b *builder.ServiceTemplateBuilder, ctx *MappingContext) error {
	log.Infof("mapping DB subnet group resource %q", r.Address)

	policyName := nodeNameFor(r.Address)
	policy := b.AddPolicy(policyName, "Placement")

	subnetIDs := asSlice(ctx.Property(r.Address, "subnet_ids"))
	groupName, _ := ctx.Meta(r.Address, "name").(string)
	if groupName == "" {
		groupName = r.Name
	}

	if len(subnetIDs) > 0 {
		policy.WithProperty("placement_zone", "subnet_group")
		policy.WithProperty("subnet_group_name", groupName)
		policy.WithProperty("availability_zones", len(subnetIDs))
	}

	for _, target := range findDatabaseTargets(ctx, "aws_db_instance", "db_subnet_group_name", groupName, "_dbms") {
		policy.WithTargetOnce(target)
	}
	for _, target := range findDatabaseTargets(ctx, "aws_db_instance", "db_subnet_group_name", groupName, "_database") {
		policy.WithTargetOnce(target)
	}

	policy.AndService()
	return nil
}

// ElastiCacheSubnetGroupMapper maps aws_elasticache_subnet_group to a
// Placement policy, grounded on aws_elasticache_subnet_group.py.
type ElastiCacheSubnetGroupMapper struct{}

func (ElastiCacheSubnetGroupMapper) CanMap(t string) bool { return t == "aws_elasticache_subnet_group" }

func (ElastiCacheSubnetGroupMapper) MapResource(r *tfplan.Resource, b *builder.ServiceTemplateBuilder, ctx *MappingContext) error {
	log.Infof("mapping ElastiCache subnet group resource %q", r.Address)

	policyName := nodeNameFor(r.Address)
	policy := b.AddPolicy(policyName, "Placement")

	meta := map[string]any{
		"original_resource_type": r.Type,
		"original_resource_name": r.Name,
		"aws_component_type":     "ElastiCacheSubnetGroup",
		"description":            "AWS ElastiCache Subnet Group for cache placement within VPC subnets",
	}

	groupName, _ := ctx.Meta(r.Address, "name").(string)
	mapRuleInto(meta, "aws_cache_subnet_group_name", groupName)
	mapRuleInto(meta, "aws_cache_subnet_group_description", ctx.Meta(r.Address, "description"))

	subnetIDs := asSlice(ctx.Meta(r.Address, "subnet_ids"))
	if len(subnetIDs) > 0 {
		meta["aws_subnet_ids"] = subnetIDs
		meta["aws_subnet_count"] = len(subnetIDs)
		meta["placement_zone"] = "cache_subnet_group"
		if groupName != "" {
			meta["subnet_group_name"] = groupName
		} else {
			meta["subnet_group_name"] = r.Name
		}
		meta["availability_zones_count"] = len(subnetIDs)
	}
	mapRuleInto(meta, "aws_vpc_id", ctx.Meta(r.Address, "vpc_id"))
	mapRuleInto(meta, "aws_arn", ctx.Meta(r.Address, "arn"))

	tags := asStringMap(ctx.Meta(r.Address, "tags"))
	tagsAll := asStringMap(ctx.Meta(r.Address, "tags_all"))
	if len(tags) > 0 {
		meta["aws_tags"] = tags
	}
	if tagsAllDiffer(tags, tagsAll) {
		meta["aws_tags_all"] = tagsAll
	}
	for k, v := range meta {
		policy.WithProperty(k, v)
	}

	for _, target := range findDatabaseTargets(ctx, "aws_elasticache_cluster", "subnet_group_name", groupName, "") {
		policy.WithTargetOnce(target)
	}

	policy.AndService()
	return nil
}

// findDatabaseTargets scans every resource of matchType for a property
// named matchProperty equal to groupName, returning the TOSCA node name
// (with nameSuffix appended, matching a composite mapper's node naming)
// for each match. Grounded on aws_db_subnet_group.py's
// _find_database_targets.
func findDatabaseTargets(ctx *MappingContext, matchType, matchProperty, groupName, nameSuffix string) []string {
	var targets []string
	for _, res := range ctx.ResourcesOfType(matchType) {
		value, _ := ctx.Meta(res.Address, matchProperty).(string)
		if value != "" && value == groupName {
			targets = append(targets, nodeNameFor(res.Address)+nameSuffix)
		}
	}
	return targets
}

// ElastiCacheClusterMapper maps aws_elasticache_cluster to a DBMS node
// representing the cache engine. No Python mapper for this resource
// type exists in the source corpus; its shape mirrors the DBMS half of
// aws_db_instance.py since an ElastiCache cluster is an unmanaged cache
// engine rather than a full DBMS+Database pair (no logical database or
// user namespace maps onto it).
type ElastiCacheClusterMapper struct{}

func (ElastiCacheClusterMapper) CanMap(t string) bool { return t == "aws_elasticache_cluster" }

func (ElastiCacheClusterMapper) MapResource(r *tfplan.Resource, b *builder.ServiceTemplateBuilder, ctx *MappingContext) error {
	log.Infof("mapping ElastiCache cluster resource %q", r.Address)

	name := nodeNameFor(r.Address)
	node := b.AddNode(name, "DBMS")

	engine, _ := ctx.Meta(r.Address, "engine").(string)
	meta := node.Metadata()
	meta.Set("original_resource_type", r.Type)
	meta.Set("original_resource_name", r.Name)
	meta.Set("aws_component_type", "ElastiCacheCluster")
	if engine != "" {
		meta.Set("aws_engine", engine)
		meta.Set("engine_type", fmt.Sprintf("ElastiCache %s", engine))
	}
	setIfPresent(meta, "aws_engine_version", ctx.Meta(r.Address, "engine_version"))
	setIfPresent(meta, "aws_node_type", ctx.Meta(r.Address, "node_type"))
	setIfPresent(meta, "aws_num_cache_nodes", ctx.Meta(r.Address, "num_cache_nodes"))
	setIfPresent(meta, "aws_parameter_group_name", ctx.Meta(r.Address, "parameter_group_name"))
	setIfPresent(meta, "aws_subnet_group_name", ctx.Meta(r.Address, "subnet_group_name"))
	setIfPresent(meta, "aws_az_mode", ctx.Meta(r.Address, "az_mode"))
	setIfPresent(meta, "aws_availability_zone", ctx.Meta(r.Address, "availability_zone"))
	setIfPresent(meta, "aws_arn", ctx.Meta(r.Address, "arn"))

	if port := ctx.Meta(r.Address, "port"); notEmpty(port) {
		node.WithProperty("port", port)
	} else if engine == "redis" {
		node.WithProperty("port", 6379)
		meta.Set("aws_default_port", 6379)
	} else if engine == "memcached" {
		node.WithProperty("port", 11211)
		meta.Set("aws_default_port", 11211)
	}

	tags := asStringMap(ctx.Meta(r.Address, "tags"))
	tagsAll := asStringMap(ctx.Meta(r.Address, "tags_all"))
	if len(tags) > 0 {
		meta.Set("aws_tags", tags)
	}
	if tagsAllDiffer(tags, tagsAll) {
		meta.Set("aws_tags_all", tagsAll)
	}

	node.AddCapability("host").AndNode()
	attachDependencies(node, ctx, r)
	return nil
}
