// Package api provides the cluster lifecycle REST API.
//
//	@title						Cluster Lifecycle API
//	@version					1.0
//	@description				Multi-tenant cluster provisioning API with controller status aggregation
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	UserEmailAuth
//	@in							header
//	@name						X-User-Email
package api
