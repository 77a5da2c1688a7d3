package service

import (
	"context"

	"github.com/coderi421/adkit/soap"
)

// NetworkService lists the networks the authenticated user can access.
// getAllNetworks does not need a network code in the request header.
type NetworkService struct {
	client *soap.Client
}

func Networks(c *soap.Client) *NetworkService {
	return &NetworkService{client: c}
}

func (s *NetworkService) GetAllNetworks(ctx context.Context) ([]Network, error) {
	// 每个 network 是一个 rval
	var networks []Network
	if err := s.client.Call(ctx, "NetworkService", "getAllNetworks", nil, &networks); err != nil {
		return nil, err
	}
	return networks, nil
}

func (s *NetworkService) GetCurrentNetwork(ctx context.Context) (*Network, error) {
	var n Network
	if err := s.client.Call(ctx, "NetworkService", "getCurrentNetwork", nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// RoleService exposes the roles defined in the network. Roles are not
// filtered by statement.
type RoleService struct {
	client *soap.Client
}

func Roles(c *soap.Client) *RoleService {
	return &RoleService{client: c}
}

func (s *RoleService) GetAllRoles(ctx context.Context) ([]Role, error) {
	var roles []Role
	if err := s.client.Call(ctx, "UserService", "getAllRoles", nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}
