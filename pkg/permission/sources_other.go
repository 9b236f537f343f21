//go:build !linux && !darwin
// +build !linux,!darwin

package permission

import "github.com/Krajiyah/beacon-sdk/pkg/models"

// NewSystemGateway returns a Gateway that reports Bluetooth as unsupported
func NewSystemGateway(opts Options) *Gateway {
	return NewGateway(desktopLocation{}, unsupportedAuthorizer{}, opts)
}

type unsupportedAuthorizer struct{}

func (unsupportedAuthorizer) State() models.ManagerState { return models.ManagerStateUnsupported }
func (unsupportedAuthorizer) CentralAuthorization() models.Authorization {
	return models.AuthorizationNotDetermined
}
func (unsupportedAuthorizer) PeripheralAuthorization() models.Authorization {
	return models.AuthorizationNotDetermined
}
func (unsupportedAuthorizer) PromptCentral()    {}
func (unsupportedAuthorizer) PromptPeripheral() {}
