//go:build darwin
// +build darwin

package permission

import (
	"sync"

	"github.com/JuulLabs-OSS/cbgo"
	"github.com/Krajiyah/beacon-sdk/pkg/models"
)

// NewSystemGateway returns a Gateway backed by a CoreBluetooth central manager
func NewSystemGateway(opts Options) *Gateway {
	return NewGateway(desktopLocation{}, &cbAuthorizer{cm: cbgo.NewCentralManager(nil)}, opts)
}

type cbAuthorizer struct {
	cm cbgo.CentralManager

	mutex   sync.Mutex
	prompts []interface{}
}

func (a *cbAuthorizer) State() models.ManagerState {
	switch a.cm.State() {
	case cbgo.ManagerStateResetting:
		return models.ManagerStateResetting
	case cbgo.ManagerStateUnsupported:
		return models.ManagerStateUnsupported
	case cbgo.ManagerStateUnauthorized:
		return models.ManagerStateUnauthorized
	case cbgo.ManagerStatePoweredOff:
		return models.ManagerStatePoweredOff
	case cbgo.ManagerStatePoweredOn:
		return models.ManagerStatePoweredOn
	}
	return models.ManagerStateUnknown
}

func (a *cbAuthorizer) authorization() models.Authorization {
	switch a.State() {
	case models.ManagerStateUnauthorized:
		return models.AuthorizationDenied
	case models.ManagerStateUnknown:
		return models.AuthorizationNotDetermined
	}
	return models.AuthorizationAllowedAlways
}

func (a *cbAuthorizer) CentralAuthorization() models.Authorization    { return a.authorization() }
func (a *cbAuthorizer) PeripheralAuthorization() models.Authorization { return a.authorization() }

// Creating a manager is what makes CoreBluetooth show its consent dialog. The managers are
// kept so the dialog is not torn down with them.
func (a *cbAuthorizer) PromptCentral() {
	a.keep(cbgo.NewCentralManager(nil))
}

func (a *cbAuthorizer) PromptPeripheral() {
	a.keep(cbgo.NewPeripheralManager(nil))
}

func (a *cbAuthorizer) keep(manager interface{}) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.prompts = append(a.prompts, manager)
}
