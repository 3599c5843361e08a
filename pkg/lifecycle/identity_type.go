package lifecycle

import "strings"

// IdentityType is the kind of account an application pool runs as.
type IdentityType string

const (
	IdentityNetworkService          IdentityType = "NetworkService"
	IdentityApplicationPoolIdentity IdentityType = "ApplicationPoolIdentity"
	IdentityLocalService            IdentityType = "LocalService"
	IdentityLocalSystem             IdentityType = "LocalSystem"
	IdentitySpecificUser            IdentityType = "SpecificUser"
)

// DefaultAppPoolIdentity is used when a site is created without one.
const DefaultAppPoolIdentity = IdentityNetworkService

// GetIdentityType maps a configured identity name to its type. Anything that
// is not a built-in account is a specific user.
func GetIdentityType(name string) IdentityType {
	for _, t := range []IdentityType{
		IdentityNetworkService,
		IdentityApplicationPoolIdentity,
		IdentityLocalService,
		IdentityLocalSystem,
	} {
		if strings.EqualFold(name, string(t)) {
			return t
		}
	}
	return IdentitySpecificUser
}
